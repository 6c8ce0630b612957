package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-service/internal/domain"
)

func TestNewPresenceResponse(t *testing.T) {
	resp := NewPresenceResponse("w1", []domain.OnlineUser{
		{UserSession: "s1", UserName: "Grill Guru"},
		{UserSession: "abcdef", UserName: ""},
	})

	assert.Equal(t, "w1", resp.WorkspaceID)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Users, 2)

	assert.Equal(t, "Grill Guru", resp.Users[0].UserName)
	assert.Equal(t, "hsl(45 93% 58%)", resp.Users[0].Color)
	assert.Equal(t, "GR", resp.Users[0].Initials)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, resp.Users[0].ColorHex)

	assert.Equal(t, "User-abcd", resp.Users[1].UserName)
	assert.Equal(t, "US", resp.Users[1].Initials)
}

func TestNewPresenceResponse_EmptyIsNotNil(t *testing.T) {
	resp := NewPresenceResponse("w1", nil)

	assert.NotNil(t, resp.Users)
	assert.Equal(t, 0, resp.Count)
}

func TestPresenceResponse_OnlineUsers(t *testing.T) {
	users := []domain.OnlineUser{
		{UserSession: "s1", UserName: "A"},
		{UserSession: "s2", UserName: "B"},
	}

	assert.Equal(t, users, NewPresenceResponse("w1", users).OnlineUsers())
}
