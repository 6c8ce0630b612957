package dto

import (
	"workspace-service/internal/avatar"
	"workspace-service/internal/domain"
)

// HeartbeatRequest carries the display name a tab wants to publish
// @Description An empty userName falls back to "User-" plus the first four characters of the session
type HeartbeatRequest struct {
	UserName string `json:"userName" binding:"max=256" example:"Chef Sizzle"`
}

// OnlineUserResponse is an online user decorated with its derived avatar
type OnlineUserResponse struct {
	UserSession string `json:"user_session" example:"3f2b8c1e-9a4d-4e57-b1a0-7c6d5e4f3a2b"`
	UserName    string `json:"user_name" example:"Chef Sizzle"`
	Color       string `json:"color" example:"hsl(45 93% 58%)"`
	ColorHex    string `json:"color_hex" example:"#f7c948"`
	Initials    string `json:"initials" example:"CH"`
}

// PresenceResponse is the online set of one workspace in join order
type PresenceResponse struct {
	WorkspaceID string               `json:"workspace_id" example:"k3j9x0p2m4q7r"`
	Count       int                  `json:"count" example:"2"`
	Users       []OnlineUserResponse `json:"users"`
}

// ReapResponse reports how many stale records a reap removed
type ReapResponse struct {
	Deleted int64 `json:"deleted" example:"1"`
}

// HeartbeatResponse echoes the record the heartbeat wrote
type HeartbeatResponse struct {
	WorkspaceID string `json:"workspace_id"`
	UserSession string `json:"user_session"`
	UserName    string `json:"user_name"`
}

func NewOnlineUserResponse(u domain.OnlineUser) OnlineUserResponse {
	name := avatar.DisplayName(u.UserName, u.UserSession)
	color := avatar.ColorFor(u.UserSession)
	return OnlineUserResponse{
		UserSession: u.UserSession,
		UserName:    name,
		Color:       color.CSS(),
		ColorHex:    color.Hex(),
		Initials:    avatar.Initials(name),
	}
}

func NewPresenceResponse(workspaceID string, users []domain.OnlineUser) *PresenceResponse {
	out := make([]OnlineUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewOnlineUserResponse(u))
	}
	return &PresenceResponse{
		WorkspaceID: workspaceID,
		Count:       len(out),
		Users:       out,
	}
}

// OnlineUsers strips the avatar decoration
func (r *PresenceResponse) OnlineUsers() []domain.OnlineUser {
	users := make([]domain.OnlineUser, 0, len(r.Users))
	for _, u := range r.Users {
		users = append(users, domain.OnlineUser{UserSession: u.UserSession, UserName: u.UserName})
	}
	return users
}
