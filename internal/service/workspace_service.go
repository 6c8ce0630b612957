package service

import (
	"crypto/rand"
	"math/big"

	"workspace-service/internal/avatar"
	"workspace-service/internal/domain"
)

const (
	workspaceIDLength   = 13
	workspaceIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// WorkspaceService creates and describes workspaces. Workspaces have no row
// of their own; they exist as soon as someone heartbeats into one.
type WorkspaceService interface {
	Create() (*domain.WorkspaceInfo, error)
	Describe(workspaceID string) (*domain.WorkspaceInfo, error)
}

type workspaceServiceImpl struct {
	newID func() (string, error)
}

func NewWorkspaceService() WorkspaceService {
	return &workspaceServiceImpl{newID: randomWorkspaceID}
}

func (s *workspaceServiceImpl) Create() (*domain.WorkspaceInfo, error) {
	id, err := s.newID()
	if err != nil {
		return nil, err
	}
	return describe(id), nil
}

func (s *workspaceServiceImpl) Describe(workspaceID string) (*domain.WorkspaceInfo, error) {
	if err := validateWorkspace(workspaceID); err != nil {
		return nil, err
	}
	return describe(workspaceID), nil
}

func describe(workspaceID string) *domain.WorkspaceInfo {
	return &domain.WorkspaceInfo{
		ID:            workspaceID,
		RoomName:      avatar.RoomNameFor(workspaceID),
		OnlinePhrase:  avatar.ConnectionPhraseFor(workspaceID, true),
		OfflinePhrase: avatar.ConnectionPhraseFor(workspaceID, false),
	}
}

// randomWorkspaceID returns 13 lowercase base-36 characters
func randomWorkspaceID() (string, error) {
	max := big.NewInt(int64(len(workspaceIDAlphabet)))
	buf := make([]byte, workspaceIDLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = workspaceIDAlphabet[n.Int64()]
	}
	return string(buf), nil
}
