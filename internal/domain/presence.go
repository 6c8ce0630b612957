package domain

import (
	"time"
)

// PresenceRecord is one heartbeat row per (workspace, session).
// ID and CreatedAt are set on first insert and never touched by later
// heartbeats, so together they give the join order of a workspace.
type PresenceRecord struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	WorkspaceID string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_presence_workspace_session,priority:1;index:idx_presence_workspace_last_seen,priority:1" json:"workspace_id"`
	UserSession string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_presence_workspace_session,priority:2" json:"user_session"`
	UserName    string    `gorm:"type:varchar(64);not null;default:''" json:"user_name"`
	LastSeen    time.Time `gorm:"not null;index:idx_presence_workspace_last_seen,priority:2;index:idx_presence_last_seen" json:"last_seen"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (PresenceRecord) TableName() string {
	return "workspace_presence"
}

// OnlineUser is the read view of a live presence record.
type OnlineUser struct {
	UserSession string `json:"user_session"`
	UserName    string `json:"user_name"`
}

// ActivitySession is the identity a single tab uses inside a workspace.
type ActivitySession struct {
	Session  string `json:"session"`
	UserName string `json:"userName"`
}

// WorkspaceInfo is the derived, store-free description of a workspace.
type WorkspaceInfo struct {
	ID            string `json:"id"`
	RoomName      string `json:"room_name"`
	OnlinePhrase  string `json:"online_phrase"`
	OfflinePhrase string `json:"offline_phrase"`
}
