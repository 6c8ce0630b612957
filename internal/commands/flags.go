package commands

import (
	"time"

	"go.uber.org/zap"

	"workspace-service/internal/client"
	"workspace-service/internal/config"
)

type Flags struct {
	Server   string
	Timeout  time.Duration
	LogLevel string
	RedisURL string
	TabID    string
	Config   string

	// Presence holds the timings from --config, or the defaults
	Presence config.PresenceConfig

	// Logger and Client are built in the Before hook and shared by all commands
	Logger *zap.Logger
	Client *client.WorkspaceClient
}
