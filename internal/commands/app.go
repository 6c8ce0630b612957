package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"workspace-service/internal/client"
	"workspace-service/internal/config"
)

// NewApp builds the kitchen command tree
func NewApp(flags *Flags, version string) *cli.Command {
	app := &cli.Command{
		Name:      "kitchen",
		Usage:     "Cook together from the terminal",
		UsageText: "kitchen [global options] command [command options]",
		Version:   version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Aliases:     []string{"s"},
				Usage:       "workspace API base url",
				Sources:     cli.EnvVars("KITCHEN_SERVER"),
				Value:       "http://localhost:8080/api",
				Destination: &flags.Server,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "request timeout",
				Value:       10 * time.Second,
				Destination: &flags.Timeout,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("KITCHEN_LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "redis",
				Usage:       "redis url for persisting tab identities",
				Sources:     cli.EnvVars("KITCHEN_REDIS_URL"),
				Destination: &flags.RedisURL,
			},
			&cli.StringFlag{
				Name:        "tab",
				Usage:       "tab id; with --redis the same tab keeps its session and name",
				Sources:     cli.EnvVars("KITCHEN_TAB"),
				Destination: &flags.TabID,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "yaml config whose presence section sets the heartbeat timings",
				Sources:     cli.EnvVars("KITCHEN_CONFIG"),
				Destination: &flags.Config,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := newLogger(flags.LogLevel)
			if err != nil {
				return ctx, fmt.Errorf("init logger: %w", err)
			}
			flags.Logger = logger

			flags.Presence = config.DefaultPresence()
			if flags.Config != "" {
				cfg, err := config.Load(flags.Config)
				if err != nil {
					return ctx, fmt.Errorf("load config: %w", err)
				}
				flags.Presence = cfg.Presence
			}
			flags.Client = client.NewWorkspaceClient(flags.Server, flags.Timeout, logger, nil)
			return ctx, nil
		},
	}

	app = NewCreateCmd(flags).Register(app)
	app = NewJoinCmd(flags).Register(app)
	app = NewWhoCmd(flags).Register(app)
	app = NewIngredientsCmd(flags).Register(app)
	app = NewSuggestCmd(flags).Register(app)

	return app
}

// newLogger logs to stderr so it never interleaves with command output
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stderr"}
	config.DisableStacktrace = true
	return config.Build()
}
