package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"workspace-service/internal/domain"
	"workspace-service/internal/presence"
	"workspace-service/internal/styles"
)

type JoinCmd struct {
	flags *Flags

	name string
}

// NewJoinCmd creates a new join command
func NewJoinCmd(flags *Flags) *JoinCmd {
	return &JoinCmd{flags: flags}
}

// Register adds the join command to the application
func (cmd *JoinCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "join",
		Usage:     "Join a workspace and watch who is online",
		UsageText: "kitchen join [--name NAME] <workspace>",
		Description: `Publishes heartbeats for this terminal and redraws the online set whenever
it changes. Type a line and press enter to change your display name.
Interrupt to leave; your presence record is removed on the way out.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Aliases:     []string{"n"},
				Usage:       "display name (defaults to a random chef name)",
				Destination: &cmd.name,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *JoinCmd) run(ctx context.Context, c *cli.Command) error {
	workspaceID := c.Args().First()
	if workspaceID == "" {
		return fmt.Errorf("workspace id is required")
	}

	info, err := cmd.flags.Client.DescribeWorkspace(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("describe workspace: %w", err)
	}

	allocator, err := newAllocator(ctx, cmd.flags)
	if err != nil {
		return err
	}

	coordinator := presence.NewCoordinator(workspaceID, cmd.flags.Client, allocator, cmd.flags.Presence, cmd.flags.Logger)

	out := c.Root().Writer
	coordinator.OnChange(func(users []domain.OnlineUser) {
		_, _ = fmt.Fprintln(out, styles.Roster(info, users, coordinator.Session(), coordinator.IsOnline()))
	})

	if err := coordinator.Start(ctx); err != nil {
		return fmt.Errorf("join workspace: %w", err)
	}
	defer func() {
		exitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		coordinator.Exit(exitCtx)
	}()

	if cmd.name != "" {
		if err := coordinator.SetUserName(ctx, cmd.name); err != nil {
			cmd.flags.Logger.Warn("Failed to set display name", zap.Error(err))
		}
	}

	_, _ = fmt.Fprintln(out, styles.MutedStyle.Render(fmt.Sprintf("joined as %s", coordinator.UserName())))

	names := readLines(ctx, c.Root().Reader)
	for {
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-names:
			if !ok {
				<-ctx.Done()
				return nil
			}
			if err := coordinator.SetUserName(ctx, name); err != nil {
				cmd.flags.Logger.Warn("Failed to set display name", zap.Error(err))
			}
		}
	}
}

// readLines streams trimmed non-empty lines from r until it is exhausted.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	if r == nil {
		close(lines)
		return lines
	}

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
