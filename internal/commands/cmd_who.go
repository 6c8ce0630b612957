package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"workspace-service/internal/styles"
)

type WhoCmd struct {
	flags *Flags
}

// NewWhoCmd creates a new who command
func NewWhoCmd(flags *Flags) *WhoCmd {
	return &WhoCmd{flags: flags}
}

// Register adds the who command to the application
func (cmd *WhoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "who",
		Usage:     "Show who is online in a workspace",
		UsageText: "kitchen who <workspace>",
		Action:    cmd.run,
	})

	return app
}

func (cmd *WhoCmd) run(ctx context.Context, c *cli.Command) error {
	workspaceID := c.Args().First()
	if workspaceID == "" {
		return fmt.Errorf("workspace id is required")
	}

	info, err := cmd.flags.Client.DescribeWorkspace(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("describe workspace: %w", err)
	}
	users, err := cmd.flags.Client.ListOnline(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("list online users: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, styles.Roster(info, users, "", true))
	return nil
}
