package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"workspace-service/internal/styles"
)

type CreateCmd struct {
	flags *Flags
}

// NewCreateCmd creates a new create command
func NewCreateCmd(flags *Flags) *CreateCmd {
	return &CreateCmd{flags: flags}
}

// Register adds the create command to the application
func (cmd *CreateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "create",
		Usage:       "Create a new workspace",
		UsageText:   "kitchen create",
		Description: "Asks the server for a fresh workspace id and prints it with its room name.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *CreateCmd) run(ctx context.Context, c *cli.Command) error {
	info, err := cmd.flags.Client.CreateWorkspace(ctx)
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	out := c.Root().Writer
	_, _ = fmt.Fprintln(out, styles.TitleStyle.Render(info.RoomName))
	_, _ = fmt.Fprintln(out, info.ID)
	return nil
}
