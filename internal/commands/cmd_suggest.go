package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"workspace-service/internal/styles"
)

type SuggestCmd struct {
	flags *Flags
}

// NewSuggestCmd creates a new suggest command
func NewSuggestCmd(flags *Flags) *SuggestCmd {
	return &SuggestCmd{flags: flags}
}

// Register adds the suggest command to the application
func (cmd *SuggestCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "suggest",
		Usage:       "Suggest recipes from the workspace's ingredients",
		UsageText:   "kitchen suggest <workspace>",
		Description: "Generates three recipes using the ingredients and preferences of everyone in the workspace.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *SuggestCmd) run(ctx context.Context, c *cli.Command) error {
	workspaceID := c.Args().First()
	if workspaceID == "" {
		return fmt.Errorf("workspace id is required")
	}

	allocator, err := newAllocator(ctx, cmd.flags)
	if err != nil {
		return err
	}
	session, _, err := identityFor(ctx, allocator, workspaceID)
	if err != nil {
		return err
	}

	suggestion, err := cmd.flags.Client.SuggestRecipes(ctx, workspaceID, session)
	if err != nil {
		return fmt.Errorf("suggest recipes: %w", err)
	}

	out := c.Root().Writer
	for _, r := range suggestion.Recipes {
		_, _ = fmt.Fprintln(out, styles.Recipe(r))
	}
	return nil
}
