package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"workspace-service/internal/identity"
)

type IngredientsCmd struct {
	flags *Flags
}

// NewIngredientsCmd creates a new ingredients command
func NewIngredientsCmd(flags *Flags) *IngredientsCmd {
	return &IngredientsCmd{flags: flags}
}

// Register adds the ingredients command and its subcommands to the application
func (cmd *IngredientsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "ingredients",
		Aliases: []string{"ing"},
		Usage:   "List or add workspace ingredients",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List ingredients in position order",
				UsageText: "kitchen ingredients list <workspace>",
				Action:    cmd.list,
			},
			{
				Name:      "add",
				Usage:     "Add one or more ingredients",
				UsageText: "kitchen ingredients add <workspace> <name>...",
				Action:    cmd.add,
			},
		},
	})

	return app
}

func (cmd *IngredientsCmd) list(ctx context.Context, c *cli.Command) error {
	workspaceID := c.Args().First()
	if workspaceID == "" {
		return fmt.Errorf("workspace id is required")
	}

	list, err := cmd.flags.Client.ListIngredients(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("list ingredients: %w", err)
	}

	out := c.Root().Writer
	if len(list) == 0 {
		_, _ = fmt.Fprintln(out, "No ingredients yet")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tNAME\tADDED BY")
	for _, ing := range list {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", ing.Position, ing.Name, ing.CreatedByName)
	}
	return w.Flush()
}

func (cmd *IngredientsCmd) add(ctx context.Context, c *cli.Command) error {
	workspaceID := c.Args().First()
	if workspaceID == "" {
		return fmt.Errorf("workspace id is required")
	}

	allocator, err := newAllocator(ctx, cmd.flags)
	if err != nil {
		return err
	}
	session, name, err := identityFor(ctx, allocator, workspaceID)
	if err != nil {
		return err
	}

	names := c.Args().Tail()
	if len(names) == 0 {
		return fmt.Errorf("at least one ingredient name is required")
	}

	out := c.Root().Writer
	for _, raw := range names {
		ing, err := cmd.flags.Client.AddIngredient(ctx, workspaceID, session, name, strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("add %q: %w", raw, err)
		}
		_, _ = fmt.Fprintf(out, "added %s at #%d\n", ing.Name, ing.Position)
	}
	return nil
}

func identityFor(ctx context.Context, allocator *identity.Allocator, workspaceID string) (string, string, error) {
	session, err := allocator.GetOrCreateSession(ctx, workspaceID)
	if err != nil {
		return "", "", fmt.Errorf("allocate session: %w", err)
	}
	name, err := allocator.GetOrCreateName(ctx, workspaceID)
	if err != nil {
		return "", "", fmt.Errorf("allocate name: %w", err)
	}
	return session, name, nil
}
