package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/errors"
)

// diagramCommand creates the diagram management command.
func (c *CLI) diagramCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Manage the stored canonical diagram",
	}

	cmd.AddCommand(c.diagramShowCommand())
	cmd.AddCommand(c.diagramSetCommand())
	cmd.AddCommand(c.diagramClearCommand())

	return cmd
}

// diagramShowCommand creates the "diagram show" subcommand.
func (c *CLI) diagramShowCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(d *diagram.Model, set func(*diagram.Model) error) error {
				if d == nil {
					return errors.New(errors.ErrCodeNoDiagram, "the store holds no diagram")
				}
				if asJSON {
					return diagram.Write(d, c.Out)
				}
				printKeyValue(c.Out, "id", d.ID)
				printKeyValue(c.Out, "type", string(d.Type))
				printKeyValue(c.Out, "revision", strconv.Itoa(d.Revision))
				printKeyValue(c.Out, "nodes", strconv.Itoa(d.NodeCount()))
				printKeyValue(c.Out, "edges", strconv.Itoa(d.EdgeCount()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the canonical JSON")
	return cmd
}

// diagramSetCommand creates the "diagram set" subcommand.
func (c *CLI) diagramSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <diagram.json>",
		Short: "Replace the stored diagram with a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDiagram(args[0])
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(_ *diagram.Model, set func(*diagram.Model) error) error {
				if err := set(d); err != nil {
					return err
				}
				printSuccess(c.Out, "Stored %s", d)
				printNextStep(c.Out, "Browse its views", "witview browse")
				return nil
			})
		},
	}
}

// diagramClearCommand creates the "diagram clear" subcommand.
func (c *CLI) diagramClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(d *diagram.Model, set func(*diagram.Model) error) error {
				if d == nil {
					printInfo(c.Out, "Store is already empty")
					return nil
				}
				if err := set(nil); err != nil {
					return err
				}
				printSuccess(c.Out, "Cleared %s", d.ID)
				return nil
			})
		},
	}
}

// withStore opens the configured store and calls fn with its current diagram
// and a setter. Setting nil clears the store.
func (c *CLI) withStore(ctx context.Context, fn func(d *diagram.Model, set func(*diagram.Model) error) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	s, closeStore, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(ctx)

	d, err := s.Current(ctx)
	if err != nil {
		return fmt.Errorf("read %s store: %w", cfg.Store.Backend, err)
	}
	return fn(d, func(next *diagram.Model) error {
		if next == nil {
			return s.Clear(ctx)
		}
		return s.Set(ctx, next)
	})
}
