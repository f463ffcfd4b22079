package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/witview/pkg/errors"
	"github.com/matzehuels/witview/pkg/observability"
	"github.com/matzehuels/witview/pkg/render/mermaid"
	"github.com/matzehuels/witview/pkg/viewmode"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [diagram.json]",
		Short: "Switch between view modes interactively",
		Long: `Open an interactive view mode browser.

The installed view is previewed as a Mermaid flowchart. Switching back to the
component view restores the canonical diagram exactly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runBrowse(cmd.Context(), path)
		},
	}
}

func (c *CLI) runBrowse(ctx context.Context, path string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	s, closeStore, err := c.sourceStore(ctx, cfg, path)
	if err != nil {
		return err
	}
	defer closeStore(ctx)

	observability.SetSwitchHooks(switchLogger{logger: c.Logger})
	e, err := c.newEngine(ctx, cfg, s, nil, mermaid.Encode, viewmode.WithTransition(0, 0))
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	if e.recorder.Diagram() == nil {
		return errors.New(errors.ErrCodeNoDiagram, "no diagram: pass a file or run 'witview diagram set'")
	}

	p := tea.NewProgram(newViewBrowserModel(engineBackend{ctx: ctx, e: e}), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(ViewBrowserModel); ok {
		printInfo(c.Out, "Left in %s view", m.current())
	}
	return nil
}
