package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/witview/pkg/view"
	"github.com/matzehuels/witview/pkg/viewmode"
)

// viewsCommand creates the views command.
func (c *CLI) viewsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "views [diagram.json]",
		Short: "List view modes and which apply to a diagram",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runViews(cmd.Context(), path)
		},
	}
}

func (c *CLI) runViews(ctx context.Context, path string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	s, closeStore, err := c.sourceStore(ctx, cfg, path)
	if err != nil {
		return err
	}
	defer closeStore(ctx)

	e, err := c.newEngine(ctx, cfg, s, nil, nil, viewmode.WithTransition(0, 0))
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	d := e.recorder.Diagram()
	if d == nil {
		printWarning(c.Out, "No diagram loaded; availability is unknown")
	} else {
		printInfo(c.Out, "%s", d)
	}
	fmt.Fprintln(c.Out, modeTable(modeRows(ctx, e.coord), -1))
	if d != nil {
		printNextStep(c.Out, "Project a view", "witview transform "+path+" --view "+string(view.ModeUML))
	}
	return nil
}

// modeRows lists every view mode with its availability for the coordinator's
// current diagram.
func modeRows(ctx context.Context, coord *viewmode.Coordinator) []modeRow {
	available := make(map[view.Mode]bool)
	for _, m := range coord.AvailableViewModes(ctx) {
		available[m.ID] = true
	}
	current := coord.CurrentViewMode()

	var rows []modeRow
	for _, m := range view.Modes() {
		rows = append(rows, modeRow{Mode: m, Available: available[m.ID], Active: m.ID == current})
	}
	return rows
}
