package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/matzehuels/witview/pkg/errors"
	"github.com/matzehuels/witview/pkg/observability"
	"github.com/matzehuels/witview/pkg/render"
	"github.com/matzehuels/witview/pkg/render/mermaid"
	"github.com/matzehuels/witview/pkg/render/nodelink"
	"github.com/matzehuels/witview/pkg/view"
	"github.com/matzehuels/witview/pkg/viewmode"
)

// transformOptions holds the transform command's flags.
type transformOptions struct {
	View   string
	Format string
	Output string
	Scale  float64
}

// transformCommand creates the transform command.
func (c *CLI) transformCommand() *cobra.Command {
	opts := transformOptions{View: string(view.Default), Format: render.FormatJSON, Scale: 2}

	cmd := &cobra.Command{
		Use:   "transform [diagram.json]",
		Short: "Write one view of a diagram",
		Long: `Project a diagram into a view mode and write the result.

The diagram is read from the file argument, or from the configured store when
no file is given. The canonical diagram is never modified.`,
		Example: `  witview transform app.json --view uml
  witview transform app.json --view wit-interface --format svg -o app.svg
  witview transform --view wit-dependencies --format mermaid`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runTransform(cmd.Context(), path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.View, "view", opts.View, "view mode: "+modeList())
	cmd.Flags().StringVarP(&opts.Format, "format", "f", opts.Format, "output format: "+strings.Join(render.Formats, ", "))
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG scale factor")

	_ = cmd.RegisterFlagCompletionFunc("view", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return modeIDs(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return render.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runTransform executes the transform command.
func (c *CLI) runTransform(ctx context.Context, path string, opts transformOptions) error {
	mode, err := view.Parse(opts.View)
	if err != nil {
		return err
	}
	enc, err := encoderFor(opts.Format)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	s, closeStore, err := c.sourceStore(ctx, cfg, path)
	if err != nil {
		return err
	}
	defer closeStore(ctx)

	ctx = withLogger(ctx, c.Logger)
	probe := &cacheProbe{CacheHooks: observability.Cache()}
	observability.SetCacheHooks(probe)
	defer observability.SetCacheHooks(probe.CacheHooks)

	e, err := c.newEngine(ctx, cfg, s, nil, enc, viewmode.WithTransition(0, 0))
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	if e.recorder.Diagram() == nil {
		return errors.New(errors.ErrCodeNoDiagram, "no diagram: pass a file or run 'witview diagram set'")
	}

	prog := newProgress(loggerFromContext(ctx))
	if err := e.coord.SwitchViewMode(ctx, mode); err != nil {
		return err
	}
	prog.done("Projected view", "mode", mode)

	data, err := convert(ctx, opts, e.recorder.Last())
	if err != nil {
		return err
	}

	if opts.Output == "" {
		_, err := c.Out.Write(data)
		return err
	}
	if err := errors.ValidatePath(opts.Output); err != nil {
		return err
	}
	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.Output, err)
	}

	d := e.recorder.Diagram()
	printSuccess(c.Out, "Wrote %s view", mode)
	printFile(c.Out, opts.Output)
	printStats(c.Out, d.NodeCount(), d.EdgeCount(), probe.hit())
	return nil
}

// encoderFor returns the recorder encoder for format. PDF and PNG record SVG
// and are converted afterwards.
func encoderFor(format string) (render.Encoder, error) {
	switch format {
	case render.FormatJSON:
		return render.JSON, nil
	case render.FormatDOT:
		return nodelink.Encode, nil
	case render.FormatSVG, render.FormatPDF, render.FormatPNG:
		return nodelink.EncodeSVG, nil
	case render.FormatMermaid:
		return mermaid.Encode, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown format %q (valid: %s)", format, strings.Join(render.Formats, ", "))
}

func convert(ctx context.Context, opts transformOptions, data []byte) ([]byte, error) {
	switch opts.Format {
	case render.FormatPDF:
		return render.ToPDF(ctx, data)
	case render.FormatPNG:
		return render.ToPNG(ctx, data, opts.Scale)
	}
	return data, nil
}

// =============================================================================
// Cache Probe
// =============================================================================

// cacheProbe counts projection cache hits and forwards every event to the
// hooks it wraps.
type cacheProbe struct {
	observability.CacheHooks
	hits atomic.Int32
}

func (p *cacheProbe) OnCacheHit(ctx context.Context, keyType string) {
	p.hits.Add(1)
	p.CacheHooks.OnCacheHit(ctx, keyType)
}

func (p *cacheProbe) hit() bool { return p.hits.Load() > 0 }

// =============================================================================
// Mode Helpers
// =============================================================================

func modeIDs() []string {
	var out []string
	for _, m := range view.Modes() {
		out = append(out, string(m.ID))
	}
	return out
}

func modeList() string {
	ids := modeIDs()
	slices.Sort(ids)
	return strings.Join(ids, ", ")
}
