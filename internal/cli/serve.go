package cli

import (
	"context"
	"net"

	"github.com/spf13/cobra"

	"github.com/matzehuels/witview/pkg/observability"
	"github.com/matzehuels/witview/pkg/server"
)

// serveOptions holds the serve command's flags.
type serveOptions struct {
	Addr    string
	Diagram string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the view mode API over HTTP",
		Long: `Serve the view mode coordinator over HTTP.

The canonical diagram comes from the configured store. Pass --diagram to
replace it with a file before serving. Changes written through the API or by
another process sharing the store are picked up by the coordinator.`,
		Example: `  witview serve --addr :9090 --diagram app.json
  WITVIEW_STORE_BACKEND=mongo WITVIEW_MONGO_URI=mongodb://localhost:27017 witview serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.Diagram, "diagram", "", "diagram file to load into the store before serving")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	s, closeStore, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(context.Background())

	if opts.Diagram != "" {
		d, err := readDiagram(opts.Diagram)
		if err != nil {
			return err
		}
		if err := s.Set(ctx, d); err != nil {
			return err
		}
		printSuccess(c.Out, "Loaded %s", opts.Diagram)
	}

	observability.SetSwitchHooks(switchLogger{logger: c.Logger})
	e, err := c.newEngine(ctx, cfg, s, nil, nil)
	if err != nil {
		return err
	}
	defer e.Close(context.Background())

	srv := server.New(e.coord, s, e.recorder, c.Logger)
	defer srv.Close()

	printInfo(c.Out, "Serving %s store on %s", cfg.Store.Backend, addr)
	printNextStep(c.Out, "Switch views", "curl -X PUT "+baseURL(addr)+"/api/view/uml")
	return srv.ListenAndServe(ctx, addr)
}

// baseURL turns a listen address into a URL a local client can reach.
func baseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
