package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/syslex/artitracker/pkg/observability"
	"github.com/syslex/artitracker/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string   // listen address, overrides config
	apiKeys []string // accepted upload keys, override config
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tracking server",
		Long: `Run the tracking server that receives published reports.

Reports are kept in the configured store backend. Uploads require one of the
configured API keys in the X-API-Key header. Prometheus metrics are served
on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringSliceVar(&opts.apiKeys, "api-key", nil, "accepted API key (repeatable)")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()
	cfg := c.config()

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer c.closeStore(st)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)
	observability.SetPipelineHooks(metrics)
	observability.SetStoreHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	keys := opts.apiKeys
	if len(keys) == 0 {
		keys = cfg.Server.APIKeys
	}
	handler, err := server.NewHandler(server.Options{
		Store:     st,
		APIKeys:   keys,
		CacheSize: cfg.Server.CacheSize,
		Gatherer:  reg,
		Logger:    c.Logger,
	})
	if err != nil {
		return err
	}

	addr := firstSet(opts.addr, cfg.Server.Addr)
	return server.New(addr, handler, c.Logger).Run(ctx)
}
