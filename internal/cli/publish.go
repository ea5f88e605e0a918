package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/syslex/artitracker/pkg/publish"
	"github.com/syslex/artitracker/pkg/store"
)

// publishOpts holds the command-line flags for the publish command.
type publishOpts struct {
	url     string // tracking endpoint, overrides config
	apiKey  string // API key, overrides config
	noStore bool   // skip the local history
}

// publishCommand creates the publish command.
func (c *CLI) publishCommand() *cobra.Command {
	var opts publishOpts

	cmd := &cobra.Command{
		Use:   "publish [dir|pom.xml]",
		Short: "Send the artifact report to a tracking server",
		Long: `Collect the artifact report and publish it to the configured tracking
server. The report is recorded in the local history at the same time unless
--no-store is given.

The endpoint and key come from --url/--api-key, ARTITRACKER_URL and
ARTITRACKER_API_KEY, or the url and api_key config keys.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPublish(cmd, pathArg(args), opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "tracking server URL")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "tracking server API key")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "do not record the report locally")

	return cmd
}

func (c *CLI) runPublish(cmd *cobra.Command, path string, opts publishOpts) error {
	ctx := cmd.Context()
	cfg := c.config()

	url := firstSet(opts.url, cfg.URL)
	key := firstSet(opts.apiKey, cfg.APIKey)
	client, err := publish.NewClient(url, key, publish.WithLogger(c.Logger))
	if err != nil {
		return err
	}

	res, err := c.collect(ctx, path)
	if err != nil {
		return err
	}

	var st store.Store
	if !opts.noStore {
		if st, err = c.openStore(ctx); err != nil {
			return err
		}
		defer c.closeStore(st)
	}

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, os.Stderr, "Publishing "+res.Report.Coordinate()+"...")
	spinner.Start()

	var (
		receipt publish.Receipt
		rec     store.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		receipt, err = client.Publish(gctx, res.Report)
		return err
	})
	if st != nil {
		g.Go(func() error {
			var err error
			rec, err = st.Save(gctx, res.Report)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		spinner.StopWithError("Publish failed")
		return err
	}
	spinner.Stop()
	prog.done("Published " + res.Report.Coordinate())

	printSuccess(c.Out, "Published %s", StyleValue.Render(res.Report.Coordinate()))
	printCounts(c.Out, res.Report)
	printKeyValue(c.Out, "endpoint", client.Endpoint())
	if receipt.ID != "" {
		printKeyValue(c.Out, "remote id", receipt.ID)
	} else {
		printWarning(c.Out, "Server accepted the report without returning an id")
	}
	if rec.ID != "" {
		printKeyValue(c.Out, "local id", rec.ID)
		printNextStep(c.Out, "History", "artitracker history list "+rec.Coordinate)
	}
	return nil
}

// firstSet returns the first non-empty value.
func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
