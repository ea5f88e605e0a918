package cli

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/report"
)

// reportOpts holds the command-line flags for the report command.
type reportOpts struct {
	output string // output file path (stdout if empty)
	format string // json, json-pretty or yaml; config default if empty
	pretty bool   // shorthand for --format json-pretty
	save   bool   // also record the report in the history store
}

// reportCommand creates the report command.
func (c *CLI) reportCommand() *cobra.Command {
	var opts reportOpts

	cmd := &cobra.Command{
		Use:   "report [dir|pom.xml]",
		Short: "Print the artifact report of a project",
		Long: `Read the project descriptor and print its artifact report.

The argument is a pom.xml file or a directory containing one; it defaults to
the working directory.

Examples:
  artitracker report                     # ./pom.xml as compact JSON
  artitracker report service --pretty    # service/pom.xml, indented
  artitracker report -o report.yaml --format yaml
  artitracker report --save              # also keep it in the history`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReport(cmd, pathArg(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json, json-pretty, yaml")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	cmd.Flags().BoolVar(&opts.save, "save", false, "record the report in the history store")

	return cmd
}

func (c *CLI) runReport(cmd *cobra.Command, path string, opts reportOpts) error {
	format, err := c.outputFormat(opts)
	if err != nil {
		return err
	}

	res, err := c.collect(cmd.Context(), path)
	if err != nil {
		return err
	}

	if opts.save {
		st, err := c.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer c.closeStore(st)
		rec, err := st.Save(cmd.Context(), res.Report)
		if err != nil {
			return err
		}
		c.Logger.Info("Recorded report", "id", rec.ID, "coordinate", rec.Coordinate)
	}

	if opts.output == "" {
		return report.Encode(c.Out, res.Report, format)
	}

	var buf bytes.Buffer
	if err := report.Encode(&buf, res.Report, format); err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return aterrors.Wrap(aterrors.ErrCodeInvalidPath, err, "write %s", opts.output)
	}

	printSuccess(c.Out, "Report for %s", StyleValue.Render(res.Report.Coordinate()))
	printCounts(c.Out, res.Report)
	if res.Version != nil {
		printDetail(c.Out, "%s from %s", javaLabel(res.Report), res.Version.Source)
	}
	printFile(c.Out, opts.output)
	return nil
}

// outputFormat resolves the format flags against the configured default.
func (c *CLI) outputFormat(opts reportOpts) (report.Format, error) {
	if opts.pretty {
		if opts.format != "" && opts.format != string(report.FormatJSON) && opts.format != string(report.FormatPrettyJSON) {
			return "", aterrors.New(aterrors.ErrCodeInvalidFormat, "--pretty applies to JSON only")
		}
		return report.FormatPrettyJSON, nil
	}
	name := opts.format
	if name == "" {
		name = c.config().Format
	}
	return report.ParseFormat(name)
}

// pathArg returns the optional project path argument.
func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
