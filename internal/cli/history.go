package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/syslex/artitracker/pkg/pom"
	"github.com/syslex/artitracker/pkg/report"
	"github.com/syslex/artitracker/pkg/store"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse stored reports",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())

	return cmd
}

// historyListCommand creates the "history list" subcommand.
func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list [group:name]",
		Short: "List stored reports of an artifact, newest first",
		Long: `List stored reports of an artifact, newest first.

Without an argument the coordinate of the project in the working directory
is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := coordinateArg(args)
			if err != nil {
				return err
			}

			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeStore(st)

			recs, err := st.List(cmd.Context(), coord, limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo(c.Out, "No reports stored for %s", coord)
				return nil
			}
			fmt.Fprintln(c.Out, historyTable(recs))
			printNextStep(c.Out, "Show one", "artitracker history show "+recs[0].ID)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum number of reports")

	return cmd
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.outputFormat(reportOpts{format: format})
			if err != nil {
				return err
			}

			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeStore(st)

			rec, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return report.Encode(c.Out, rec.Report, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, json-pretty, yaml")

	return cmd
}

// coordinateArg returns the coordinate argument, or the coordinate of the
// project in the working directory.
func coordinateArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	path, err := pom.Find(".")
	if err != nil {
		return "", err
	}
	m, err := pom.ReadFile(path)
	if err != nil {
		return "", err
	}
	return m.Coordinate(), nil
}

// historyTable renders records as a table.
func historyTable(recs []store.Record) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		version, java, refs := "—", "—", "0"
		if r := rec.Report; r != nil {
			if r.Artifact != nil {
				version = orDash(r.Artifact.Version)
			}
			java = javaLabel(r)
			refs = strconv.Itoa(len(r.Dependencies))
		}
		rows = append(rows, []string{
			rec.ID,
			rec.StoredAt.Local().Format(time.DateTime),
			version,
			java,
			refs,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Stored", "Version", "Language", "Refs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleDim
			default:
				return StyleValue
			}
		}).
		Render()
}
