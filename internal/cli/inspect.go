package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect [dir|pom.xml]",
		Short: "Browse the artifacts a project references",
		Long: `Collect the artifact report and browse its references interactively.
Use tab to cycle between all references, the parent, dependencies and
plugins. With --plain the first page is printed without starting the
interactive view.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.collect(cmd.Context(), pathArg(args))
			if err != nil {
				return err
			}

			model := NewReferenceListModel(res.Report)
			if plain {
				model.Height = len(model.Visible)
				_, err := c.Out.Write([]byte(model.View() + "\n"))
				return err
			}

			p := tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithOutput(c.Out))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the references without the interactive view")

	return cmd
}
