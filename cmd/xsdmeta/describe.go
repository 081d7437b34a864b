package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jacoelho/xsdmeta/internal/describe"
)

func (a *app) describeCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "describe <schema.xsd>",
		Short: "Print the metadata of a data model as YAML or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.outputFormat(format)
			if err != nil {
				return err
			}
			repo, err := a.loadValid(args[0])
			if err != nil {
				return err
			}
			return describe.Encode(a.stdout, describe.Describe(repo), f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "", "output format: yaml or json (default: yaml on a terminal, json otherwise)")
	return cmd
}

// outputFormat resolves the --format flag. Without one, terminals get YAML
// and pipes get JSON.
func (a *app) outputFormat(flag string) (describe.Format, error) {
	if flag != "" {
		f, err := describe.ParseFormat(flag)
		if err != nil {
			return "", usageError("%w", err)
		}
		return f, nil
	}
	if f, ok := a.stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return describe.FormatYAML, nil
	}
	return describe.FormatJSON, nil
}
