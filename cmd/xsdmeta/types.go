package main

import (
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jacoelho/xsdmeta/metadata"
)

func (a *app) typesCommand() *cobra.Command {
	var reusable bool
	cmd := &cobra.Command{
		Use:   "types <schema.xsd>",
		Short: "List the entity types of a data model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.loadValid(args[0])
			if err != nil {
				return err
			}
			types := repo.InstantiableTypes()
			if reusable {
				types = append(types, repo.NonInstantiableTypes()...)
			}
			return a.printTypes(types)
		},
	}
	cmd.Flags().BoolVar(&reusable, "reusable", false, "include reusable complex types")
	return cmd
}

func (a *app) printTypes(types []*metadata.ComplexType) error {
	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "NAME\tKIND\tKEYS\tSUPER\tFIELDS"); err != nil {
		return err
	}
	for _, t := range types {
		kind := "reusable"
		if t.Instantiable() {
			kind = "entity"
		}
		keys := make([]string, 0, len(t.Keys()))
		for _, k := range t.Keys() {
			keys = append(keys, k.Path())
		}
		super := "-"
		if s := t.EntitySuperType(); s != nil {
			super = s.Name()
		}
		if err := writef(w, "%s\t%s\t%s\t%s\t%d\n",
			t.Name(), kind, dash(strings.Join(keys, ",")), super, len(t.Fields())); err != nil {
			return err
		}
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
