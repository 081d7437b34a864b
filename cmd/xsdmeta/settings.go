package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jacoelho/xsdmeta/internal/config"
)

// resolvedSettings is the printable form of the effective settings.
type resolvedSettings struct {
	File                string   `yaml:"file,omitempty"`
	DisabledAnnotations []string `yaml:"metadata.annotations.disabled,omitempty"`
	MaxDepth            int      `yaml:"metadata.xml.max_depth"`
	MaxAttrs            int      `yaml:"metadata.xml.max_attrs"`
	Cluster             bool     `yaml:"system.cluster"`
	Strict              bool     `yaml:"metadata.validation.strict"`
	Verbose             bool     `yaml:"metadata.log.verbose"`
}

func (a *app) settingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(newResolvedSettings(a.provider.File(), a.settings))
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(out)
			return err
		},
	}
}

func newResolvedSettings(file string, s config.Settings) resolvedSettings {
	return resolvedSettings{
		File:                file,
		DisabledAnnotations: s.DisabledProcessors,
		MaxDepth:            s.MaxDepth,
		MaxAttrs:            s.MaxAttrs,
		Cluster:             s.Cluster,
		Strict:              s.Strict,
		Verbose:             s.Verbose,
	}
}
