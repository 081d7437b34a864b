package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jacoelho/xsdmeta"
	"github.com/jacoelho/xsdmeta/internal/config"
	"github.com/jacoelho/xsdmeta/internal/logging"
	"github.com/jacoelho/xsdmeta/validation"
)

const defaultEnvFile = ".env"

// app holds the flag values and resolved settings shared by the commands.
type app struct {
	stdout       io.Writer
	stderr       io.Writer
	provider     *config.Provider
	logger       *logging.ConsoleLogger
	settingsPath string
	envFile      string
	cpuProfile   string
	memProfile   string
	stopProfile  func() error
	settings     config.Settings
	strict       bool
	verbose      bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "xsdmeta",
		Short: "Compile XML Schema data models into entity metadata",
		Long: `xsdmeta loads an XML Schema data model, builds the entity and reusable
type metadata it declares and validates the result.

Settings are read from mdm.conf (Java properties) and XSDMETA_ environment
variables; a .env file in the working directory is loaded first.

Exit Codes:
  0  - Success
  1  - Data model failed to load, or has errors in strict mode
  2  - Usage error (invalid arguments, flags or settings)`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.settingsPath, "config", "", "settings file (default: ./"+config.FileName+" when present)")
	flags.StringVar(&a.envFile, "env-file", "", "environment file loaded before settings (default: ./"+defaultEnvFile+" when present)")
	flags.BoolVar(&a.strict, "strict", false, "exit non-zero when the data model has validation errors")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&a.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	flags.StringVar(&a.memProfile, "memprofile", "", "write memory profile to file")

	root.AddCommand(
		a.checkCommand(),
		a.typesCommand(),
		a.describeCommand(),
		a.settingsCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads the environment file and settings, then applies flag overrides.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(a.envFile); err != nil {
		return usageError("%w", err)
	}

	var err error
	a.provider, err = config.Load(a.settingsPath, a.settingsPath == "")
	if err != nil {
		return usageError("%w", err)
	}
	if cmd.Flags().Changed("strict") {
		a.provider.Set(config.KeyStrict, a.strict)
	}
	if cmd.Flags().Changed("verbose") {
		a.provider.Set(config.KeyVerbose, a.verbose)
	}
	a.settings, err = a.provider.Settings()
	if err != nil {
		return usageError("%w", err)
	}
	a.logger = logging.NewWriterLogger(a.stderr, a.settings.Verbose)
	if file := a.provider.File(); file != "" {
		a.logger.Verbose("settings read from %s", file)
	}

	if a.cpuProfile != "" {
		stop, err := startCPUProfile(a.cpuProfile)
		if err != nil {
			return err
		}
		a.stopProfile = stop
	}
	return nil
}

// teardown stops profiling. It runs whether or not the command succeeded.
func (a *app) teardown() error {
	var errs []error
	if a.stopProfile != nil {
		errs = append(errs, a.stopProfile())
		a.stopProfile = nil
	}
	if a.memProfile != "" {
		errs = append(errs, writeMemProfile(a.memProfile))
	}
	return errors.Join(errs...)
}

// loadEnvFile loads path into the environment without overriding variables
// already set. The default file is optional.
func loadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", defaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// loadOptions maps the settings onto repository load options.
func (a *app) loadOptions() xsdmeta.LoadOptions {
	opts := xsdmeta.NewLoadOptions().
		WithLogger(a.logger).
		WithMaxDepth(a.settings.MaxDepth).
		WithMaxAttrs(a.settings.MaxAttrs)
	if len(a.settings.DisabledProcessors) > 0 {
		opts = opts.WithoutProcessors(a.settings.DisabledProcessors...)
	}
	return opts
}

// load reads the data model at path, collecting every reported problem.
func (a *app) load(path string) (*xsdmeta.Repository, *validation.CollectingHandler, error) {
	h := validation.NewCollectingHandler()
	repo, err := xsdmeta.LoadWithOptions(os.DirFS(filepath.Dir(path)), filepath.Base(path), a.loadOptions(), h)
	if err != nil {
		return nil, h, &exitError{err: err, code: exitFailure}
	}
	return repo, h, nil
}

// loadValid loads path and prints its problems. Errors fail the command in
// strict mode only.
func (a *app) loadValid(path string) (*xsdmeta.Repository, error) {
	repo, h, err := a.load(path)
	if err != nil {
		return nil, err
	}
	for _, v := range h.Records() {
		if err := writef(a.stderr, "%s: %s\n", path, v.Error()); err != nil {
			return nil, err
		}
	}
	if a.settings.Strict && h.ErrorCount() > 0 {
		return nil, errFailed
	}
	return repo, nil
}
