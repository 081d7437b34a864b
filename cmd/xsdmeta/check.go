package main

import (
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
)

type checkResult struct {
	err      error
	records  xsderrors.ValidationList
	entities int
	reusable int
	errors   int
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <schema.xsd>...",
		Short: "Load data models and report their problems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(args)
		},
	}
}

// check loads every data model concurrently, each into its own repository,
// and prints the results in argument order.
func (a *app) check(paths []string) error {
	results := make([]checkResult, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			repo, h, err := a.load(path)
			results[i] = checkResult{err: err, records: h.Records(), errors: h.ErrorCount()}
			if err == nil {
				results[i].entities = len(repo.InstantiableTypes())
				results[i].reusable = len(repo.NonInstantiableTypes())
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := false
	for i, r := range results {
		path := paths[i]
		if r.err != nil {
			failed = true
			if err := writef(a.stderr, "%s: %v\n", path, r.err); err != nil {
				return err
			}
			continue
		}
		for _, v := range r.records {
			if err := writef(a.stderr, "%s: %s\n", path, v.Error()); err != nil {
				return err
			}
		}
		if r.errors > 0 && a.settings.Strict {
			failed = true
		}
		status := "ok"
		if r.errors > 0 {
			status = "has errors"
		}
		if err := writef(a.stdout, "%s: %s (%d entity types, %d reusable types, %d errors, %d warnings)\n",
			path, status, r.entities, r.reusable, r.errors, len(r.records)-r.errors); err != nil {
			return err
		}
	}
	if failed {
		return errFailed
	}
	return nil
}
