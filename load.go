package xsdmeta

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/internal/parser"
	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
	"github.com/jacoelho/xsdmeta/validation"
)

// LoadWithOptions loads a data model from fsys into a new repository.
// Problems found in the model are reported to h, which may be nil to log
// them through the configured logger.
func LoadWithOptions(fsys fs.FS, location string, opts LoadOptions, h validation.Handler) (*Repository, error) {
	r, err := NewRepositoryWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", location, err)
	}
	if err := r.LoadFS(fsys, location, h); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadFile loads a data model from a file path with default options.
// Entities live in the user namespace only: a top-level element of a schema
// with a targetNamespace fails the load with *errors.EntityNamespaceError.
func LoadFile(path string, h validation.Handler) (*Repository, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	return LoadWithOptions(os.DirFS(dir), base, NewLoadOptions(), h)
}

// LoadFS loads the data model at location in fsys.
func (r *Repository) LoadFS(fsys fs.FS, location string, h validation.Handler) error {
	f, err := fsys.Open(location)
	if err != nil {
		return fmt.Errorf("load schema %s: %w", location, err)
	}
	defer f.Close()
	if err := r.load(f, location, h); err != nil {
		return fmt.Errorf("load schema %s: %w", location, err)
	}
	return nil
}

// Load reads a data model from in, adds its types to the repository and
// freezes it.
//
// Fatal problems are returned and leave the repository as it was. Problems
// of the model itself are reported to h and never returned; callers decide
// from h.ErrorCount whether the repository is usable.
//
// A top-level element declared under a targetNamespace is fatal and
// returns *errors.EntityNamespaceError: entities belong to the user
// namespace. Named types of other namespaces load as reusable types.
func (r *Repository) Load(in io.Reader, h validation.Handler) error {
	if err := r.load(in, "", h); err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	return nil
}

func (r *Repository) load(in io.Reader, location string, h validation.Handler) error {
	if in == nil {
		return xsderrors.ErrNilInput
	}
	if r.Frozen() {
		return xsderrors.ErrFrozen
	}
	if h == nil {
		h = validation.NewDefaultHandler(r.opts.logger)
	}
	parsed, err := parser.Parse(in, r.opts.limits.options(location))
	if err != nil {
		return err
	}
	for _, d := range parsed.Diagnostics {
		validation.Report(h, d)
	}

	reports, types, err := r.build(parsed)
	if err != nil {
		return err
	}
	r.validate(h, reports, types)
	return nil
}

// build walks parsed into drafts and seals them. A fatal error drops every
// draft the walk registered.
func (r *Repository) build(parsed *schema.Schema) ([]xsderrors.Validation, []*metadata.ComplexType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return nil, nil, xsderrors.ErrFrozen
	}
	mark := len(r.drafts)
	v := newVisitor(r, parsed)
	if err := schema.Walk(parsed, v); err != nil {
		r.rollback(mark)
		return nil, nil, err
	}
	r.resolveAdditionalSuperTypes()
	r.declareUsages(v.usages)
	reports, types := r.seal()
	return reports, types, nil
}

// Freeze seals the open drafts of the repository, for instance those of a
// copy, and validates them through h, which may be nil.
func (r *Repository) Freeze(h validation.Handler) error {
	if h == nil {
		h = validation.NewDefaultHandler(r.opts.logger)
	}
	r.mu.Lock()
	if r.frozen {
		r.mu.Unlock()
		return xsderrors.ErrFrozen
	}
	r.resolveAdditionalSuperTypes()
	reports, types := r.seal()
	r.mu.Unlock()

	r.validate(h, reports, types)
	return nil
}
