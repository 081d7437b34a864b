package annotation

import (
	"slices"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/metadata"
)

// Pipeline runs processors over the annotations of one type or field.
type Pipeline struct {
	processors []Processor
}

// NewPipeline returns a pipeline running processors in the given order.
func NewPipeline(processors ...Processor) *Pipeline {
	return &Pipeline{processors: slices.Clone(processors)}
}

// DefaultProcessors returns the built-in processors in their processing order.
func DefaultProcessors() []Processor {
	return []Processor{
		ForeignKeyProcessor{},
		UserAccessProcessor{},
		SchematronProcessor{},
		PrimaryKeyInfoProcessor{},
		LookupFieldProcessor{},
		LabelProcessor{},
	}
}

// Default returns a pipeline of the built-in processors.
func Default() *Pipeline {
	return NewPipeline(DefaultProcessors()...)
}

// Without returns a copy of the pipeline without the named processors.
func (p *Pipeline) Without(names ...string) *Pipeline {
	if p == nil {
		return nil
	}
	out := &Pipeline{}
	for _, proc := range p.processors {
		if !slices.Contains(names, proc.Name()) {
			out.processors = append(out.processors, proc)
		}
	}
	return out
}

// Names returns the processor names in processing order.
func (p *Pipeline) Names() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.processors))
	for _, proc := range p.processors {
		names = append(names, proc.Name())
	}
	return names
}

// ProcessType runs both passes over the type annotations.
func (p *Pipeline) ProcessType(ctx *Context, b *metadata.TypeBuilder) error {
	if p == nil || ctx == nil || ctx.Annotation == nil {
		return nil
	}
	for _, pass := range []Pass{PassReference, PassDependent} {
		for _, proc := range p.processors {
			if err := proc.ProcessType(ctx, pass, b); err != nil {
				return &xsderrors.AnnotationProcessingError{Err: err, Type: b.Name(), Processor: proc.Name()}
			}
		}
	}
	return nil
}

// ProcessField runs both passes over the field annotations and folds the
// resulting state into b.
func (p *Pipeline) ProcessField(ctx *Context, b *metadata.FieldBuilder) error {
	if p == nil || ctx == nil || ctx.Annotation == nil {
		return nil
	}
	state := &State{}
	for _, pass := range []Pass{PassReference, PassDependent} {
		for _, proc := range p.processors {
			if err := proc.ProcessField(ctx, pass, state); err != nil {
				return &xsderrors.AnnotationProcessingError{Err: err, Type: ctx.TypeName, Field: b.Name(), Processor: proc.Name()}
			}
		}
	}
	state.Apply(b)
	return nil
}
