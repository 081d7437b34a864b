package xsdmeta

import (
	"fmt"
	"slices"

	"github.com/jacoelho/xsdmeta/annotation"
	"github.com/jacoelho/xsdmeta/internal/logging"
)

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved() int {
	if !o.set {
		return 0
	}
	return o.value
}

// LoadOptions configures repositories and schema loading.
type LoadOptions struct {
	logger        Logger
	processors    []annotation.Processor
	disabled      []string
	maxDepth      intOption
	maxAttrs      intOption
	processorsSet bool
	skipCommon    bool
}

type resolvedLoadOptions struct {
	logger      Logger
	pipeline    *annotation.Pipeline
	limits      xmlParseLimits
	commonTypes bool
}

// NewLoadOptions returns a default, valid load options value.
func NewLoadOptions() LoadOptions {
	return LoadOptions{}
}

// Validate validates load options values.
func (o LoadOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithLogger sets the logger receiving repository diagnostics (nil discards them).
func (o LoadOptions) WithLogger(logger Logger) LoadOptions {
	o.logger = logger
	return o
}

// WithProcessors replaces the annotation processors, run in the given order.
func (o LoadOptions) WithProcessors(processors ...annotation.Processor) LoadOptions {
	o.processors = slices.Clone(processors)
	o.processorsSet = true
	return o
}

// WithoutProcessors drops the named annotation processors from the pipeline.
func (o LoadOptions) WithoutProcessors(names ...string) LoadOptions {
	o.disabled = append(slices.Clone(o.disabled), names...)
	return o
}

// WithMaxDepth sets the schema XML max depth limit (0 uses default).
func (o LoadOptions) WithMaxDepth(value int) LoadOptions {
	o.maxDepth = intOption{value: value, set: true}
	return o
}

// WithMaxAttrs sets the schema XML max attributes limit (0 uses default).
func (o LoadOptions) WithMaxAttrs(value int) LoadOptions {
	o.maxAttrs = intOption{value: value, set: true}
	return o
}

// WithCommonTypes controls whether repositories start with the XML Schema
// built-in vocabulary. It is enabled by default.
func (o LoadOptions) WithCommonTypes(value bool) LoadOptions {
	o.skipCommon = !value
	return o
}

func (o LoadOptions) withDefaults() (resolvedLoadOptions, error) {
	limits, err := resolveXMLParseLimits(o.maxDepth.resolved(), o.maxAttrs.resolved())
	if err != nil {
		return resolvedLoadOptions{}, err
	}
	processors := annotation.DefaultProcessors()
	if o.processorsSet {
		processors = o.processors
	}
	for i, p := range processors {
		if p == nil {
			return resolvedLoadOptions{}, fmt.Errorf("annotation processor %d is nil", i)
		}
	}
	pipeline := annotation.NewPipeline(processors...)
	if len(o.disabled) > 0 {
		pipeline = pipeline.Without(o.disabled...)
	}
	logger := o.logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return resolvedLoadOptions{
		logger:      logger,
		pipeline:    pipeline,
		limits:      limits,
		commonTypes: !o.skipCommon,
	}, nil
}
