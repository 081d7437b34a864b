package annotation

import (
	"strings"

	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
)

// Type-level path appinfo sources.
const (
	SourcePrimaryKeyInfo = "X_PrimaryKeyInfo"
	SourceLookupField    = "X_Lookup_Field"
)

// PrimaryKeyInfoProcessor records the fields displayed in place of an
// entity key. Values are Type/path; the type prefix is dropped.
type PrimaryKeyInfoProcessor struct{}

func (PrimaryKeyInfoProcessor) Name() string { return "primary-key-info" }

func (PrimaryKeyInfoProcessor) ProcessType(ctx *Context, pass Pass, b *metadata.TypeBuilder) error {
	if pass == PassDependent {
		b.AddPrimaryKeyInfo(fieldPaths(ctx.Annotation, SourcePrimaryKeyInfo)...)
	}
	return nil
}

func (PrimaryKeyInfoProcessor) ProcessField(*Context, Pass, *State) error { return nil }

// LookupFieldProcessor records the fields searched by lookups.
type LookupFieldProcessor struct{}

func (LookupFieldProcessor) Name() string { return "lookup-field" }

func (LookupFieldProcessor) ProcessType(ctx *Context, pass Pass, b *metadata.TypeBuilder) error {
	if pass == PassDependent {
		b.AddLookupField(fieldPaths(ctx.Annotation, SourceLookupField)...)
	}
	return nil
}

func (LookupFieldProcessor) ProcessField(*Context, Pass, *State) error { return nil }

func fieldPaths(a *schema.Annotation, source string) []string {
	var out []string
	for _, info := range a.AppInfoBySource(source) {
		value := strings.TrimSpace(info.Text)
		if _, path, ok := strings.Cut(value, "/"); ok {
			value = path
		}
		if value = strings.Trim(strings.TrimSpace(value), "/"); value != "" {
			out = append(out, value)
		}
	}
	return out
}
