package annotation

import (
	"strings"

	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
)

// Localized text appinfo source prefixes, followed by a language code.
const (
	SourceLabelPrefix       = "X_Label_"
	SourceDescriptionPrefix = "X_Description_"
)

// LabelProcessor records localized labels and descriptions.
type LabelProcessor struct{}

func (LabelProcessor) Name() string { return "label" }

func (LabelProcessor) ProcessType(ctx *Context, pass Pass, b *metadata.TypeBuilder) error {
	if pass != PassReference {
		return nil
	}
	eachLocalized(ctx.Annotation, SourceLabelPrefix, func(lang, text string) { b.SetLabel(lang, text) })
	eachLocalized(ctx.Annotation, SourceDescriptionPrefix, func(lang, text string) { b.SetDescription(lang, text) })
	return nil
}

func (LabelProcessor) ProcessField(ctx *Context, pass Pass, s *State) error {
	if pass != PassReference {
		return nil
	}
	eachLocalized(ctx.Annotation, SourceLabelPrefix, func(lang, text string) {
		if s.Labels == nil {
			s.Labels = make(map[string]string)
		}
		s.Labels[lang] = text
	})
	eachLocalized(ctx.Annotation, SourceDescriptionPrefix, func(lang, text string) {
		if s.Descriptions == nil {
			s.Descriptions = make(map[string]string)
		}
		s.Descriptions[lang] = text
	})
	return nil
}

func eachLocalized(a *schema.Annotation, prefix string, fn func(lang, text string)) {
	for _, info := range a.AppInfo {
		lang, ok := strings.CutPrefix(info.Source, prefix)
		if !ok || lang == "" {
			continue
		}
		fn(strings.ToUpper(lang), strings.TrimSpace(info.Text))
	}
}
