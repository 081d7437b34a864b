package annotation

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/jacoelho/xsdmeta/internal/xsdxml"
	"github.com/jacoelho/xsdmeta/metadata"
)

// SourceSchematron is the appinfo source of embedded validation rules.
const SourceSchematron = "X_Schematron"

// SchematronProcessor attaches X_Schematron rules to types. The embedded
// fragment is wrapped in a <schema> document; a fragment that is not
// well-formed or holds no element is unescaped once and checked again.
type SchematronProcessor struct{}

func (SchematronProcessor) Name() string { return "schematron" }

func (SchematronProcessor) ProcessType(ctx *Context, pass Pass, b *metadata.TypeBuilder) error {
	if pass != PassReference {
		return nil
	}
	for _, info := range ctx.Annotation.AppInfoBySource(SourceSchematron) {
		fragment := info.Text
		if markup := strings.TrimSpace(info.Markup); strings.HasPrefix(markup, "<") {
			fragment = markup
		}
		rule, err := schematronDocument(fragment)
		if err != nil {
			rule, err = schematronDocument(html.UnescapeString(fragment))
		}
		if err != nil {
			return fmt.Errorf("malformed %s rule: %w", SourceSchematron, err)
		}
		b.AddSchematronRule(rule)
	}
	return nil
}

func (SchematronProcessor) ProcessField(*Context, Pass, *State) error { return nil }

func schematronDocument(fragment string) (string, error) {
	doc := "<schema>" + strings.TrimSpace(fragment) + "</schema>"
	parsed, err := xsdxml.ParseBytes([]byte(doc), xsdxml.Options{})
	if err != nil {
		return "", err
	}
	if len(parsed.Children(parsed.DocumentElement())) == 0 {
		return "", errors.New("no rule element")
	}
	return doc, nil
}
