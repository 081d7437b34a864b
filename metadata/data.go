package metadata

import (
	"maps"
	"strings"

	"github.com/google/uuid"
)

// Side-data keys attached to types and fields.
const (
	// DataComplexTypeName records the named complex type backing an entity type.
	DataComplexTypeName = "metadata.complex.type.name"
	// DataMaxLength records a maxLength or length facet value.
	DataMaxLength = "metadata.data.length"
	// DataXSDLine is the source line of the definition.
	DataXSDLine = "metadata.xsd.line"
	// DataXSDColumn is the source column of the definition.
	DataXSDColumn = "metadata.xsd.column"
	// DataXSDNode is the raw schema node of the definition.
	DataXSDNode = "metadata.xsd.dom.element"
)

// AnonymousPrefix starts every generated anonymous type name.
const AnonymousPrefix = "X_ANONYMOUS"

var anonymousSpace = uuid.MustParse("6f1c1b6e-3f64-4b59-9a44-0f0b7f3f8e21")

// AnonymousName returns the generated name of the anonymous type declared at
// ownerPath. The name is stable for a given path.
func AnonymousName(ownerPath string) string {
	id := uuid.NewSHA1(anonymousSpace, []byte(ownerPath))
	return AnonymousPrefix + "_" + strings.ReplaceAll(id.String(), "-", "")
}

// IsAnonymousName reports whether name was generated by AnonymousName.
func IsAnonymousName(name string) bool {
	return strings.HasPrefix(name, AnonymousPrefix)
}

type sideData map[string]any

func (d sideData) get(key string) (any, bool) {
	v, ok := d[key]
	return v, ok
}

func (d sideData) clone() sideData {
	if len(d) == 0 {
		return nil
	}
	return maps.Clone(d)
}

// position returns the source line and column recorded in side data.
func position(d sideData) (line, column int) {
	line, _ = d[DataXSDLine].(int)
	column, _ = d[DataXSDColumn].(int)
	return line, column
}
