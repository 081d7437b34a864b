package annotation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
)

// Foreign key appinfo sources.
const (
	SourceForeignKey                  = "X_ForeignKey"
	SourceForeignKeyFilter            = "X_ForeignKey_Filter"
	SourceForeignKeyInfo              = "X_ForeignKeyInfo"
	SourceForeignKeyIntegrity         = "X_FKIntegrity"
	SourceForeignKeyIntegrityOverride = "X_FKIntegrity_Override"
)

// ForeignKeyProcessor marks fields as references to entity types.
//
// X_ForeignKey holds Type, Type/path or "." for the enclosing type; the
// referenced type must be instantiable. The filter, info and integrity
// annotations refine the reference in the dependent pass.
type ForeignKeyProcessor struct{}

func (ForeignKeyProcessor) Name() string { return "foreign-key" }

func (ForeignKeyProcessor) ProcessType(*Context, Pass, *metadata.TypeBuilder) error { return nil }

func (ForeignKeyProcessor) ProcessField(ctx *Context, pass Pass, s *State) error {
	for _, info := range ctx.Annotation.AppInfo {
		var err error
		switch {
		case pass == PassReference && info.Source == SourceForeignKey:
			err = declareReference(ctx, s, info)
		case pass == PassDependent && info.Source == SourceForeignKeyFilter:
			s.Filter = strings.TrimSpace(info.Text)
		case pass == PassDependent && info.Source == SourceForeignKeyInfo:
			err = addInfo(ctx, s, info)
		case pass == PassDependent && info.Source == SourceForeignKeyIntegrity:
			s.Integrity, err = parseFlag(info)
		case pass == PassDependent && info.Source == SourceForeignKeyIntegrityOverride:
			s.IntegrityOverride, err = parseFlag(info)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func declareReference(ctx *Context, s *State, info schema.AppInfo) error {
	typeName, path, err := splitReference(info, ctx.TypeName)
	if err != nil {
		return err
	}
	s.Reference = true
	s.ReferencedType = metadata.NewSoftTypeRef(ctx.Resolver, ctx.Namespace, typeName, true)
	if path == "" {
		s.ReferencedField = setPosition(metadata.NewSoftIDFieldRef(ctx.Resolver, ctx.Namespace, typeName), info)
	} else {
		s.ReferencedField = setPosition(metadata.NewSoftFieldRef(ctx.Resolver, ctx.Namespace, typeName, path, true), info)
	}
	return nil
}

func addInfo(ctx *Context, s *State, info schema.AppInfo) error {
	self := ""
	if s.ReferencedType != nil {
		self = s.ReferencedType.Name()
	}
	typeName, path, err := splitReference(info, self)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("%s '%s' does not designate a field", info.Source, strings.TrimSpace(info.Text))
	}
	s.Info = append(s.Info, setPosition(metadata.NewSoftFieldRef(ctx.Resolver, ctx.Namespace, typeName, path, true), info))
	return nil
}

// splitReference splits Type/path. A "." type designates self.
func splitReference(info schema.AppInfo, self string) (typeName, path string, err error) {
	value := strings.TrimSpace(info.Text)
	typeName, path, _ = strings.Cut(value, "/")
	typeName = strings.TrimSpace(typeName)
	path = strings.Trim(strings.TrimSpace(path), "/")
	if typeName == "." {
		typeName = self
	}
	if typeName == "" {
		return "", "", fmt.Errorf("%s '%s' does not designate a type", info.Source, value)
	}
	return typeName, path, nil
}

func parseFlag(info schema.AppInfo) (*bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(info.Text))
	if err != nil {
		return nil, fmt.Errorf("invalid %s value '%s': %w", info.Source, strings.TrimSpace(info.Text), err)
	}
	return &v, nil
}
