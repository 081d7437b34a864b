package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
)

func appInfo(pairs ...string) *schema.Annotation {
	a := &schema.Annotation{}
	for i := 0; i+1 < len(pairs); i += 2 {
		a.AppInfo = append(a.AppInfo, schema.AppInfo{
			Source: pairs[i],
			Text:   pairs[i+1],
			Pos:    schema.Pos{Line: i + 1, Column: 5},
		})
	}
	return a
}

func newField(t *testing.T, name string) *metadata.FieldBuilder {
	t.Helper()
	f, err := metadata.NewField(name, 0, 1)
	require.NoError(t, err)
	return f
}

func TestForeignKeyAnnotationOrder(t *testing.T) {
	tests := []struct {
		name       string
		annotation *schema.Annotation
	}{
		{
			name:       "reference first",
			annotation: appInfo(SourceForeignKey, "Customer/id", SourceForeignKeyIntegrity, "false"),
		},
		{
			name:       "integrity first",
			annotation: appInfo(SourceForeignKeyIntegrity, "false", SourceForeignKey, "Customer/id"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := newField(t, "customer")
			ctx := &Context{Annotation: tt.annotation, TypeName: "Order"}
			require.NoError(t, Default().ProcessField(ctx, field))

			assert.True(t, field.IsReference())
			fk, ok := field.ForeignKeyDraft()
			require.True(t, ok)
			assert.Equal(t, "Customer", fk.TypeRef().Name())
			assert.True(t, fk.TypeRef().Entity())
			assert.Equal(t, "id", fk.FieldRef().Path())
			assert.False(t, fk.Integrity())
			assert.False(t, fk.IntegrityOverride())
		})
	}
}

func TestForeignKeyDetails(t *testing.T) {
	field := newField(t, "parent")
	ctx := &Context{
		Namespace: "",
		TypeName:  "Category",
		Annotation: appInfo(
			SourceForeignKeyInfo, "./name",
			SourceForeignKeyFilter, " Category/active$$=$$true$$# ",
			SourceForeignKey, ".",
			SourceForeignKeyIntegrityOverride, "true",
		),
	}
	require.NoError(t, Default().ProcessField(ctx, field))

	fk, ok := field.ForeignKeyDraft()
	require.True(t, ok)
	assert.Equal(t, "Category", fk.TypeRef().Name())
	assert.True(t, fk.FieldRef().Identifier())
	line, _ := fk.FieldRef().Data(metadata.DataXSDLine)
	assert.Equal(t, 5, line)
	assert.Equal(t, "Category/active$$=$$true$$#", fk.Filter())
	assert.True(t, fk.Integrity())
	assert.True(t, fk.IntegrityOverride())
	require.Len(t, fk.Info(), 1)
	assert.Equal(t, "Category/name", fk.Info()[0].String())
}

func TestForeignKeyErrors(t *testing.T) {
	tests := []struct {
		name       string
		annotation *schema.Annotation
		want       string
	}{
		{
			name:       "malformed integrity",
			annotation: appInfo(SourceForeignKey, "Customer", SourceForeignKeyIntegrity, "maybe"),
			want:       "invalid X_FKIntegrity value 'maybe'",
		},
		{
			name:       "empty reference",
			annotation: appInfo(SourceForeignKey, " "),
			want:       "does not designate a type",
		},
		{
			name:       "info without field",
			annotation: appInfo(SourceForeignKey, "Customer", SourceForeignKeyInfo, "Customer"),
			want:       "does not designate a field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := newField(t, "customer")
			err := Default().ProcessField(&Context{Annotation: tt.annotation, TypeName: "Order"}, field)

			var procErr *xsderrors.AnnotationProcessingError
			require.ErrorAs(t, err, &procErr)
			assert.Equal(t, "Order", procErr.Type)
			assert.Equal(t, "customer", procErr.Field)
			assert.Equal(t, "foreign-key", procErr.Processor)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSchematron(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "plain",
			text: `<pattern name="p"><rule context="Customer"/></pattern>`,
			want: `<schema><pattern name="p"><rule context="Customer"/></pattern></schema>`,
		},
		{
			name: "escaped",
			text: `&lt;pattern name="p"/&gt;`,
			want: `<schema><pattern name="p"/></schema>`,
		},
		{
			name:    "malformed",
			text:    `<pattern>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := metadata.NewComplexType("", "Customer", true)
			err := Default().ProcessType(&Context{Annotation: appInfo(SourceSchematron, tt.text)}, b)
			if tt.wantErr {
				var procErr *xsderrors.AnnotationProcessingError
				require.ErrorAs(t, err, &procErr)
				assert.Equal(t, "schematron", procErr.Processor)
				assert.Empty(t, b.SchematronRules())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, b.SchematronRules())
		})
	}
}

func TestUserAccess(t *testing.T) {
	a := appInfo(
		SourceHide, "Viewer",
		SourceWrite, "Editor",
		SourceWrite, "Admin",
		SourceDenyCreate, "Viewer",
		SourceDenyPhysicalDelete, "Editor",
	)

	b := metadata.NewComplexType("", "Customer", true)
	require.NoError(t, Default().ProcessType(&Context{Annotation: a}, b))
	access := b.Access()
	assert.Equal(t, []string{"Viewer"}, access.Hide)
	assert.Equal(t, []string{"Editor", "Admin"}, access.Write)
	assert.Equal(t, []string{"Viewer"}, access.DenyCreate)
	assert.Equal(t, []string{"Editor"}, access.DenyPhysicalDelete)

	field := newField(t, "name")
	require.NoError(t, Default().ProcessField(&Context{Annotation: a}, field))
	fieldAccess := field.Access()
	assert.Equal(t, []string{"Editor", "Admin"}, fieldAccess.Write)
	assert.Empty(t, fieldAccess.DenyCreate)
	assert.False(t, field.IsReference())
}

func TestPathsAndLabels(t *testing.T) {
	a := appInfo(
		SourcePrimaryKeyInfo, "Customer/name",
		SourcePrimaryKeyInfo, "Customer/address/city",
		SourceLookupField, "Customer/email",
		"X_Label_EN", "Customer",
		"X_Label_fr", "Client",
		"X_Description_EN", " Buyer ",
		"X_Unknown", "ignored",
	)

	b := metadata.NewComplexType("", "Customer", true)
	require.NoError(t, Default().ProcessType(&Context{Annotation: a}, b))
	assert.Equal(t, []string{"name", "address/city"}, b.PrimaryKeyInfo())
	assert.Equal(t, []string{"email"}, b.LookupFields())
	assert.Equal(t, map[string]string{"EN": "Customer", "FR": "Client"}, b.Labels())

	field := newField(t, "name")
	require.NoError(t, Default().ProcessField(&Context{Annotation: a}, field))
	sealed := metadata.Freeze([]*metadata.TypeBuilder{
		metadata.NewComplexType("", "Holder", false).AddField(field),
	}, nil, nil)[0].(*metadata.ComplexType)
	f, err := sealed.Field("name")
	require.NoError(t, err)
	label, ok := f.Label("fr")
	require.True(t, ok)
	assert.Equal(t, "Client", label)
	description, ok := f.Description("en")
	require.True(t, ok)
	assert.Equal(t, "Buyer", description)
}

func TestPipelineWithout(t *testing.T) {
	p := Default().Without("schematron", "label")
	assert.Equal(t, []string{"foreign-key", "user-access", "primary-key-info", "lookup-field"}, p.Names())

	b := metadata.NewComplexType("", "Customer", true)
	require.NoError(t, p.ProcessType(&Context{Annotation: appInfo(SourceSchematron, "<pattern>")}, b))
	assert.Empty(t, b.SchematronRules())

	assert.NoError(t, p.ProcessType(&Context{}, b))
	var nilPipeline *Pipeline
	assert.NoError(t, nilPipeline.ProcessType(&Context{Annotation: appInfo()}, b))
}
