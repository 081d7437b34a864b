package xsdmeta_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/xsdmeta"
	"github.com/jacoelho/xsdmeta/annotation"
	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/validation"
)

func TestLoadOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts xsdmeta.LoadOptions
		want string
	}{
		{name: "negative depth", opts: xsdmeta.NewLoadOptions().WithMaxDepth(-1), want: "xml max depth must be >= 0"},
		{name: "negative attrs", opts: xsdmeta.NewLoadOptions().WithMaxAttrs(-1), want: "xml max attrs must be >= 0"},
		{name: "nil processor", opts: xsdmeta.NewLoadOptions().WithProcessors(annotation.LabelProcessor{}, nil), want: "annotation processor 1 is nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			_, err = xsdmeta.NewRepositoryWithOptions(tt.opts)
			assert.Error(t, err)
		})
	}

	assert.NoError(t, xsdmeta.NewLoadOptions().WithMaxDepth(0).WithMaxAttrs(16).Validate())
}

func TestLoadOptionsMaxDepth(t *testing.T) {
	repo, err := xsdmeta.NewRepositoryWithOptions(xsdmeta.NewLoadOptions().WithMaxDepth(3))
	require.NoError(t, err)

	err = repo.Load(strings.NewReader(customerModel), validation.NoOpHandler{})
	var malformed *xsderrors.MalformedInputError
	assert.ErrorAs(t, err, &malformed)
}

const referenceModel = schemaHeader + `
  <xs:element name="Customer">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="id" type="xs:string"/>
      </xs:sequence>
    </xs:complexType>
    <xs:unique name="Customer">
      <xs:selector xpath="."/>
      <xs:field xpath="id"/>
    </xs:unique>
  </xs:element>
  <xs:element name="Order">
    <xs:annotation>
      <xs:appinfo source="X_Label_EN">Order</xs:appinfo>
    </xs:annotation>
    <xs:complexType>
      <xs:sequence>
        <xs:element name="id" type="xs:string"/>
        <xs:element name="customer" type="xs:string" minOccurs="0">
          <xs:annotation>
            <xs:appinfo source="X_ForeignKey">Customer/id</xs:appinfo>
          </xs:annotation>
        </xs:element>
      </xs:sequence>
    </xs:complexType>
    <xs:unique name="Order">
      <xs:selector xpath="."/>
      <xs:field xpath="id"/>
    </xs:unique>
  </xs:element>
</xs:schema>`

func TestLoadOptionsWithoutProcessors(t *testing.T) {
	repo, h := loadStringWithOptions(t, referenceModel, xsdmeta.NewLoadOptions().WithoutProcessors("foreign-key"))
	require.Zero(t, h.ErrorCount(), "records = %v", h.Records())

	order, err := repo.ComplexType("Order")
	require.NoError(t, err)
	customer, err := order.Field("customer")
	require.NoError(t, err)
	assert.Equal(t, metadata.FieldSimple, customer.Kind())
	assert.Nil(t, customer.ForeignKey())

	label, ok := order.Label("en")
	require.True(t, ok)
	assert.Equal(t, "Order", label)
}

func TestLoadOptionsWithProcessors(t *testing.T) {
	opts := xsdmeta.NewLoadOptions().WithProcessors(annotation.ForeignKeyProcessor{})
	repo, h := loadStringWithOptions(t, referenceModel, opts)
	require.Zero(t, h.ErrorCount(), "records = %v", h.Records())

	order, err := repo.ComplexType("Order")
	require.NoError(t, err)
	_, ok := order.Label("en")
	assert.False(t, ok)

	customer, err := order.Field("customer")
	require.NoError(t, err)
	assert.Equal(t, metadata.FieldReference, customer.Kind())
}

func TestLoadOptionsWithoutCommonTypes(t *testing.T) {
	repo, h := loadStringWithOptions(t, referenceModel, xsdmeta.NewLoadOptions().WithCommonTypes(false))
	assert.Contains(t, h.Kinds(), xsderrors.KindTypeDoesNotExist)
	assert.True(t, repo.Frozen())
}
