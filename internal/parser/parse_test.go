package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/schema"
)

func parseString(t *testing.T, src string) *schema.Schema {
	t.Helper()
	s, err := Parse(strings.NewReader(src), Options{})
	require.NoError(t, err)
	return s
}

func diagnosticMessages(s *schema.Schema, severity xsderrors.Severity) []string {
	var out []string
	for _, d := range s.Diagnostics {
		if d.Severity == severity {
			out = append(out, d.Message)
		}
	}
	return out
}

const customerSchema = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:complexType name="AddressType">
    <xs:sequence>
      <xs:element name="street" type="xs:string"/>
      <xs:element name="city" type="xs:string" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
  <xs:element name="Customer">
    <xs:annotation>
      <xs:appinfo source="X_Label_EN">Customer</xs:appinfo>
      <xs:appinfo source="X_Schematron"><pattern name="p"><rule context="Customer"/></pattern></xs:appinfo>
      <xs:documentation>A customer</xs:documentation>
    </xs:annotation>
    <xs:complexType>
      <xs:sequence>
        <xs:element name="id" type="xs:string"/>
        <xs:element name="address" type="AddressType" maxOccurs="unbounded"/>
        <xs:element name="code">
          <xs:simpleType>
            <xs:restriction base="xs:string">
              <xs:maxLength value="10"/>
            </xs:restriction>
          </xs:simpleType>
        </xs:element>
      </xs:sequence>
    </xs:complexType>
    <xs:unique name="Customer">
      <xs:selector xpath="."/>
      <xs:field xpath="id"/>
    </xs:unique>
  </xs:element>
</xs:schema>`

func TestParseCustomerSchema(t *testing.T) {
	s := parseString(t, customerSchema)
	assert.Empty(t, s.Diagnostics)
	require.Len(t, s.ComplexTypes, 1)
	require.Len(t, s.Elements, 1)

	address := s.ComplexTypes[0]
	assert.Equal(t, "AddressType", address.Name)
	assert.False(t, address.Anonymous())
	assert.Equal(t, schema.Pos{Line: 2, Column: 3}, address.Pos)

	customer := s.Elements[0]
	assert.True(t, customer.Global)
	require.NotNil(t, customer.Annotation)
	require.Len(t, customer.Annotation.AppInfo, 2)
	assert.Equal(t, "X_Label_EN", customer.Annotation.AppInfo[0].Source)
	assert.Equal(t, "Customer", customer.Annotation.AppInfo[0].Text)
	assert.Equal(t, `<pattern name="p"><rule context="Customer"/></pattern>`, customer.Annotation.AppInfo[1].Markup)
	assert.Equal(t, []string{"A customer"}, customer.Annotation.Documentation)

	ct, ok := customer.Type.(*schema.ComplexType)
	require.True(t, ok)
	assert.True(t, ct.Anonymous())
	group, ok := ct.Content.Term.(*schema.ModelGroup)
	require.True(t, ok)
	require.Len(t, group.Particles, 3)

	addressField := group.Particles[1].Term.(*schema.Element)
	assert.Equal(t, "address", addressField.Name)
	assert.Same(t, address, addressField.Type)
	assert.Equal(t, 1, addressField.MinOccurs)
	assert.Equal(t, schema.Unbounded, addressField.MaxOccurs)

	code := group.Particles[2].Term.(*schema.Element)
	st, ok := code.Type.(*schema.SimpleType)
	require.True(t, ok)
	assert.True(t, st.Anonymous())
	assert.Equal(t, "string", st.BaseType.Name)
	maxLength, ok := st.Facet(schema.FacetMaxLength)
	require.True(t, ok)
	assert.Equal(t, "10", maxLength)

	require.Len(t, customer.Constraints, 1)
	assert.Equal(t, schema.Unique, customer.Constraints[0].Kind)
	require.Len(t, customer.Constraints[0].Fields, 1)
	assert.Equal(t, "id", customer.Constraints[0].Fields[0].Value)
	assert.Positive(t, customer.Constraints[0].Fields[0].Pos.Line)
}

func TestParseDerivationAndReferences(t *testing.T) {
	s := parseString(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Person" type="PersonType"/>
  <xs:element name="Employee" type="EmployeeType" substitutionGroup="Person"/>
  <xs:element name="Manager" substitutionGroup="Employee"/>
  <xs:complexType name="EmployeeType">
    <xs:complexContent>
      <xs:extension base="PersonType">
        <xs:sequence>
          <xs:element ref="Person" minOccurs="0"/>
          <xs:group ref="Audit"/>
        </xs:sequence>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
  <xs:complexType name="PersonType">
    <xs:sequence>
      <xs:element name="name" type="xs:string"/>
      <xs:any minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
  <xs:group name="Audit">
    <xs:sequence>
      <xs:element name="createdBy" type="xs:string"/>
    </xs:sequence>
  </xs:group>
  <xs:complexType name="Money">
    <xs:simpleContent>
      <xs:extension base="xs:decimal"/>
    </xs:simpleContent>
  </xs:complexType>
</xs:schema>`)
	assert.Empty(t, s.Diagnostics)

	employeeType := s.ComplexTypes[0]
	personType := s.ComplexTypes[1]
	assert.Equal(t, schema.DerivationExtension, employeeType.Derivation)
	assert.Same(t, personType, employeeType.BaseType)
	assert.Equal(t, schema.QName{Local: "PersonType"}, employeeType.Base)

	ordered := schema.ComplexTypesBaseFirst(s)
	assert.Equal(t, "PersonType", ordered[0].Name)

	group := employeeType.Content.Term.(*schema.ModelGroup)
	require.Len(t, group.Particles, 2)
	ref := group.Particles[0].Term.(*schema.Element)
	assert.True(t, ref.IsReference())
	assert.Same(t, s.Elements[0], ref.Resolved)
	assert.Equal(t, 0, ref.MinOccurs)
	assert.Same(t, s.Groups[0].Group, group.Particles[1].Term)

	employee := s.Elements[1]
	assert.Same(t, s.Elements[0], employee.Substitution)
	manager := s.Elements[2]
	assert.Same(t, employeeType, manager.Type)

	money := s.ComplexTypes[2]
	assert.True(t, money.SimpleContent)
}

func TestParseDiagnostics(t *testing.T) {
	s := parseString(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:import namespace="urn:other" schemaLocation="other.xsd"/>
  <xs:element name="A" type="Missing"/>
  <xs:element name="A" type="xs:string"/>
  <xs:complexType>
    <xs:sequence/>
  </xs:complexType>
  <xs:simpleType name="Loop1"><xs:restriction base="Loop2"/></xs:simpleType>
  <xs:simpleType name="Loop2"><xs:restriction base="Loop1"/></xs:simpleType>
  <xs:group name="G1"><xs:sequence><xs:group ref="G2"/></xs:sequence></xs:group>
  <xs:group name="G2"><xs:sequence><xs:group ref="G1"/></xs:sequence></xs:group>
</xs:schema>`)

	errs := diagnosticMessages(s, xsderrors.SeverityError)
	warnings := diagnosticMessages(s, xsderrors.SeverityWarning)
	assert.Contains(t, errs, "type 'Missing' is not defined")
	assert.Contains(t, errs, "duplicate global element 'A'")
	assert.Contains(t, errs, "global complexType is missing the 'name' attribute")
	assert.Contains(t, errs, "circular simple type derivation: Loop1 -> Loop2 -> Loop1")
	assert.Contains(t, errs, "circular group reference: cycle detected: G1 -> G2 -> G1")
	assert.Contains(t, warnings, "import of 'other.xsd' is not followed")

	for _, d := range s.Diagnostics {
		assert.Equal(t, xsderrors.KindXMLSchema, d.Kind)
		assert.Positive(t, d.Line, d.Message)
	}
	assert.Empty(t, s.Groups[1].Group.Particles)
	require.Len(t, s.Elements, 1)
	assert.Nil(t, s.Elements[0].Type)
	assert.Equal(t, schema.QName{Local: "Missing"}, s.Elements[0].TypeName)
}

func TestParseElementForm(t *testing.T) {
	s := parseString(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns="urn:a"
    targetNamespace="urn:a" elementFormDefault="qualified">
  <xs:element name="Root">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="q" type="xs:string"/>
        <xs:element name="u" type="xs:string" form="unqualified"/>
        <xs:element name="any"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`)
	assert.Equal(t, "urn:a", s.TargetNamespace)
	root := s.Elements[0]
	assert.Equal(t, "urn:a", root.Namespace)
	group := root.Type.(*schema.ComplexType).Content.Term.(*schema.ModelGroup)
	assert.Equal(t, "urn:a", group.Particles[0].Term.(*schema.Element).Namespace)
	assert.Equal(t, "", group.Particles[1].Term.(*schema.Element).Namespace)
	assert.Same(t, schema.AnyType, group.Particles[2].Term.(*schema.Element).Type)
}

func TestParseMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "not xml", input: "<xs:schema", want: "parse XML"},
		{name: "wrong root", input: `<schema/>`, want: "root element must be xs:schema"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), Options{})
			var malformed *xsderrors.MalformedInputError
			require.True(t, errors.As(err, &malformed), "error = %v", err)
			assert.Contains(t, malformed.Error(), tt.want)
		})
	}

	_, err := Parse(nil, Options{})
	assert.ErrorIs(t, err, xsderrors.ErrNilInput)
}

func TestParseOccurs(t *testing.T) {
	s := parseString(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:complexType name="T">
    <xs:sequence>
      <xs:element name="a" type="xs:string" minOccurs="2" maxOccurs="1"/>
      <xs:element name="b" type="xs:string" maxOccurs="bogus"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`)
	group := s.ComplexTypes[0].Content.Term.(*schema.ModelGroup)
	a := group.Particles[0].Term.(*schema.Element)
	assert.Equal(t, 2, a.MinOccurs)
	assert.Equal(t, 1, a.MaxOccurs)
	b := group.Particles[1].Term.(*schema.Element)
	assert.Equal(t, 1, b.MaxOccurs)
	assert.Equal(t, []string{"invalid maxOccurs attribute value 'bogus'"}, diagnosticMessages(s, xsderrors.SeverityError))
}
