package schema

// builtinBases lists the XSD built-in simple types with their base type name.
// Order matters: a base is always listed before the types derived from it.
var builtinBases = [][2]string{
	{"anySimpleType", ""},
	{"string", "anySimpleType"},
	{"boolean", "anySimpleType"},
	{"decimal", "anySimpleType"},
	{"float", "anySimpleType"},
	{"double", "anySimpleType"},
	{"duration", "anySimpleType"},
	{"dateTime", "anySimpleType"},
	{"time", "anySimpleType"},
	{"date", "anySimpleType"},
	{"gYearMonth", "anySimpleType"},
	{"gYear", "anySimpleType"},
	{"gMonthDay", "anySimpleType"},
	{"gDay", "anySimpleType"},
	{"gMonth", "anySimpleType"},
	{"hexBinary", "anySimpleType"},
	{"base64Binary", "anySimpleType"},
	{"anyURI", "anySimpleType"},
	{"QName", "anySimpleType"},
	{"NOTATION", "anySimpleType"},

	{"normalizedString", "string"},
	{"token", "normalizedString"},
	{"language", "token"},
	{"NMTOKEN", "token"},
	{"Name", "token"},
	{"NCName", "Name"},
	{"ID", "NCName"},
	{"IDREF", "NCName"},
	{"ENTITY", "NCName"},
	{"NMTOKENS", "anySimpleType"},
	{"IDREFS", "anySimpleType"},
	{"ENTITIES", "anySimpleType"},

	{"integer", "decimal"},
	{"nonPositiveInteger", "integer"},
	{"negativeInteger", "nonPositiveInteger"},
	{"long", "integer"},
	{"int", "long"},
	{"short", "int"},
	{"byte", "short"},
	{"nonNegativeInteger", "integer"},
	{"unsignedLong", "nonNegativeInteger"},
	{"unsignedInt", "unsignedLong"},
	{"unsignedShort", "unsignedInt"},
	{"unsignedByte", "unsignedShort"},
	{"positiveInteger", "nonNegativeInteger"},
}

var builtinTypes, builtinOrder = buildBuiltins()

func buildBuiltins() (map[string]*SimpleType, []*SimpleType) {
	byName := make(map[string]*SimpleType, len(builtinBases))
	order := make([]*SimpleType, 0, len(builtinBases))
	for _, entry := range builtinBases {
		st := &SimpleType{Name: entry[0], Namespace: XSDNamespace, builtin: true}
		switch entry[0] {
		case "NMTOKENS", "IDREFS", "ENTITIES":
			st.Variety = List
		}
		if entry[1] != "" {
			st.BaseType = byName[entry[1]]
			st.Base = QName{Namespace: XSDNamespace, Local: entry[1]}
		}
		byName[entry[0]] = st
		order = append(order, st)
	}
	return byName, order
}

// Builtin returns the built-in simple type with the given local name.
func Builtin(name string) (*SimpleType, bool) {
	st, ok := builtinTypes[name]
	return st, ok
}

// Builtins returns every built-in simple type, bases first.
func Builtins() []*SimpleType {
	out := make([]*SimpleType, len(builtinOrder))
	copy(out, builtinOrder)
	return out
}

// LookupBuiltin resolves an XSD namespace name to its type definition, including anyType.
func LookupBuiltin(name QName) (TypeDefinition, bool) {
	if name.Namespace != XSDNamespace {
		return nil, false
	}
	if name.Local == AnyType.Name {
		return AnyType, true
	}
	st, ok := builtinTypes[name.Local]
	if !ok {
		return nil, false
	}
	return st, true
}
