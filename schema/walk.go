package schema

// Visitor receives traversal callbacks. Returning an error stops the walk.
type Visitor interface {
	VisitSchema(*Schema) error
	VisitSimpleType(*SimpleType) error
	VisitComplexType(*ComplexType) error
	VisitElement(*Element) error
}

// Walk dispatches node to v.
//
// A schema is walked as: simple types in document order, complex types with
// bases before derived types, elements in document order, and finally
// VisitSchema as the completion signal. Model groups and particles re-dispatch
// their terms; wildcards are skipped.
func Walk(node any, v Visitor) error {
	switch n := node.(type) {
	case nil:
		return nil
	case *Schema:
		return walkSchema(n, v)
	case *SimpleType:
		if n == nil {
			return nil
		}
		return v.VisitSimpleType(n)
	case *ComplexType:
		if n == nil {
			return nil
		}
		return v.VisitComplexType(n)
	case *Element:
		if n == nil {
			return nil
		}
		return v.VisitElement(n)
	case *Particle:
		if n == nil {
			return nil
		}
		return Walk(n.Term, v)
	case *ModelGroup:
		if n == nil {
			return nil
		}
		for _, p := range n.Particles {
			if err := Walk(p, v); err != nil {
				return err
			}
		}
		return nil
	case *Wildcard:
		return nil
	default:
		return nil
	}
}

func walkSchema(s *Schema, v Visitor) error {
	for _, st := range s.SimpleTypes {
		if err := v.VisitSimpleType(st); err != nil {
			return err
		}
	}
	for _, ct := range ComplexTypesBaseFirst(s) {
		if err := v.VisitComplexType(ct); err != nil {
			return err
		}
	}
	for _, el := range s.Elements {
		if err := v.VisitElement(el); err != nil {
			return err
		}
	}
	return v.VisitSchema(s)
}

// ComplexTypesBaseFirst orders the schema complex types so that a base type
// declared in the same schema precedes its derived types. Document order is
// kept otherwise; derivation cycles fall back to document order.
func ComplexTypesBaseFirst(s *Schema) []*ComplexType {
	out := make([]*ComplexType, 0, len(s.ComplexTypes))
	placed := make(map[*ComplexType]bool, len(s.ComplexTypes))
	local := make(map[*ComplexType]bool, len(s.ComplexTypes))
	for _, ct := range s.ComplexTypes {
		local[ct] = true
	}
	var place func(ct *ComplexType, depth int)
	place = func(ct *ComplexType, depth int) {
		if placed[ct] {
			return
		}
		if base, ok := ct.BaseType.(*ComplexType); ok && local[base] && depth < len(s.ComplexTypes) {
			place(base, depth+1)
		}
		if !placed[ct] {
			placed[ct] = true
			out = append(out, ct)
		}
	}
	for _, ct := range s.ComplexTypes {
		place(ct, 0)
	}
	return out
}
