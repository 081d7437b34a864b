package xsdmeta

import (
	"maps"
	"sync"

	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
)

var (
	commonOnce  sync.Once
	commonIndex map[typeKey]metadata.Type
	commonOrder []metadata.Type
)

// Init builds the shared XML Schema vocabulary. Repositories call it on
// construction; hosts may call it earlier to pay the cost up front. Calling
// it more than once has no effect.
func Init() {
	commonOnce.Do(func() {
		commonOrder = buildCommonTypes()
		commonIndex = make(map[typeKey]metadata.Type, len(commonOrder))
		for _, t := range commonOrder {
			commonIndex[typeKey{namespace: t.Namespace(), name: t.Name()}] = t
		}
	})
}

// CommonTypes returns the sealed built-in types shared by every repository.
func CommonTypes() []metadata.Type {
	Init()
	out := make([]metadata.Type, len(commonOrder))
	copy(out, commonOrder)
	return out
}

func commonTypes() map[typeKey]metadata.Type {
	Init()
	return maps.Clone(commonIndex)
}

// isCommon reports whether t is one of the shared built-in types.
func isCommon(t metadata.Type) bool {
	Init()
	return commonIndex[typeKey{namespace: t.Namespace(), name: t.Name()}] == t
}

func buildCommonTypes() []metadata.Type {
	builtins := schema.Builtins()
	drafts := make([]*metadata.TypeBuilder, 0, len(builtins)+1)
	for _, st := range builtins {
		b := metadata.NewSimpleType(schema.XSDNamespace, st.Name)
		if st.BaseType != nil {
			b.AddSuperType(metadata.NewSoftTypeRef(nil, schema.XSDNamespace, st.BaseType.Name, false))
		}
		drafts = append(drafts, b)
	}
	drafts = append(drafts, metadata.NewComplexType(schema.XSDNamespace, schema.AnyType.Name, false))
	return metadata.Freeze(drafts, nil, nil)
}
