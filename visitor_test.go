package xsdmeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
)

func TestVisitSchemaReportsOpenTypes(t *testing.T) {
	v := newVisitor(NewRepository(), &schema.Schema{})
	require.NoError(t, v.VisitSchema(nil))

	v.push(&frame{builder: metadata.NewComplexType(UserNamespace, "Customer", true), path: "Customer"})
	v.push(&frame{builder: metadata.NewAnonymousComplexType(UserNamespace, "Customer/address"), path: "Customer/address"})

	err := v.VisitSchema(nil)
	var incomplete *xsderrors.IncompleteParseError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"Customer", "Customer/address"}, incomplete.Open)
}

func TestKeyPathsSkipKeyRefsAndDuplicates(t *testing.T) {
	el := &schema.Element{
		Name: "Customer",
		Constraints: []*schema.IdentityConstraint{
			{Kind: schema.Unique, Fields: []schema.XPath{{Value: "./id"}, {Value: "id"}}},
			{Kind: schema.KeyRef, Fields: []schema.XPath{{Value: "owner"}}},
			{Kind: schema.Key, Fields: []schema.XPath{{Value: "code"}}},
		},
	}

	var paths []string
	for _, p := range keyPaths(el) {
		paths = append(paths, p.Value)
	}
	assert.Equal(t, []string{"id", "code"}, paths)
}

func TestRollbackDropsLaterDrafts(t *testing.T) {
	r := NewRepository()
	kept := metadata.NewComplexType(UserNamespace, "AddressType", false)
	require.NoError(t, r.AddType(kept))

	r.mu.Lock()
	mark := len(r.drafts)
	r.addDraft(metadata.NewComplexType(UserNamespace, "Customer", true))
	r.addDraft(metadata.NewSimpleType(UserNamespace, "Code"))
	r.rollback(mark)
	r.mu.Unlock()

	assert.Equal(t, []*metadata.TypeBuilder{kept}, r.Drafts())
	_, ok := r.Draft(UserNamespace, "Customer", true)
	assert.False(t, ok)
	_, ok = r.Draft(UserNamespace, "AddressType", false)
	assert.True(t, ok)
}
