package validation

import (
	"strings"

	xsderrors "github.com/jacoelho/xsdmeta/errors"
	"github.com/jacoelho/xsdmeta/internal/graphcycle"
	"github.com/jacoelho/xsdmeta/metadata"
)

// SuperTypeCycleRule reports every cycle among the super types of Types.
type SuperTypeCycleRule struct {
	Types []*metadata.ComplexType
}

func (r SuperTypeCycleRule) Perform(h Handler) bool {
	// Next never fails, so DetectAll returns cycles only.
	cycles, _ := graphcycle.DetectAll(graphcycle.Config[*metadata.ComplexType]{
		Starts: r.Types,
		Next: func(t *metadata.ComplexType) ([]*metadata.ComplexType, error) {
			var next []*metadata.ComplexType
			for _, s := range t.SuperTypes() {
				if ct, ok := s.(*metadata.ComplexType); ok {
					next = append(next, ct)
				}
			}
			return next, nil
		},
	})
	for _, c := range cycles {
		names := make([]string, len(c.Path))
		for i, t := range c.Path {
			names[i] = t.Name()
		}
		Report(h, record(xsderrors.KindCyclicInheritance, c.Key.Name(), c.Key,
			"cyclic inheritance: %s", strings.Join(names, " -> ")))
	}
	return len(cycles) == 0
}

func (SuperTypeCycleRule) ContinueOnFail() bool { return true }
