package parser

import (
	"slices"

	"github.com/jacoelho/xsdmeta/internal/graphcycle"
	"github.com/jacoelho/xsdmeta/internal/xsdxml"
	"github.com/jacoelho/xsdmeta/schema"
)

func compositorOf(local string) schema.Compositor {
	switch local {
	case "choice":
		return schema.Choice
	case "all":
		return schema.All
	default:
		return schema.Sequence
	}
}

// parseModelGroup parses a sequence, choice or all element into a particle.
func (p *parser) parseModelGroup(id xsdxml.NodeID, owner string) *schema.Particle {
	mg := &schema.ModelGroup{Compositor: compositorOf(p.doc.LocalName(id))}
	part := &schema.Particle{Term: mg}
	part.MinOccurs, part.MaxOccurs = p.parseOccurs(id, owner)
	p.parseGroupContent(id, owner, mg)
	return part
}

func (p *parser) parseGroupContent(id xsdxml.NodeID, owner string, mg *schema.ModelGroup) {
	for _, child := range p.xsdChildren(id) {
		switch local := p.doc.LocalName(child); local {
		case "annotation":
		case "element":
			if el := p.parseLocalElement(child, owner); el != nil {
				mg.Particles = append(mg.Particles, &schema.Particle{Term: el, MinOccurs: el.MinOccurs, MaxOccurs: el.MaxOccurs})
			}
		case "sequence", "choice", "all":
			mg.Particles = append(mg.Particles, p.parseModelGroup(child, owner))
		case "group":
			if part := p.parseGroupRef(child, owner, mg); part != nil {
				mg.Particles = append(mg.Particles, part)
			}
		case "any":
			wc := &schema.Wildcard{
				Namespace:       p.doc.GetAttribute(child, "namespace"),
				ProcessContents: p.doc.GetAttribute(child, "processContents"),
			}
			part := &schema.Particle{Term: wc}
			part.MinOccurs, part.MaxOccurs = p.parseOccurs(child, owner)
			mg.Particles = append(mg.Particles, part)
		default:
			p.warnf(child, owner, "unexpected '%s' in model group", local)
		}
	}
}

// parseNamedGroupBody fills a registered top-level xs:group.
func (p *parser) parseNamedGroupBody(id xsdxml.NodeID, g *schema.NamedGroup) {
	for _, child := range p.xsdChildren(id) {
		switch p.doc.LocalName(child) {
		case "sequence", "choice", "all":
			g.Group.Compositor = compositorOf(p.doc.LocalName(child))
			p.parseGroupContent(child, g.Name, g.Group)
			return
		}
	}
	p.errorf(id, g.Name, "group '%s' has no model group", g.Name)
}

// parseGroupRef resolves an xs:group reference. The particle shares the
// referenced group term. container is the model group the reference sits in.
func (p *parser) parseGroupRef(id xsdxml.NodeID, owner string, container *schema.ModelGroup) *schema.Particle {
	ref, ok := p.resolveQName(id, owner, "ref")
	if !ok {
		p.errorf(id, owner, "group reference missing ref attribute")
		return nil
	}
	var g *schema.NamedGroup
	if ref.Namespace == p.schema.TargetNamespace {
		g = p.groups[ref.Local]
	}
	if g == nil {
		p.errorf(id, owner, "group '%s' is not defined", ref)
		return nil
	}
	part := &schema.Particle{Term: g.Group}
	part.MinOccurs, part.MaxOccurs = p.parseOccurs(id, owner)
	if p.currentGroup != "" && container != nil {
		p.groupRefs[p.currentGroup] = append(p.groupRefs[p.currentGroup], groupRef{
			owner:    container,
			particle: part,
			target:   g.Name,
		})
	}
	return part
}

// breakGroupCycles reports circular group references and drops the
// reference closing each cycle so the content stays finite.
func (p *parser) breakGroupCycles() {
	starts := make([]string, 0, len(p.schema.Groups))
	for _, g := range p.schema.Groups {
		starts = append(starts, g.Name)
	}
	cfg := graphcycle.Config[string]{
		Starts:  starts,
		Missing: graphcycle.MissingPolicyIgnore,
		Exists: func(name string) bool {
			_, ok := p.groups[name]
			return ok
		},
		Next: func(name string) ([]string, error) {
			refs := p.groupRefs[name]
			out := make([]string, 0, len(refs))
			for _, r := range refs {
				out = append(out, r.target)
			}
			return out, nil
		},
	}
	for range len(starts) + 1 {
		cycles, err := graphcycle.DetectAll(cfg)
		if err != nil || len(cycles) == 0 {
			return
		}
		for _, cycle := range cycles {
			from, to := cycle.Path[len(cycle.Path)-2], cycle.Path[len(cycle.Path)-1]
			p.errorf(p.groupNodes[from], from, "circular group reference: %s", cycle.Error())
			kept := p.groupRefs[from][:0]
			for _, r := range p.groupRefs[from] {
				if r.target != to {
					kept = append(kept, r)
					continue
				}
				r.owner.Particles = slices.DeleteFunc(r.owner.Particles, func(part *schema.Particle) bool {
					return part == r.particle
				})
			}
			p.groupRefs[from] = kept
		}
	}
}
