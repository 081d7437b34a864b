package xsdxml

func (d *Document) addTextSegment(parent NodeID, childIndex, textOff, textLen int) {
	if textLen == 0 {
		return
	}
	if len(d.textScratch) > 0 {
		last := &d.textScratch[len(d.textScratch)-1]
		if last.parent == parent && last.childIndex == childIndex && last.textOff+last.textLen == textOff {
			last.textLen += textLen
			return
		}
	}
	d.textScratch = append(d.textScratch, textScratchEntry{
		parent:     parent,
		childIndex: childIndex,
		textOff:    textOff,
		textLen:    textLen,
	})
}

// buildTextSegments lays the scratch entries out per parent, in document order.
func (d *Document) buildTextSegments() {
	d.textSegments = d.textSegments[:0]
	if len(d.textScratch) == 0 {
		return
	}
	counts := make([]int, len(d.nodes))
	for _, entry := range d.textScratch {
		counts[entry.parent]++
	}
	total := assignOffsets(counts, func(i, off, count int) {
		d.nodes[i].textSegOff = off
		d.nodes[i].textSegLen = count
	})
	d.textSegments = make([]textSegment, total)
	for _, entry := range d.textScratch {
		idx := counts[entry.parent]
		d.textSegments[idx] = textSegment{
			childIndex: entry.childIndex,
			textOff:    entry.textOff,
			textLen:    entry.textLen,
		}
		counts[entry.parent]++
	}
	d.textScratch = d.textScratch[:0]
}

// buildChildren lays child ids out contiguously per parent, in document order.
func (d *Document) buildChildren() {
	counts := make([]int, len(d.nodes))
	for i := range d.nodes {
		if p := d.nodes[i].parent; p != InvalidNode {
			counts[p]++
		}
	}
	total := assignOffsets(counts, func(i, off, count int) {
		d.nodes[i].childrenOff = off
		d.nodes[i].childrenLen = count
	})
	d.children = make([]NodeID, total)
	for i := range d.nodes {
		p := d.nodes[i].parent
		if p == InvalidNode {
			continue
		}
		d.children[counts[p]] = NodeID(i)
		counts[p]++
	}
}

// assignOffsets turns counts into running start offsets, calling set for each
// non-empty slot, and returns the total.
func assignOffsets(counts []int, set func(i, off, count int)) int {
	off := 0
	for i, count := range counts {
		counts[i] = off
		if count > 0 {
			set(i, off, count)
		}
		off += count
	}
	return off
}
