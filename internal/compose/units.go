package compose

import "github.com/lumiread/lumiread/internal/lumidoc"

// UnitKind discriminates render units.
type UnitKind int

const (
	// UnitChar is a single character with its active tags and highlights.
	UnitChar UnitKind = iota
	// UnitEquation is a contiguous run of characters carrying the same math
	// tag kind, rendered as one equation.
	UnitEquation
	// UnitInsertion is a reference marker anchored between characters; it
	// occupies no text range.
	UnitInsertion
)

// Unit is one element of the render stream. Start/End are rune offsets into
// the span text ([Start, End) for characters and equations, Start == End for
// insertions).
type Unit struct {
	Kind       UnitKind
	Start, End int
	Text       string
	Tags       []ActiveTag
	Highlights []lumidoc.Highlight
	Insertions []lumidoc.InnerTag
}

// Units lazily walks the decision table in render order. Insertions anchored
// at an index are emitted before that index's character (and before any
// equation run starting there); insertions at the end-of-text offset come
// last. Equation units carry the decision of their first character.
func (c *Composition) Units() []Unit {
	n := len(c.runes)

	if c.Plain {
		units := make([]Unit, 0, n)
		for i := range n {
			units = append(units, Unit{
				Kind:  UnitChar,
				Start: i,
				End:   i + 1,
				Text:  string(c.runes[i]),
			})
		}
		return units
	}

	var units []Unit
	i := 0
	for i < n {
		if ins := c.Insertions[i]; len(ins) > 0 {
			units = append(units, Unit{Kind: UnitInsertion, Start: i, End: i, Insertions: ins})
		}
		d := c.Chars[i]
		if kind, ok := d.mathKind(); ok {
			// Coalesce the run: it ends at the first index whose next index
			// no longer carries the same math kind.
			j := i + 1
			for j < n && c.Chars[j].hasKind(kind) && len(c.Insertions[j]) == 0 {
				j++
			}
			units = append(units, Unit{
				Kind:       UnitEquation,
				Start:      i,
				End:        j,
				Text:       string(c.runes[i:j]),
				Tags:       d.Tags,
				Highlights: d.Highlights,
			})
			i = j
			continue
		}
		units = append(units, Unit{
			Kind:       UnitChar,
			Start:      i,
			End:        i + 1,
			Text:       string(c.runes[i]),
			Tags:       d.Tags,
			Highlights: d.Highlights,
		})
		i++
	}
	if ins := c.Insertions[n]; len(ins) > 0 {
		units = append(units, Unit{Kind: UnitInsertion, Start: n, End: n, Insertions: ins})
	}
	return units
}
