package scansion

// ItemKind is the kind of a diagram element.
type ItemKind int

const (
	// ItemText is a syllable label centered in its slot.
	ItemText ItemKind = iota
	// ItemHyphen joins two syllables of one word.
	ItemHyphen
	// ItemWordBoundary is a vertical stroke between words.
	ItemWordBoundary
	// ItemCaesura is one stroke of the double caesura line.
	ItemCaesura
	// ItemFootBoundary is a vertical stroke inside the box between feet.
	ItemFootBoundary
	// ItemStress is the dart under an accented syllable.
	ItemStress
	// ItemUnstress is the dot under an unaccented syllable.
	ItemUnstress
	// ItemOpenArc closes the box on the left of a line that does not run in.
	ItemOpenArc
	// ItemCloseArc closes the box on the right of a line that does not run on.
	ItemCloseArc
	// ItemRule is a horizontal edge of the box.
	ItemRule
)

func (k ItemKind) String() string {
	switch k {
	case ItemText:
		return "text"
	case ItemHyphen:
		return "hyphen"
	case ItemWordBoundary:
		return "word-boundary"
	case ItemCaesura:
		return "caesura"
	case ItemFootBoundary:
		return "foot-boundary"
	case ItemStress:
		return "stress"
	case ItemUnstress:
		return "unstress"
	case ItemOpenArc:
		return "open-arc"
	case ItemCloseArc:
		return "close-arc"
	case ItemRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Item is one drawing element, in box coordinates (origin at the top-left
// corner of the first foot slot, padding excluded).
//
// Lines run from (X1,Y1) to (X2,Y2). Text and glyphs are anchored at (X1,Y1);
// Size is the dart half-width, the dot radius or the arc radius.
type Item struct {
	Kind           ItemKind
	X1, Y1, X2, Y2 float64
	Size           float64
	Text           string
	// Syllable is the index of the syllable the item belongs to, or -1.
	Syllable int
}

// Geometry holds the fixed layout measures of a diagram.
type Geometry struct {
	FootWidth      float64
	SyllableHeight float64
	PadTop         float64
	PadBottom      float64
	PadLeft        float64
	PadRight       float64
	CaesuraWidth   float64
	DotRadius      float64
	FontFamily     string
}

// DefaultGeometry returns the standard layout: 150-unit feet, 20-unit rows.
func DefaultGeometry() Geometry {
	return Geometry{
		FootWidth:      150,
		SyllableHeight: 20,
		PadTop:         10,
		PadBottom:      10,
		PadLeft:        20,
		PadRight:       20,
		CaesuraWidth:   4,
		DotRadius:      2,
		FontFamily:     "Noto Serif",
	}
}

// BoxWidth is the width of the six foot slots.
func (g Geometry) BoxWidth() float64 { return HexameterFeet * g.FootWidth }

// Width is the canvas width, padding included.
func (g Geometry) Width() float64 { return g.PadLeft + g.BoxWidth() + g.PadRight }

// Height is the canvas height: a label row and a box row plus padding.
func (g Geometry) Height() float64 { return 2*g.SyllableHeight + g.PadTop + g.PadBottom }

// slotWidth is the share of a foot slot one syllable takes: a third in a
// dactyl, a half otherwise.
func (g Geometry) slotWidth(f FootType) float64 {
	if f == Dactyl {
		return g.FootWidth / 3
	}
	return g.FootWidth / 2
}

// Diagram is the vector layout of one scanned line.
type Diagram struct {
	Geometry Geometry
	Items    []Item
}

// Count returns how many items of kind k the diagram holds.
func (d *Diagram) Count(k ItemKind) int {
	n := 0
	for _, it := range d.Items {
		if it.Kind == k {
			n++
		}
	}
	return n
}

// RenderDiagram lays out l with geometry g. It never fails: a line the
// scanner gave up on is drawn as far as its annotation goes, and a line
// with fewer than six feet gets a foot boundary where the scan stopped,
// unless an unresolved foot start already put one there.
func RenderDiagram(l *Line, g Geometry) *Diagram {
	d := &Diagram{Geometry: g}
	h := g.SyllableHeight
	syls := l.Syllables
	n := len(syls)

	add := func(it Item) { d.Items = append(d.Items, it) }
	vline := func(kind ItemKind, i int, x, y1, y2 float64) {
		add(Item{Kind: kind, X1: x, Y1: y1, X2: x, Y2: y2, Syllable: i})
	}

	if n == 0 || !syls[0].OpenStart {
		add(Item{Kind: ItemOpenArc, X1: 0, Y1: h, X2: 0, Y2: 2 * h, Size: h / 2, Syllable: -1})
	}
	add(Item{Kind: ItemRule, X1: 0, Y1: h, X2: g.BoxWidth(), Y2: h, Syllable: -1})
	add(Item{Kind: ItemRule, X1: 0, Y1: 2 * h, X2: g.BoxWidth(), Y2: 2 * h, Syllable: -1})

	left, stop := 0.0, 0.0
	// lastFoot is the x of the last foot boundary drawn.
	lastFoot := 0.0
	for i, s := range syls {
		w := g.slotWidth(s.Foot)
		right := left + w
		center := left + w/2

		add(Item{Kind: ItemText, X1: center, Y1: h / 2, Text: s.Display, Syllable: i})
		switch {
		case !s.WordEnd:
			add(Item{Kind: ItemHyphen, X1: right, Y1: h / 2, Text: "-", Syllable: i})
		case i == n-1:
		case s.CaesuraAfter:
			vline(ItemCaesura, i, right-g.CaesuraWidth/2, h/2, 1.5*h)
			vline(ItemCaesura, i, right+g.CaesuraWidth/2, h/2, 1.5*h)
		case s.FootEnd:
			// The stroke stops at the box; the foot boundary carries on below.
			vline(ItemWordBoundary, i, right, h/2, h)
		default:
			vline(ItemWordBoundary, i, right, h/2, 1.5*h)
		}

		if s.FootStart && i > 0 {
			vline(ItemFootBoundary, i, left, h, 2*h)
			lastFoot = left
		}

		if s.Accented {
			add(Item{Kind: ItemStress, X1: center, Y1: 1.25 * h, X2: center, Y2: 1.75 * h, Size: g.FootWidth / 24, Syllable: i})
		} else {
			add(Item{Kind: ItemUnstress, X1: center, Y1: 1.5 * h, Size: g.DotRadius, Syllable: i})
		}

		if s.Foot != Unresolved {
			stop = right
		}
		left = right
	}

	if l.Feet < HexameterFeet && stop > 0 && stop < g.BoxWidth() && stop != lastFoot {
		vline(ItemFootBoundary, -1, stop, h, 2*h)
	}
	if n == 0 || !syls[n-1].OpenEnd {
		x := g.BoxWidth()
		add(Item{Kind: ItemCloseArc, X1: x, Y1: h, X2: x, Y2: 2 * h, Size: h / 2, Syllable: -1})
	}
	return d
}
