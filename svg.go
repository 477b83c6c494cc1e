package scansion

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// textEscaper escapes character data and attribute values.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

const strokeStyle = `stroke="black" stroke-width="1"`

// WriteSVG encodes the diagram as a standalone SVG document.
func (d *Diagram) WriteSVG(w io.Writer) error {
	g := d.Geometry
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	width, height := g.Width(), g.Height()
	wf("<svg width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\" xmlns=\"http://www.w3.org/2000/svg\">\n", width, height, width, height)
	wf("<g transform=\"translate(%g,%g)\"", g.PadLeft, g.PadTop)
	if g.FontFamily != "" {
		wf(" font-family=\"%s\"", textEscaper.Replace(g.FontFamily))
	}
	wf(">\n")

	for _, it := range d.Items {
		switch it.Kind {
		case ItemText, ItemHyphen:
			wf("<text x=\"%g\" y=\"%g\" text-anchor=\"middle\" fill=\"black\">%s</text>\n", it.X1, it.Y1, textEscaper.Replace(it.Text))
		case ItemWordBoundary, ItemCaesura, ItemFootBoundary, ItemRule:
			wf("<line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" %s />\n", it.X1, it.Y1, it.X2, it.Y2, strokeStyle)
		case ItemStress:
			mid := (it.Y1 + it.Y2) / 2
			wf("<path d=\"M %g %g L %g %g L %g %g L %g %g Z\" %s fill=\"black\" />\n",
				it.X1-it.Size, it.Y1, it.X1, it.Y2, it.X1+it.Size, it.Y1, it.X1, mid, strokeStyle)
		case ItemUnstress:
			wf("<circle cx=\"%g\" cy=\"%g\" r=\"%g\" %s fill=\"black\" />\n", it.X1, it.Y1, it.Size, strokeStyle)
		case ItemOpenArc, ItemCloseArc:
			sweep := 0
			if it.Kind == ItemCloseArc {
				sweep = 1
			}
			wf("<path d=\"M %g %g A %g %g 0 0 %d %g %g\" %s fill=\"transparent\" />\n",
				it.X1, it.Y1, it.Size, it.Size, sweep, it.X2, it.Y2, strokeStyle)
		}
	}
	wf("</g></svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// SVG returns the encoded diagram.
func (d *Diagram) SVG() []byte {
	var buf bytes.Buffer
	// Writing to a bytes.Buffer cannot fail.
	_ = d.WriteSVG(&buf)
	return buf.Bytes()
}
