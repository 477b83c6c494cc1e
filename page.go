package scansion

import (
	"fmt"
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("page").Parse(`<html lang="en"><head><meta charset="utf-8">
<style>
img { vertical-align:top; }
.line {
    color: #888;
    font-size: 70%;
}
body {
    font-family: '{{.Font}}';
    font-size: 20px;
}
</style>
</head><body>
{{range .Entries}}<span class="line">{{.Number}}:</span> <img alt="{{.Alt}}" src="{{.Src}}" />
<br/>
{{end}}</body></html>
`))

// PageEntry is one verse of the index page.
type PageEntry struct {
	Number int
	// Alt is the verse text, shown when the diagram is missing.
	Alt string
	// Src is the diagram path relative to the page.
	Src string
}

// DiagramPath is the page-relative path of the i-th diagram of a batch.
func DiagramPath(i int) string {
	return fmt.Sprintf("svg/%d.svg", i)
}

// PageEntries pairs verses with their diagram paths in batch order.
func PageEntries(verses []Verse) []PageEntry {
	out := make([]PageEntry, len(verses))
	for i, v := range verses {
		out[i] = PageEntry{Number: v.Number, Alt: v.Text, Src: DiagramPath(i)}
	}
	return out
}

// WritePage writes the HTML index page listing every diagram with its verse
// number. font is the CSS font family; empty means Noto Serif.
func WritePage(w io.Writer, entries []PageEntry, font string) error {
	if font == "" {
		font = DefaultGeometry().FontFamily
	}
	data := struct {
		Font    string
		Entries []PageEntry
	}{font, entries}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}
