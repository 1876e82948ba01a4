// Package render turns aggregated filing data into the artifacts a
// merchant actually hands out: plain-text receipts and return forms, a
// semantic document for the downstream PDF pipeline, and a workbook
// export. Every renderer is a pure function of its inputs.
package render

import (
	"errors"
	"html/template"
	"io"

	"github.com/shopspring/decimal"
)

// ErrFormatting is returned when the data cannot be rendered faithfully,
// for example a return with taxable sales but no standard rate to label
// them with. Rendering a misleading document is worse than failing.
var ErrFormatting = errors.New("formatting failed")

// Document is the semantic form of a filing artifact: a titled list of
// sections, each a list of label/value rows. The text form, the HTML
// document and the workbook are all derived from the same Document, so
// they cannot disagree on a figure.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
}

// Section is one labeled box of the document.
type Section struct {
	Heading string
	Rows    []Row
}

// Row is a single label/value line. Strong marks the row a renderer
// should emphasize (totals, net position).
type Row struct {
	Label  string
	Value  string
	Strong bool
}

// money is the single money formatter shared by every renderer. All
// figures shown to a user pass through here.
func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// percent formats a VAT rate for display.
func percent(d decimal.Decimal) string {
	return d.StringFixed(0) + "%"
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article class="filing-document">
<h1>{{.Title}}</h1>
{{if .Subtitle}}<p class="subtitle">{{.Subtitle}}</p>
{{end}}{{range .Sections}}<section>
<h2>{{.Heading}}</h2>
<table>
{{range .Rows}}<tr{{if .Strong}} class="strong"{{end}}><th>{{.Label}}</th><td>{{.Value}}</td></tr>
{{end}}</table>
</section>
{{end}}</article>
</body>
</html>
`))

// WriteHTML renders the document as a standalone HTML page. The markup
// is semantic and unstyled; the PDF pipeline downstream owns layout.
func WriteHTML(w io.Writer, doc Document) error {
	return documentTemplate.Execute(w, doc)
}
