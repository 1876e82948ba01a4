package render

import (
	"fmt"
	"strings"

	"github.com/lojatax/api/internal/services/vatreturn"
)

// ReturnDocument builds the semantic document for a VAT return. The
// four boxes mirror the statutory form: output VAT, input VAT, net
// position, and a period summary. A return with standard-rated sales
// but no standard rate cannot be labeled honestly and is rejected.
func ReturnDocument(data vatreturn.ReturnData) (Document, error) {
	if data.TaxableSales.IsPositive() && data.StandardRate.IsZero() {
		return Document{}, fmt.Errorf("%w: standard-rated sales present but no standard rate", ErrFormatting)
	}

	netLabel := "Net VAT payable"
	netValue := data.NetVATPayable
	if data.Refundable() {
		netLabel = "Net VAT refundable"
		netValue = data.NetVATPayable.Neg()
	}

	doc := Document{
		Title:    "VAT Return",
		Subtitle: data.Period.Label(),
		Sections: []Section{
			{
				Heading: "Output VAT",
				Rows: []Row{
					{Label: fmt.Sprintf("Taxable sales (%s)", percent(data.StandardRate)), Value: money(data.TaxableSales)},
					{Label: "VAT on taxable sales", Value: money(data.StandardRateVAT)},
					{Label: "Reduced-rate sales", Value: money(data.ReducedRateSales)},
					{Label: "Zero-rated sales", Value: money(data.ZeroRatedSales)},
					{Label: "Exempt sales", Value: money(data.ExemptSales)},
					{Label: "Total output VAT", Value: money(data.TotalOutputVAT), Strong: true},
				},
			},
			{
				Heading: "Input VAT",
				Rows: []Row{
					{Label: "Taxable purchases", Value: money(data.TaxablePurchases)},
					{Label: "Total input VAT", Value: money(data.TotalInputVAT), Strong: true},
				},
			},
			{
				Heading: "Net VAT",
				Rows: []Row{
					{Label: netLabel, Value: money(netValue), Strong: true},
				},
			},
			{
				Heading: "Summary",
				Rows: []Row{
					{Label: "Total revenue", Value: money(data.TotalRevenue)},
					{Label: "Total expenses", Value: money(data.TotalExpenses)},
					{Label: "Transactions", Value: fmt.Sprintf("%d", data.TransactionCount)},
					{Label: "Filing deadline", Value: data.FilingDeadline.Format("2 January 2006")},
				},
			},
		},
	}

	return doc, nil
}

// formWidth is the column width of the fixed-width text form.
const formWidth = 58

// ReturnText renders the return as a fixed-width plain-text form. It
// walks the same Document as the HTML renderer, so the two always show
// identical figures.
func ReturnText(data vatreturn.ReturnData) (string, error) {
	doc, err := ReturnDocument(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	rule := strings.Repeat("=", formWidth)
	thin := strings.Repeat("-", formWidth)

	b.WriteString(rule + "\n")
	b.WriteString(centerTo(doc.Title, formWidth) + "\n")
	b.WriteString(centerTo(doc.Subtitle, formWidth) + "\n")
	b.WriteString(rule + "\n")

	for _, section := range doc.Sections {
		b.WriteString("\n" + section.Heading + "\n" + thin + "\n")
		for _, row := range section.Rows {
			b.WriteString(formLine(row.Label, row.Value) + "\n")
		}
	}

	b.WriteString("\n" + rule + "\n")
	return b.String(), nil
}

// formLine right-aligns the value against the form width.
func formLine(label, value string) string {
	pad := formWidth - len(label) - len(value)
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + value
}
