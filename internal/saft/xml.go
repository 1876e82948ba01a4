package saft

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// The document is serialized by hand rather than through struct tags:
// the element order is a fixed external contract and hand-building
// keeps it visible in one place. Every text value flows through
// escape(); no element content is ever concatenated raw.

const dateLayout = "2006-01-02"

// Serialize renders the export as an XML document. Identical inputs
// always produce byte-identical output.
func Serialize(e Export) []byte {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<AuditFile>\n")

	writeHeader(&b, e.Header)
	writeTaxTable(&b, e.TaxTable)
	writeSourceDocuments(&b, e)

	b.WriteString("</AuditFile>\n")
	return []byte(b.String())
}

func writeHeader(b *strings.Builder, h Header) {
	b.WriteString("  <Header>\n")
	element(b, 4, "CompanyID", h.CompanyID)
	element(b, 4, "TaxRegistrationNumber", h.TaxRegistrationNumber)
	element(b, 4, "CompanyName", h.CompanyName)
	b.WriteString("    <CompanyAddress>\n")
	element(b, 6, "City", h.City)
	element(b, 6, "Country", h.Country)
	b.WriteString("    </CompanyAddress>\n")
	element(b, 4, "FiscalYear", strconv.Itoa(h.FiscalYear))
	element(b, 4, "StartDate", h.StartDate.Format(dateLayout))
	element(b, 4, "EndDate", h.EndDate.Format(dateLayout))
	element(b, 4, "CurrencyCode", CurrencyCode)
	element(b, 4, "TaxCountryRegion", CountryCode)
	element(b, 4, "ProductID", ProductID)
	element(b, 4, "ProductVersion", ProductVersion)
	b.WriteString("  </Header>\n")
}

func writeTaxTable(b *strings.Builder, entries []TaxTableEntry) {
	b.WriteString("  <MasterFiles>\n    <TaxTable>\n")
	for _, entry := range entries {
		b.WriteString("      <TaxTableEntry>\n")
		element(b, 8, "TaxType", "VAT")
		element(b, 8, "TaxCountryRegion", CountryCode)
		element(b, 8, "TaxPercentage", money(entry.Percentage))
		element(b, 8, "Description", entry.Description)
		b.WriteString("      </TaxTableEntry>\n")
	}
	b.WriteString("    </TaxTable>\n  </MasterFiles>\n")
}

func writeSourceDocuments(b *strings.Builder, e Export) {
	b.WriteString("  <SourceDocuments>\n    <SalesInvoices>\n")
	element(b, 6, "NumberOfEntries", strconv.Itoa(len(e.Invoices)))
	element(b, 6, "TotalDebit", money(e.TotalDebit))
	element(b, 6, "TotalCredit", money(e.TotalCredit))

	for _, inv := range e.Invoices {
		b.WriteString("      <Invoice>\n")
		element(b, 8, "InvoiceNo", inv.InvoiceNo)
		element(b, 8, "InvoiceDate", inv.InvoiceDate.Format(dateLayout))
		b.WriteString("        <Line>\n")
		element(b, 10, "LineNumber", "1")
		element(b, 10, "Description", inv.Description)
		if inv.CreditAmount != nil {
			element(b, 10, "CreditAmount", money(*inv.CreditAmount))
		}
		if inv.DebitAmount != nil {
			element(b, 10, "DebitAmount", money(*inv.DebitAmount))
		}
		b.WriteString("          <Tax>\n")
		element(b, 12, "TaxType", "VAT")
		element(b, 12, "TaxPercentage", money(inv.TaxPercentage))
		element(b, 12, "TaxAmount", money(inv.TaxAmount))
		b.WriteString("          </Tax>\n")
		b.WriteString("        </Line>\n")
		b.WriteString("        <DocumentTotals>\n")
		element(b, 10, "TaxPayable", money(inv.TaxAmount))
		element(b, 10, "NetTotal", money(inv.NetTotal))
		element(b, 10, "GrossTotal", money(inv.GrossTotal))
		b.WriteString("        </DocumentTotals>\n")
		b.WriteString("      </Invoice>\n")
	}

	b.WriteString("    </SalesInvoices>\n  </SourceDocuments>\n")
}

// element writes one indented leaf element with escaped content.
func element(b *strings.Builder, indent int, name, value string) {
	fmt.Fprintf(b, "%s<%s>%s</%s>\n", strings.Repeat(" ", indent), name, escape(value), name)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// escape is the single escaping point for the five predefined XML
// entities. All element and attribute text passes through here.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
