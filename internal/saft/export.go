// Package saft builds the audit export handed to the tax authority: a
// SAF-T style document with a header, the tax-rate table observed in
// the ledger, and one invoice entry per transaction. Building and
// serializing are split so the structural contract can be tested
// without string comparison.
package saft

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lojatax/api/internal/fiscal"
	"github.com/lojatax/api/internal/ledger"
	"github.com/lojatax/api/internal/services/settings"
)

// Fixed document identity. The export format pins currency and
// country/region codes; the product identifiers name the generating
// software.
const (
	CurrencyCode   = "USD"
	CountryCode    = "TL"
	ProductID      = "LojaTax"
	ProductVersion = "1.0"

	// MIMEType is the content type of the serialized export.
	MIMEType = "application/xml"
)

// Header is the export's company and period identity block.
type Header struct {
	CompanyID             string
	TaxRegistrationNumber string
	CompanyName           string
	City                  string
	Country               string
	FiscalYear            int
	StartDate             time.Time
	EndDate               time.Time // inclusive last day of the period
}

// TaxTableEntry is one distinct (rate, description) pair observed in
// the ledger.
type TaxTableEntry struct {
	Percentage  decimal.Decimal
	Description string
}

// Invoice is one source document: a single transaction with its line,
// tax and document totals.
type Invoice struct {
	InvoiceNo   string // receipt number when present, else the record id
	InvoiceDate time.Time
	Description string

	// Exactly one of CreditAmount (sales) or DebitAmount (purchases)
	// is non-nil.
	CreditAmount *decimal.Decimal
	DebitAmount  *decimal.Decimal

	TaxPercentage decimal.Decimal
	TaxAmount     decimal.Decimal
	NetTotal      decimal.Decimal
	GrossTotal    decimal.Decimal
}

// Export is the complete audit document.
type Export struct {
	Header      Header
	TaxTable    []TaxTableEntry
	Invoices    []Invoice
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Filename suggests the download name for a fiscal year's export.
func Filename(year int) string {
	return fmt.Sprintf("SAFT-%s_%d.xml", CountryCode, year)
}

// categoryDescription maps a VAT category to the tax-table wording.
func categoryDescription(c ledger.VATCategory) string {
	switch c {
	case ledger.VATStandard:
		return "Standard rate"
	case ledger.VATReduced:
		return "Reduced rate"
	case ledger.VATZero:
		return "Zero rate"
	case ledger.VATExempt:
		return "Exempt"
	default:
		return "No VAT"
	}
}

// Build assembles the export for one tenant and period from an
// immutable ledger snapshot. The output is fully determined by its
// inputs: the tax table is sorted ascending by rate (ties by
// description) and invoices keep the snapshot's timestamp order.
func Build(profile settings.Profile, companyID string, period fiscal.FilingPeriod, records []ledger.Transaction, loc *time.Location) Export {
	start, end := period.Range(loc)

	export := Export{
		Header: Header{
			CompanyID:             companyID,
			TaxRegistrationNumber: profile.TaxNumber,
			CompanyName:           profile.Name,
			City:                  profile.City,
			Country:               CountryCode,
			FiscalYear:            period.Year,
			StartDate:             start,
			EndDate:               end.AddDate(0, 0, -1),
		},
	}

	type rateKey struct {
		rate        string
		description string
	}
	seen := make(map[rateKey]TaxTableEntry)

	var totalDebit, totalCredit decimal.Decimal

	for _, t := range records {
		entry := TaxTableEntry{
			Percentage:  t.VATRate,
			Description: categoryDescription(t.VATCategory),
		}
		seen[rateKey{entry.Percentage.StringFixed(2), entry.Description}] = entry

		invoice := Invoice{
			InvoiceNo:     t.ID.String(),
			InvoiceDate:   t.OccurredAt.In(loc),
			Description:   t.Category,
			TaxPercentage: t.VATRate,
			TaxAmount:     ledger.RoundMoney(t.VATAmount),
			NetTotal:      ledger.RoundMoney(t.NetAmount),
			GrossTotal:    ledger.RoundMoney(t.Amount),
		}
		if t.ReceiptNumber != nil && *t.ReceiptNumber != "" {
			invoice.InvoiceNo = *t.ReceiptNumber
		}
		if t.Note != nil && *t.Note != "" {
			invoice.Description = *t.Note
		}

		net := ledger.RoundMoney(t.NetAmount)
		switch t.Direction {
		case ledger.DirectionIn:
			invoice.CreditAmount = &net
			totalCredit = totalCredit.Add(t.NetAmount)
		case ledger.DirectionOut:
			invoice.DebitAmount = &net
			totalDebit = totalDebit.Add(t.NetAmount)
		}

		export.Invoices = append(export.Invoices, invoice)
	}

	// An empty period still carries a tax table: a single 0% entry.
	if len(seen) == 0 {
		seen[rateKey{"0.00", "No VAT"}] = TaxTableEntry{Percentage: decimal.Zero, Description: "No VAT"}
	}

	for _, entry := range seen {
		export.TaxTable = append(export.TaxTable, entry)
	}
	sort.Slice(export.TaxTable, func(i, j int) bool {
		a, b := export.TaxTable[i], export.TaxTable[j]
		if !a.Percentage.Equal(b.Percentage) {
			return a.Percentage.LessThan(b.Percentage)
		}
		return a.Description < b.Description
	})

	export.TotalDebit = ledger.RoundMoney(totalDebit)
	export.TotalCredit = ledger.RoundMoney(totalCredit)

	return export
}
