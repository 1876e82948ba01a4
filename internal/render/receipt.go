package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/lojatax/api/internal/ledger"
	"github.com/lojatax/api/internal/services/settings"
)

// receiptWidth is the column width of the printed receipt.
const receiptWidth = 40

// Receipt renders one transaction as a plain-text receipt. receiptNumber
// may be empty when sequencing failed and the caller chose to issue the
// document anyway; the number line is then omitted rather than invented.
func Receipt(profile settings.Profile, tx ledger.Transaction, receiptNumber string, loc *time.Location) string {
	var b strings.Builder
	rule := strings.Repeat("=", receiptWidth)
	thin := strings.Repeat("-", receiptWidth)

	// Business block.
	b.WriteString(rule + "\n")
	b.WriteString(centerTo(profile.Name, receiptWidth) + "\n")
	if profile.Address != "" {
		b.WriteString(centerTo(profile.Address, receiptWidth) + "\n")
	}
	if profile.City != "" {
		b.WriteString(centerTo(profile.City, receiptWidth) + "\n")
	}
	if profile.Phone != "" {
		b.WriteString(centerTo(profile.Phone, receiptWidth) + "\n")
	}
	if profile.TaxNumber != "" {
		b.WriteString(centerTo("Tax No: "+profile.TaxNumber, receiptWidth) + "\n")
	}
	b.WriteString(rule + "\n")

	// Metadata.
	if receiptNumber != "" {
		b.WriteString(receiptLine("Receipt No:", receiptNumber) + "\n")
	}
	b.WriteString(receiptLine("Date:", tx.OccurredAt.In(loc).Format("2006-01-02 15:04")) + "\n")
	b.WriteString(thin + "\n")

	// Line item.
	description := tx.Category
	if tx.Note != nil && *tx.Note != "" {
		description = *tx.Note
	}
	b.WriteString(receiptLine(description, money(tx.Amount)) + "\n")

	// VAT breakdown only when VAT was actually charged.
	if tx.VATAmount.IsPositive() {
		b.WriteString(thin + "\n")
		b.WriteString(receiptLine("Net:", money(tx.NetAmount)) + "\n")
		b.WriteString(receiptLine(fmt.Sprintf("VAT (%s):", percent(tx.VATRate)), money(tx.VATAmount)) + "\n")
	}

	b.WriteString(thin + "\n")
	b.WriteString(receiptLine("TOTAL:", money(tx.Amount)) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(centerTo("Thank you for your business!", receiptWidth) + "\n")
	b.WriteString(rule + "\n")

	return b.String()
}

func receiptLine(label, value string) string {
	pad := receiptWidth - len(label) - len(value)
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + value
}

func centerTo(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}
