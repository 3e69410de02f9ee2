package id

import (
	"fmt"
	"strconv"
	"strings"
)

// InvoicePrefix begins every invoice number.
const InvoicePrefix = "INV-"

// FormatInvoiceNumber returns an invoice number like "INV-0001".
func FormatInvoiceNumber(seq int) string {
	return fmt.Sprintf("%s%04d", InvoicePrefix, seq)
}

// ParseInvoiceNumber parses "INV-0042" into 42.
func ParseInvoiceNumber(number string) (int, error) {
	suffix, ok := strings.CutPrefix(number, InvoicePrefix)
	if !ok {
		return 0, fmt.Errorf("invalid invoice number format: %q", number)
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence in invoice number %q: %w", number, err)
	}
	if seq < 0 {
		return 0, fmt.Errorf("negative sequence in invoice number %q", number)
	}
	return seq, nil
}

// NextInvoiceSeq returns one past the highest sequence among existing numbers.
// Numbers that do not parse are ignored; no numbers yields 1.
func NextInvoiceSeq(existing []string) int {
	maxSeq := 0
	for _, n := range existing {
		seq, err := ParseInvoiceNumber(n)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}
