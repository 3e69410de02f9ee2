package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	tests := []struct {
		seq  int
		want string
	}{
		{1, "INV-0001"},
		{42, "INV-0042"},
		{9999, "INV-9999"},
		{10000, "INV-10000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatInvoiceNumber(tt.seq))
	}
}

func TestParseInvoiceNumber(t *testing.T) {
	seq, err := ParseInvoiceNumber("INV-0042")
	require.NoError(t, err)
	assert.Equal(t, 42, seq)

	for _, bad := range []string{"", "INV-", "INV-abc", "0042", "BILL-0001", "INV--3"} {
		_, err := ParseInvoiceNumber(bad)
		assert.Error(t, err, bad)
	}
}

func TestNextInvoiceSeq(t *testing.T) {
	assert.Equal(t, 1, NextInvoiceSeq(nil))
	assert.Equal(t, 4, NextInvoiceSeq([]string{"INV-0001", "INV-0003", "INV-0002"}))
	assert.Equal(t, 8, NextInvoiceSeq([]string{"INV-0007", "legacy-99", "INV-x"}))
}

func TestNextInvoiceSeq_Sequential(t *testing.T) {
	var issued []string
	for i := 0; i < 25; i++ {
		issued = append(issued, FormatInvoiceNumber(NextInvoiceSeq(issued)))
	}
	for i, n := range issued {
		assert.Equal(t, FormatInvoiceNumber(i+1), n)
	}
}
