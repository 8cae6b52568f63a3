package pdf

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateStatementProducesPDF(t *testing.T) {
	p := NewPDF()

	out, err := p.GenerateStatement(context.Background(), StatementData{
		TenantAccount: "alice",
		Month:         "2026-03",
		UnitLabel:     "4B",
		Lines: []StatementLine{
			{Date: "2026-03-01", EntryType: "charge", Category: "rent", Amount: "1000", Status: "paid", Note: "Monthly rent for 2026-03"},
			{Date: "2026-03-04", EntryType: "payment", Category: "rent_payment", Amount: "-1000", Status: "paid", Note: "Payment via stripe"},
		},
		Charges: "1000",
		Paid:    "1000",
		Balance: "0",
	})
	assert.NoError(t, err)

	doc, err := io.ReadAll(out)
	assert.NoError(t, err)
	assert.NotEmpty(t, doc)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

func TestGenerateStatementHandlesEmptyMonth(t *testing.T) {
	p := NewPDF()

	out, err := p.GenerateStatement(context.Background(), StatementData{
		TenantAccount: "alice",
		Month:         "2026-04",
		Charges:       "0",
		Paid:          "0",
		Balance:       "0",
	})
	assert.NoError(t, err)
	assert.NotNil(t, out)
}
