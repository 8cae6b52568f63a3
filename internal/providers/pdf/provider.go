package pdf

import (
	"context"
	"io"
)

type StatementLine struct {
	Date      string
	EntryType string
	Category  string
	Amount    string
	Status    string
	Note      string
}

type StatementData struct {
	TenantAccount string
	Month         string
	UnitLabel     string
	Lines         []StatementLine
	Charges       string
	Paid          string
	Balance       string
}

type Provider interface {
	GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error) {
	return nil, nil
}
