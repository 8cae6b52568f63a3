package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	leasedomain "github.com/smallbiznis/rentledger/internal/lease/domain"
	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	"github.com/smallbiznis/rentledger/internal/providers/pdf"
	"github.com/smallbiznis/rentledger/internal/statement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	LedgerRepo ledgerdomain.Repository
	LeaseSvc   leasedomain.Service
	PDF        pdf.Provider
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	ledgerRepo ledgerdomain.Repository
	leaseSvc   leasedomain.Service
	pdfProv    pdf.Provider
}

func New(p Params) domain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("statement.service"),
		ledgerRepo: p.LedgerRepo,
		leaseSvc:   p.LeaseSvc,
		pdfProv:    p.PDF,
	}
}

func (s *service) WriteCSV(ctx context.Context, w io.Writer, tenantAccount, month string) error {
	entries, err := s.load(ctx, tenantAccount, month)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "entry_type", "category", "amount", "status", "note"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			entryDate(e),
			string(e.EntryType),
			e.Category,
			strconv.FormatInt(e.Amount, 10),
			string(e.Status),
			e.Note,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *service) RenderPDF(ctx context.Context, tenantAccount, month string) (io.Reader, error) {
	entries, err := s.load(ctx, tenantAccount, month)
	if err != nil {
		return nil, err
	}

	data := pdf.StatementData{
		TenantAccount: tenantAccount,
		Month:         month,
	}
	if view, err := s.leaseSvc.Resolve(ctx, nil, tenantAccount); err == nil && view != nil {
		data.UnitLabel = view.UnitLabel
	}

	var charges, paid int64
	for _, e := range entries {
		if e.Status != ledgerdomain.EntryStatusVoid {
			if e.Amount > 0 {
				charges += e.Amount
			} else {
				paid += -e.Amount
			}
		}
		data.Lines = append(data.Lines, pdf.StatementLine{
			Date:      entryDate(e),
			EntryType: string(e.EntryType),
			Category:  e.Category,
			Amount:    strconv.FormatInt(e.Amount, 10),
			Status:    string(e.Status),
			Note:      e.Note,
		})
	}
	balance := charges - paid
	if balance < 0 {
		balance = 0
	}
	data.Charges = strconv.FormatInt(charges, 10)
	data.Paid = strconv.FormatInt(paid, 10)
	data.Balance = strconv.FormatInt(balance, 10)

	return s.pdfProv.GenerateStatement(ctx, data)
}

func (s *service) load(ctx context.Context, tenantAccount, month string) ([]ledgerdomain.LedgerEntry, error) {
	if strings.TrimSpace(tenantAccount) == "" {
		return nil, domain.ErrInvalidTenantAccount
	}
	if _, err := time.Parse(ledgerdomain.StatementMonthLayout, month); err != nil {
		return nil, domain.ErrInvalidMonth
	}
	return s.ledgerRepo.ListByMonth(ctx, s.db, tenantAccount, month)
}

func entryDate(e ledgerdomain.LedgerEntry) string {
	if e.DueDate != nil {
		return e.DueDate.Format("2006-01-02")
	}
	return e.CreatedAt.Format("2006-01-02")
}
