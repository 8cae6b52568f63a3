package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	paymentdomain "github.com/smallbiznis/rentledger/internal/payment/domain"
)

type submitPaymentRequest struct {
	PayerAccount string `json:"payer_account"`
	PaymentType  string `json:"payment_type"`
	Provider     string `json:"provider"`
	Amount       int64  `json:"amount"`
}

func (s *Server) SubmitPayment(c *gin.Context) {
	var req submitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	// Rent submissions are sanity-checked against the tenant's expected share
	// before they reach the ledger.
	if paymentdomain.PaymentType(req.PaymentType) == paymentdomain.PaymentTypeRent {
		view, err := s.leaseSvc.Resolve(c.Request.Context(), nil, req.PayerAccount)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if view == nil {
			AbortWithError(c, newValidationError("payer_account", "no_active_lease", "tenant has no active lease"))
			return
		}
		limit := s.policy.Current().MaxRentMultiplier * view.RentShare
		if req.Amount > limit {
			AbortWithError(c, newValidationError("amount", "amount_exceeds_limit", "amount exceeds the allowed rent multiple"))
			return
		}
	}

	payment, err := s.paymentSvc.Submit(c.Request.Context(), paymentdomain.SubmitRequest{
		PayerAccount: req.PayerAccount,
		PayerRole:    paymentdomain.PayerRoleTenant,
		PaymentType:  paymentdomain.PaymentType(req.PaymentType),
		Provider:     req.Provider,
		Amount:       req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

type setPaymentStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetPaymentStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req setPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	payment, err := s.paymentSvc.SetStatus(c.Request.Context(), id, paymentdomain.PaymentStatus(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

type voidEntryRequest struct {
	Note string `json:"note"`
}

func (s *Server) VoidLedgerEntry(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req voidEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	if err := s.ledgerSvc.VoidEntry(c.Request.Context(), id, req.Note); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addAdjustmentRequest struct {
	TenantAccount  string `json:"tenant_account"`
	Amount         int64  `json:"amount"`
	Note           string `json:"note"`
	StatementMonth string `json:"statement_month"`
}

func (s *Server) AddAdjustment(c *gin.Context) {
	var req addAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	entry, err := s.ledgerSvc.AddAdjustment(c.Request.Context(), ledgerdomain.AddAdjustmentRequest{
		TenantAccount:  req.TenantAccount,
		Amount:         req.Amount,
		Note:           req.Note,
		StatementMonth: req.StatementMonth,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
