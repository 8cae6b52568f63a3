package server

import (
	"errors"
	"net/http"
	"testing"

	leasedomain "github.com/smallbiznis/rentledger/internal/lease/domain"
	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	paymentdomain "github.com/smallbiznis/rentledger/internal/payment/domain"
)

func TestMapErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"domain validation", leasedomain.ErrInvalidUnitRent, http.StatusBadRequest, "validation_error"},
		{"payment validation", paymentdomain.ErrInvalidAmount, http.StatusBadRequest, "validation_error"},
		{"conflict", paymentdomain.ErrStatusNotMutable, http.StatusConflict, "conflict"},
		{"lease conflict", leasedomain.ErrLeaseAlreadyActive, http.StatusConflict, "conflict"},
		{"not found", ledgerdomain.ErrEntryNotFound, http.StatusNotFound, "not_found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			if status != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, status)
			}
			if payload.Type != tc.wantType {
				t.Fatalf("expected type %s, got %s", tc.wantType, payload.Type)
			}
		})
	}
}

func TestMapErrorCarriesValidationDetails(t *testing.T) {
	status, payload := mapError(newValidationError("amount", "amount_exceeds_limit", "amount exceeds the allowed rent multiple"))
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if len(payload.Errors) != 1 {
		t.Fatalf("expected 1 validation error, got %d", len(payload.Errors))
	}
	detail := payload.Errors[0]
	if detail.Field != "amount" || detail.Code != "amount_exceeds_limit" {
		t.Fatalf("unexpected detail %+v", detail)
	}
}

func TestDomainValidationFieldIsDerivedFromCode(t *testing.T) {
	_, payload := mapError(paymentdomain.ErrInvalidPayerAccount)
	if len(payload.Errors) != 1 {
		t.Fatalf("expected 1 validation error, got %d", len(payload.Errors))
	}
	if payload.Errors[0].Field != "payer_account" {
		t.Fatalf("expected field payer_account, got %q", payload.Errors[0].Field)
	}
	if payload.Errors[0].Code != "invalid_payer_account" {
		t.Fatalf("expected code invalid_payer_account, got %q", payload.Errors[0].Code)
	}
}
