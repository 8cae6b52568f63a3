package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	autopaydomain "github.com/smallbiznis/rentledger/internal/autopay/domain"
	leasedomain "github.com/smallbiznis/rentledger/internal/lease/domain"
	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	notificationdomain "github.com/smallbiznis/rentledger/internal/notification/domain"
	paymentdomain "github.com/smallbiznis/rentledger/internal/payment/domain"
	rentduedomain "github.com/smallbiznis/rentledger/internal/rentdue/domain"
	statementdomain "github.com/smallbiznis/rentledger/internal/statement/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, leasedomain.ErrInvalidTenantAccount),
		errors.Is(err, leasedomain.ErrInvalidOwnerAccount),
		errors.Is(err, leasedomain.ErrInvalidUnitRent),
		errors.Is(err, leasedomain.ErrInvalidStartDate),
		errors.Is(err, leasedomain.ErrInvalidSharePercent),
		errors.Is(err, leasedomain.ErrShareOverAllocated),
		errors.Is(err, ledgerdomain.ErrInvalidTenantAccount),
		errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, ledgerdomain.ErrInvalidMonth),
		errors.Is(err, paymentdomain.ErrInvalidPayerAccount),
		errors.Is(err, paymentdomain.ErrInvalidPayerRole),
		errors.Is(err, paymentdomain.ErrInvalidPaymentType),
		errors.Is(err, paymentdomain.ErrInvalidProvider),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidStatus),
		errors.Is(err, autopaydomain.ErrInvalidTenantAccount),
		errors.Is(err, autopaydomain.ErrInvalidPaymentDay),
		errors.Is(err, autopaydomain.ErrInvalidNotifyDays),
		errors.Is(err, rentduedomain.ErrInvalidTenantAccount),
		errors.Is(err, statementdomain.ErrInvalidTenantAccount),
		errors.Is(err, statementdomain.ErrInvalidMonth),
		errors.Is(err, notificationdomain.ErrInvalidAccount):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, leasedomain.ErrLeaseAlreadyActive),
		errors.Is(err, paymentdomain.ErrStatusNotMutable),
		errors.Is(err, ledgerdomain.ErrEntryNotVoidable):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, leasedomain.ErrLeaseNotFound),
		errors.Is(err, leasedomain.ErrShareNotFound),
		errors.Is(err, ledgerdomain.ErrEntryNotFound),
		errors.Is(err, paymentdomain.ErrPaymentNotFound),
		errors.Is(err, paymentdomain.ErrMethodNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	return err.Error()
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
