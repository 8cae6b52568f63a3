package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	autopaydomain "github.com/smallbiznis/rentledger/internal/autopay/domain"
	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	paymentdomain "github.com/smallbiznis/rentledger/internal/payment/domain"
)

func (s *Server) GetRentDue(c *gin.Context) {
	summary, err := s.rentDueSvc.RentDue(c.Request.Context(), c.Param("account"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if summary == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) statementMonth(c *gin.Context) string {
	month := c.Query("month")
	if month == "" {
		month = time.Now().UTC().Format(ledgerdomain.StatementMonthLayout)
	}
	return month
}

func (s *Server) GetStatementCSV(c *gin.Context) {
	account := c.Param("account")
	month := s.statementMonth(c)

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="statement-`+month+`.csv"`)
	if err := s.statementSvc.WriteCSV(c.Request.Context(), c.Writer, account, month); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) GetStatementPDF(c *gin.Context) {
	account := c.Param("account")
	month := s.statementMonth(c)

	doc, err := s.statementSvc.RenderPDF(c.Request.Context(), account, month)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="statement-`+month+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", body)
}

func (s *Server) GetAutopay(c *gin.Context) {
	setting, err := s.autopaySvc.Get(c.Request.Context(), c.Param("account"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if setting == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, setting)
}

type putAutopayRequest struct {
	PaymentMethodID  *snowflake.ID `json:"payment_method_id,omitempty"`
	IsEnabled        bool          `json:"is_enabled"`
	PaymentDay       int           `json:"payment_day"`
	NotifyDaysBefore int           `json:"notify_days_before"`
}

func (s *Server) PutAutopay(c *gin.Context) {
	var req putAutopayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	setting, err := s.autopaySvc.Put(c.Request.Context(), autopaydomain.UpdateRequest{
		TenantAccount:    c.Param("account"),
		PaymentMethodID:  req.PaymentMethodID,
		IsEnabled:        req.IsEnabled,
		PaymentDay:       req.PaymentDay,
		NotifyDaysBefore: req.NotifyDaysBefore,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (s *Server) ListPaymentMethods(c *gin.Context) {
	methods, err := s.paymentSvc.ListMethods(c.Request.Context(), c.Param("account"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_methods": methods})
}

type addPaymentMethodRequest struct {
	Provider  string `json:"provider"`
	Label     string `json:"label"`
	Last4     string `json:"last4"`
	IsDefault bool   `json:"is_default"`
}

func (s *Server) AddPaymentMethod(c *gin.Context) {
	var req addPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	method, err := s.paymentSvc.AddMethod(c.Request.Context(), paymentdomain.AddMethodRequest{
		TenantAccount: c.Param("account"),
		Provider:      req.Provider,
		Label:         req.Label,
		Last4:         req.Last4,
		IsDefault:     req.IsDefault,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, method)
}

func (s *Server) RemovePaymentMethod(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}
	if err := s.paymentSvc.RemoveMethod(c.Request.Context(), c.Param("account"), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := s.notifySvc.ListByAccount(c.Request.Context(), c.Param("account"), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": rows})
}

func parseID(raw string) (snowflake.ID, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(v), nil
}
