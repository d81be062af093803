package http_api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pythocooks/onlyagents-backend/internal/models"
	"github.com/pythocooks/onlyagents-backend/pkg/validation"
)

// SubscribeRequest represents the JSON body for recording a subscription payment
type SubscribeRequest struct {
	SubscriberID int64  `json:"subscriber_id" binding:"required"`
	Target       string `json:"target" binding:"required"`
	Signature    string `json:"signature" binding:"required,min=64,max=128"`
}

// UnsubscribeRequest represents the JSON body for removing a subscription
type UnsubscribeRequest struct {
	SubscriberID int64  `json:"subscriber_id" binding:"required"`
	Target       string `json:"target" binding:"required"`
}

// TipRequest represents the JSON body for recording a tip
type TipRequest struct {
	TipperID  int64  `json:"tipper_id" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
	PostID    *int64 `json:"post_id"`
	Amount    string `json:"amount" binding:"required"`
	Signature string `json:"signature" binding:"required,min=64,max=128"`
}

// statusFor maps a payment error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrBadRequest), errors.Is(err, models.ErrSelfReferential):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrResourceMissing):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateTransaction):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFoundOnChain),
		errors.Is(err, models.ErrTransactionFailedOnChain),
		errors.Is(err, models.ErrNoMatchingTransfer):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the typed error response. Kind is stable and machine-readable;
// the message is for humans.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	kind := models.ErrorKind(err)
	if kind == "internal" {
		s.logger.Error("Request failed ", "path ", c.FullPath(), " error ", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"kind":    kind,
			"error":   "internal error",
		})
		return
	}
	c.JSON(statusFor(err), gin.H{
		"success": false,
		"kind":    kind,
		"error":   err.Error(),
	})
}

// subscribe is a handler for recording a subscription payment.
func (s *HTTPServer) subscribe(c *gin.Context) {
	var req SubscribeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"kind":    "bad_request",
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	if err := validation.ValidateSignature(req.Signature); err != nil {
		s.logger.Debug("Invalid signature", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"kind":    "bad_request",
			"error":   "Invalid signature: " + err.Error(),
		})
		return
	}

	result, err := s.payments.Subscribe(c.Request.Context(), req.SubscriberID, req.Target, req.Signature)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"action":  result.Action,
		"amount":  result.Amount,
	})
}

// unsubscribe is a handler for removing a subscription pair.
func (s *HTTPServer) unsubscribe(c *gin.Context) {
	var req UnsubscribeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"kind":    "bad_request",
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	result, err := s.payments.Unsubscribe(c.Request.Context(), req.SubscriberID, req.Target)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"action":  result.Action,
	})
}

// subscriptionStatus is a handler reporting whether a subscription pair exists.
func (s *HTTPServer) subscriptionStatus(c *gin.Context) {
	subscriberID, err := strconv.ParseInt(c.Query("subscriber_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "kind": "bad_request", "error": "invalid subscriber_id"})
		return
	}
	target := c.Query("target")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "kind": "bad_request", "error": "target is required"})
		return
	}

	subscribed, err := s.payments.IsSubscribed(c.Request.Context(), subscriberID, target)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"subscribed": subscribed,
	})
}

// tip is a handler for recording a tip.
func (s *HTTPServer) tip(c *gin.Context) {
	var req TipRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"kind":    "bad_request",
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	if err := validation.ValidateSignature(req.Signature); err != nil {
		s.logger.Debug("Invalid signature", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"kind":    "bad_request",
			"error":   "Invalid signature: " + err.Error(),
		})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"kind":    "bad_request",
			"error":   "Invalid amount: " + err.Error(),
		})
		return
	}
	// The ledger stores six fractional digits; anything finer would be
	// silently rounded away.
	if !amount.Truncate(6).Equal(amount) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"kind":    "bad_request",
			"error":   "Invalid amount: at most 6 decimal places allowed",
		})
		return
	}

	rec, err := s.payments.Tip(c.Request.Context(), &models.TipRequest{
		TipperID:      req.TipperID,
		RecipientName: req.Recipient,
		PostID:        req.PostID,
		Amount:        amount,
		Signature:     req.Signature,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"tip":     rec,
	})
}

// platformStats is a handler for ledger-wide aggregates.
func (s *HTTPServer) platformStats(c *gin.Context) {
	stats, err := s.payments.PlatformStats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// accountStats is a handler for one account's counters.
func (s *HTTPServer) accountStats(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "kind": "bad_request", "error": "name is required"})
		return
	}

	stats, err := s.payments.AccountStats(c.Request.Context(), name)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// postTips is a handler listing a post's tips.
func (s *HTTPServer) postTips(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "kind": "bad_request", "error": "invalid post id"})
		return
	}

	view, err := s.payments.PostTips(c.Request.Context(), postID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
