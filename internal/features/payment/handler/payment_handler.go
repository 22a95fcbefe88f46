package handler

import (
	"context"
	"errors"
	"time"

	"qrpay-certifier/internal/core/logger"
	"qrpay-certifier/internal/features/payment/domain"
	"qrpay-certifier/internal/features/payment/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var validate = validator.New()

// CertificationService is the part of service.PaymentService the console uses.
type CertificationService interface {
	Query(ctx context.Context, ids domain.OrderIdentifier) (*domain.OrderStatusRecord, error)
	WaitForSettlement(ctx context.Context, ids domain.OrderIdentifier, opts service.PollOptions) (*domain.OrderStatusRecord, error)
	Refund(ctx context.Context, in service.RefundInput) (*domain.RefundRecord, error)
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PaymentHandler handles HTTP requests of the operator console.
type PaymentHandler struct {
	service  CertificationService
	defaults service.PollOptions
	cache    Pinger
	lifetime context.Context
}

// NewPaymentHandler creates a new PaymentHandler. defaults applies to waits
// that do not set their own budget; cache may be nil.
func NewPaymentHandler(svc CertificationService, defaults service.PollOptions, cache Pinger) *PaymentHandler {
	return &PaymentHandler{
		service:  svc,
		defaults: defaults,
		cache:    cache,
		lifetime: context.Background(),
	}
}

// WithLifetime ties running settlement waits to ctx: when ctx is done they
// stop and answer 503. fiber does not cancel request contexts on shutdown.
func (h *PaymentHandler) WithLifetime(ctx context.Context) *PaymentHandler {
	h.lifetime = ctx
	return h
}

// Register mounts the console routes on app.
func (h *PaymentHandler) Register(app fiber.Router) {
	app.Get("/health", h.Health)
	app.Get("/orders/status", h.GetStatus)
	app.Post("/orders/wait", h.WaitForSettlement)
	app.Post("/refunds", h.Refund)
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// Code is the gateway response code, when the gateway rejected the request.
	Code string `json:"code,omitempty"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// HealthResponse reports console liveness.
type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

// WaitRequest is the body of POST /orders/wait.
type WaitRequest struct {
	ReqSeqID     string `json:"req_seq_id" validate:"required_without_all=HfSeqID PartyOrderID"`
	HfSeqID      string `json:"hf_seq_id"`
	PartyOrderID string `json:"party_order_id"`
	ReqDate      string `json:"req_date" validate:"omitempty,len=8,numeric"`
	// MaxWaitSeconds overrides the configured budget; 0 times out at once.
	MaxWaitSeconds *int `json:"max_wait_seconds" validate:"omitempty,min=0"`
	// PollIntervalSeconds overrides the configured interval.
	PollIntervalSeconds *int `json:"poll_interval_seconds" validate:"omitempty,min=1"`
}

// Validate checks the request shape.
func (r *WaitRequest) Validate() error {
	return validate.Struct(r)
}

// RefundRequest is the body of POST /refunds.
type RefundRequest struct {
	ReqSeqID     string `json:"org_req_seq_id" validate:"required_without_all=HfSeqID PartyOrderID"`
	HfSeqID      string `json:"org_hf_seq_id"`
	PartyOrderID string `json:"party_order_id"`
	// ReqDate may be omitted when ReqSeqID embeds it.
	ReqDate string `json:"org_req_date" validate:"omitempty,len=8,numeric"`
	// RefundAmt is the amount to return, e.g. "1.00".
	RefundAmt string `json:"refund_amt" validate:"required,numeric"`
	// OriginalAmt caps RefundAmt when given.
	OriginalAmt string `json:"original_amt" validate:"omitempty,numeric"`
}

// Validate checks the request shape.
func (r *RefundRequest) Validate() error {
	return validate.Struct(r)
}

// Health handles GET /health.
// @Summary Console health
// @Description Reports liveness and status cache reachability.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *PaymentHandler) Health(c *fiber.Ctx) error {
	resp := HealthResponse{Status: "ok", Cache: "disabled"}
	if h.cache != nil {
		if err := h.cache.Ping(c.UserContext()); err != nil {
			logger.Get().Warn("Status cache unreachable", zap.Error(err))
			resp.Status, resp.Cache = "degraded", "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		resp.Cache = "ok"
	}
	return c.JSON(resp)
}

// GetStatus godoc
// @Summary Query an order once
// @Description Runs a single status query. At least one identifier is required.
// @Tags orders
// @Produce json
// @Param req_seq_id query string false "Request sequence id"
// @Param hf_seq_id query string false "Settlement sequence id"
// @Param party_order_id query string false "Wallet order id"
// @Param req_date query string false "Request date, YYYYMMDD"
// @Success 200 {object} domain.OrderStatusRecord
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /orders/status [get]
func (h *PaymentHandler) GetStatus(c *fiber.Ctx) error {
	ids := domain.OrderIdentifier{
		ReqSeqID:     c.Query("req_seq_id"),
		HfSeqID:      c.Query("hf_seq_id"),
		PartyOrderID: c.Query("party_order_id"),
		ReqDate:      c.Query("req_date"),
	}

	record, err := h.service.Query(c.UserContext(), ids)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(record)
}

// WaitForSettlement godoc
// @Summary Wait for an order to settle
// @Description Polls the order until it reaches SUCCESS, FAILED or CLOSED, or the wait budget runs out.
// @Tags orders
// @Accept json
// @Produce json
// @Param request body WaitRequest true "Order identifiers and wait budget"
// @Success 200 {object} domain.OrderStatusRecord
// @Failure 400 {object} ErrorResponse
// @Failure 408 {object} ErrorResponse
// @Router /orders/wait [post]
func (h *PaymentHandler) WaitForSettlement(c *fiber.Ctx) error {
	var req WaitRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return h.badRequest(c, err.Error())
	}

	opts := h.defaults
	if req.MaxWaitSeconds != nil {
		opts.MaxWait = time.Duration(*req.MaxWaitSeconds) * time.Second
	}
	if req.PollIntervalSeconds != nil {
		opts.Interval = time.Duration(*req.PollIntervalSeconds) * time.Second
	}

	ids := domain.OrderIdentifier{
		ReqSeqID:     req.ReqSeqID,
		HfSeqID:      req.HfSeqID,
		PartyOrderID: req.PartyOrderID,
		ReqDate:      req.ReqDate,
	}

	ctx, cancel := context.WithCancel(c.UserContext())
	defer cancel()
	stop := context.AfterFunc(h.lifetime, cancel)
	defer stop()

	record, err := h.service.WaitForSettlement(ctx, ids, opts)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(record)
}

// Refund godoc
// @Summary Refund a payment
// @Description Returns all or part of a settled payment to the payer.
// @Tags refunds
// @Accept json
// @Produce json
// @Param request body RefundRequest true "Original transaction and amount"
// @Success 200 {object} domain.RefundRecord
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /refunds [post]
func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	var req RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return h.badRequest(c, err.Error())
	}

	amount, err := domain.ParseAmount(req.RefundAmt)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	var original decimal.Decimal
	if req.OriginalAmt != "" {
		if original, err = domain.ParseAmount(req.OriginalAmt); err != nil {
			return h.badRequest(c, err.Error())
		}
	}

	record, err := h.service.Refund(c.UserContext(), service.RefundInput{
		Original: domain.OrderIdentifier{
			ReqSeqID:     req.ReqSeqID,
			HfSeqID:      req.HfSeqID,
			PartyOrderID: req.PartyOrderID,
			ReqDate:      req.ReqDate,
		},
		Amount:         amount,
		OriginalAmount: original,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(record)
}

func (h *PaymentHandler) badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

// fail maps service errors onto HTTP statuses.
func (h *PaymentHandler) fail(c *fiber.Ctx, err error) error {
	var rejected *service.RejectedError

	switch {
	case errors.Is(err, domain.ErrInvalidIdentifiers),
		errors.Is(err, domain.ErrInvalidRequestDate),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidRefundAmount),
		errors.Is(err, service.ErrMissingOriginalDate),
		errors.Is(err, service.ErrInvalidPollOptions):
		return h.badRequest(c, err.Error())

	case errors.Is(err, service.ErrPollTimeout):
		return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})

	case errors.As(err, &rejected):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Message: rejected.Desc,
			Code:    rejected.Code,
			RayID:   rayID(c),
		})

	case errors.Is(err, context.Canceled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Message: "console is shutting down",
			RayID:   rayID(c),
		})
	}

	logger.Get().Error("Gateway call failed", zap.Error(err), zap.String("ray_id", rayID(c)))
	return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
		Message: err.Error(),
		RayID:   rayID(c),
	})
}

func rayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
