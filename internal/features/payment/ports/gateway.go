package ports

import (
	"context"

	"qrpay-certifier/internal/features/payment/domain"
)

// OrderQueryService looks up the current state of an order.
// This is a Secondary Port (Driven Port); calls are synchronous and idempotent.
type OrderQueryService interface {
	// Query returns the gateway's answer for the given identifiers. A transport
	// or decoding failure is reported as an error; gateway-level rejections
	// come back as a record with a non-success RespCode.
	Query(ctx context.Context, ids domain.OrderIdentifier) (*domain.OrderStatusRecord, error)
}

// PayRequest asks the gateway for a NATIVE QR payment.
type PayRequest struct {
	ReqSeqID  string
	ReqDate   string
	TransAmt  string
	GoodsDesc string
}

// RefundRequest asks the gateway to return funds of an earlier payment.
type RefundRequest struct {
	ReqSeqID string
	ReqDate  string
	OrdAmt   string
	Original domain.OrderIdentifier
}

// PaymentGateway is the full set of gateway operations used by the certifier.
type PaymentGateway interface {
	OrderQueryService
	// Pay places an aggregated QR payment order.
	Pay(ctx context.Context, req PayRequest) (*domain.PaymentRecord, error)
	// Refund refunds a settled payment.
	Refund(ctx context.Context, req RefundRequest) (*domain.RefundRecord, error)
}
