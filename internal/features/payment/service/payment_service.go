package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qrpay-certifier/internal/core/logger"
	"qrpay-certifier/internal/features/payment/domain"
	"qrpay-certifier/internal/features/payment/ports"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrGatewayRejected is returned when the gateway answers with a non-success code.
var ErrGatewayRejected = errors.New("gateway rejected the request")

// ErrMissingOriginalDate is returned when a refund does not name the original request date.
var ErrMissingOriginalDate = errors.New("original request date is required for a refund")

// RejectedError carries the gateway's response code and description.
type RejectedError struct {
	Code string
	Desc string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: [%s] %s", ErrGatewayRejected, e.Code, e.Desc)
}

// Unwrap lets errors.Is match ErrGatewayRejected.
func (e *RejectedError) Unwrap() error { return ErrGatewayRejected }

// PaymentService sequences the certification steps against the gateway.
type PaymentService struct {
	gateway   ports.PaymentGateway
	lookup    ports.OrderQueryService
	poller    *Poller
	userID    string
	goodsDesc string
	now       func() time.Time
	log       *zap.Logger
}

// NewPaymentService creates a PaymentService. userID prefixes generated request
// sequence ids. lookup may be a decorated view of gateway (e.g. cached) and
// serves single status queries only; settlement waits always reach gateway so
// every attempt sees a fresh record.
func NewPaymentService(gateway ports.PaymentGateway, lookup ports.OrderQueryService, userID string) *PaymentService {
	if lookup == nil {
		lookup = gateway
	}
	return &PaymentService{
		gateway:   gateway,
		lookup:    lookup,
		poller:    NewPoller(gateway),
		userID:    userID,
		goodsDesc: "Merchant certification test",
		now:       time.Now,
		log:       logger.Named("payment"),
	}
}

// Pay places a NATIVE QR payment for amount. The returned record carries the
// QR code to scan and the identifiers needed to wait for settlement and refund.
func (s *PaymentService) Pay(ctx context.Context, amount decimal.Decimal) (*domain.PaymentRecord, error) {
	if err := domain.ValidatePaymentAmount(amount); err != nil {
		return nil, err
	}

	now := s.now()
	req := ports.PayRequest{
		ReqSeqID:  domain.NewRequestSeqID(s.userID, domain.PurposePay, now),
		ReqDate:   now.Format(domain.DateLayout),
		TransAmt:  domain.FormatAmount(amount),
		GoodsDesc: s.goodsDesc,
	}

	s.log.Info("Placing QR payment",
		zap.String("req_seq_id", req.ReqSeqID),
		zap.String("trans_amt", req.TransAmt),
	)

	record, err := s.gateway.Pay(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("service: payment request failed: %w", err)
	}

	// the gateway does not always echo our ids back
	if record.ReqSeqID == "" {
		record.ReqSeqID = req.ReqSeqID
	}
	if record.ReqDate == "" {
		record.ReqDate = req.ReqDate
	}
	if record.TransAmt == "" {
		record.TransAmt = req.TransAmt
	}

	if !record.Succeeded() {
		return record, &RejectedError{Code: record.RespCode, Desc: record.RespDesc}
	}

	s.log.Info("Payment order placed",
		zap.String("hf_seq_id", record.HfSeqID),
		zap.Stringer("status", record.TransStat),
		zap.Bool("has_qr_code", record.QRCode != ""),
	)
	return record, nil
}

// Query runs a single status query.
func (s *PaymentService) Query(ctx context.Context, ids domain.OrderIdentifier) (*domain.OrderStatusRecord, error) {
	resolved, err := ids.Resolve(s.now())
	if err != nil {
		return nil, err
	}

	record, err := s.lookup.Query(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("service: status query failed: %w", err)
	}
	return record, nil
}

// WaitForSettlement polls until the order reaches a terminal status.
func (s *PaymentService) WaitForSettlement(ctx context.Context, ids domain.OrderIdentifier, opts PollOptions) (*domain.OrderStatusRecord, error) {
	return s.poller.WaitForTerminalStatus(ctx, ids, opts)
}

// RefundInput describes a refund of an earlier payment.
type RefundInput struct {
	// Original identifies the payment; ReqDate is mandatory (directly or via ReqSeqID).
	Original domain.OrderIdentifier
	// Amount to refund.
	Amount decimal.Decimal
	// OriginalAmount, when non-zero, caps Amount.
	OriginalAmount decimal.Decimal
}

// Refund returns funds of a settled payment to the payer.
func (s *PaymentService) Refund(ctx context.Context, in RefundInput) (*domain.RefundRecord, error) {
	if err := in.Original.Validate(); err != nil {
		return nil, err
	}

	original := in.Original
	if original.ReqDate == "" {
		d, ok := domain.DateFromReqSeqID(original.ReqSeqID)
		if !ok {
			return nil, ErrMissingOriginalDate
		}
		original.ReqDate = d
	}
	original, err := original.Resolve(s.now())
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateRefundAmount(in.Amount, in.OriginalAmount); err != nil {
		return nil, err
	}

	now := s.now()
	req := ports.RefundRequest{
		ReqSeqID: domain.NewRequestSeqID(s.userID, domain.PurposeRefund, now),
		ReqDate:  now.Format(domain.DateLayout),
		OrdAmt:   domain.FormatAmount(in.Amount),
		Original: original,
	}

	s.log.Info("Requesting refund",
		zap.String("req_seq_id", req.ReqSeqID),
		zap.String("org_req_seq_id", original.ReqSeqID),
		zap.String("org_hf_seq_id", original.HfSeqID),
		zap.String("org_req_date", original.ReqDate),
		zap.String("ord_amt", req.OrdAmt),
	)

	record, err := s.gateway.Refund(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("service: refund request failed: %w", err)
	}
	if record.ReqSeqID == "" {
		record.ReqSeqID = req.ReqSeqID
	}

	if !record.Succeeded() {
		return record, &RejectedError{Code: record.RespCode, Desc: record.RespDesc}
	}

	s.log.Info("Refund accepted",
		zap.String("hf_seq_id", record.HfSeqID),
		zap.Stringer("status", record.TransStat),
	)
	return record, nil
}
