package domain

import "strings"

// TransStatus is the gateway's transaction state.
type TransStatus string

const (
	TransStatusProcessing TransStatus = "P"
	TransStatusSuccess    TransStatus = "S"
	TransStatusFailed     TransStatus = "F"
	TransStatusClosed     TransStatus = "C"
)

const (
	// successPrefix marks a successful response code.
	successPrefix = "0000"
	// RespCodeInsufficientIdentifiers is returned when the gateway cannot
	// locate the order from the ids given.
	RespCodeInsufficientIdentifiers = "21000000"
)

// IsTerminal reports whether no further transition is expected.
func (s TransStatus) IsTerminal() bool {
	switch s {
	case TransStatusSuccess, TransStatusFailed, TransStatusClosed:
		return true
	}
	return false
}

// String returns a readable label; unknown codes are passed through.
func (s TransStatus) String() string {
	switch s {
	case TransStatusProcessing:
		return "PROCESSING"
	case TransStatusSuccess:
		return "SUCCESS"
	case TransStatusFailed:
		return "FAILED"
	case TransStatusClosed:
		return "CLOSED"
	case "":
		return "UNKNOWN"
	}
	return "UNKNOWN(" + string(s) + ")"
}

// OrderStatusRecord is one gateway answer about an order.
type OrderStatusRecord struct {
	RespCode     string      `json:"resp_code"`
	RespDesc     string      `json:"resp_desc,omitempty"`
	TransStat    TransStatus `json:"trans_stat,omitempty"`
	ReqSeqID     string      `json:"req_seq_id,omitempty"`
	ReqDate      string      `json:"req_date,omitempty"`
	HfSeqID      string      `json:"hf_seq_id,omitempty"`
	PartyOrderID string      `json:"party_order_id,omitempty"`
	TransAmt     string      `json:"trans_amt,omitempty"`
}

// Succeeded reports whether the gateway accepted the request.
func (r OrderStatusRecord) Succeeded() bool {
	return strings.HasPrefix(r.RespCode, successPrefix)
}

// InsufficientIdentifiers reports whether the gateway could not match the ids.
func (r OrderStatusRecord) InsufficientIdentifiers() bool {
	return r.RespCode == RespCodeInsufficientIdentifiers
}

// IsTerminal reports a successful answer carrying a terminal status.
func (r OrderStatusRecord) IsTerminal() bool {
	return r.Succeeded() && r.TransStat.IsTerminal()
}

// Identifier returns the ids carried by the record.
func (r OrderStatusRecord) Identifier() OrderIdentifier {
	return OrderIdentifier{
		ReqSeqID:     r.ReqSeqID,
		HfSeqID:      r.HfSeqID,
		PartyOrderID: r.PartyOrderID,
		ReqDate:      r.ReqDate,
	}
}

// PaymentRecord is the answer to a QR payment request.
type PaymentRecord struct {
	OrderStatusRecord
	// QRCode is the URL the payer scans.
	QRCode string `json:"qr_code,omitempty"`
}

// RefundRecord is the answer to a refund request.
type RefundRecord struct {
	OrderStatusRecord
	// OrdAmt is the refunded amount echoed by the gateway.
	OrdAmt string `json:"ord_amt,omitempty"`
}
