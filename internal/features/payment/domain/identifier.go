package domain

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the gateway's request date format (YYYYMMDD).
const DateLayout = "20060102"

var (
	// ErrInvalidIdentifiers is returned when no request, settlement or party order id is present.
	ErrInvalidIdentifiers = errors.New("at least one of req_seq_id, hf_seq_id or party_order_id is required")
	// ErrInvalidRequestDate is returned when an explicit request date is not YYYYMMDD.
	ErrInvalidRequestDate = errors.New("request date must be YYYYMMDD")
)

// OrderIdentifier names a transaction on the gateway. Any one of the three
// ids is enough; ReqDate is the date the original request was sent.
type OrderIdentifier struct {
	// ReqSeqID is our request sequence id: {user}_{YYYYMMDD}_{nnnnnn}_{PURPOSE}.
	ReqSeqID string `json:"req_seq_id,omitempty"`
	// HfSeqID is the settlement sequence id assigned by the gateway.
	HfSeqID string `json:"hf_seq_id,omitempty"`
	// PartyOrderID is the order id issued by the upstream wallet network.
	PartyOrderID string `json:"party_order_id,omitempty"`
	// ReqDate is the request date, YYYYMMDD.
	ReqDate string `json:"req_date,omitempty"`
}

// Validate reports ErrInvalidIdentifiers when no usable id is present.
func (o OrderIdentifier) Validate() error {
	if o.ReqSeqID == "" && o.HfSeqID == "" && o.PartyOrderID == "" {
		return ErrInvalidIdentifiers
	}
	return nil
}

// Resolve returns a copy with ReqDate always set: the explicit date, else the
// date embedded in ReqSeqID, else today's date.
func (o OrderIdentifier) Resolve(now time.Time) (OrderIdentifier, error) {
	if err := o.Validate(); err != nil {
		return OrderIdentifier{}, err
	}

	if o.ReqDate != "" {
		if !isDate(o.ReqDate) {
			return OrderIdentifier{}, ErrInvalidRequestDate
		}
		return o, nil
	}

	if d, ok := DateFromReqSeqID(o.ReqSeqID); ok {
		o.ReqDate = d
		return o, nil
	}

	o.ReqDate = now.Format(DateLayout)
	return o, nil
}

// Narrowed returns the settlement id and date only. The gateway answers a
// query carrying conflicting ids with an insufficient-identifier code; the
// settlement id alone is always accepted.
func (o OrderIdentifier) Narrowed() OrderIdentifier {
	return OrderIdentifier{HfSeqID: o.HfSeqID, ReqDate: o.ReqDate}
}

// DateFromReqSeqID extracts the YYYYMMDD segment of a request sequence id.
func DateFromReqSeqID(reqSeqID string) (string, bool) {
	parts := strings.Split(reqSeqID, "_")
	if len(parts) < 2 || !isDate(parts[1]) {
		return "", false
	}
	return parts[1], true
}

func isDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
