package domain

import (
	"fmt"
	"time"
)

// Purpose tags the last segment of a request sequence id.
type Purpose string

const (
	PurposePay    Purpose = "PAY"
	PurposeRefund Purpose = "REFUND"
)

// NewRequestSeqID builds {userID}_{YYYYMMDD}_{last 6 digits of unix ms}_{purpose}.
// The certification checks that the id carries the user id and request date.
func NewRequestSeqID(userID string, purpose Purpose, now time.Time) string {
	return fmt.Sprintf("%s_%s_%06d_%s", userID, now.Format(DateLayout), now.UnixMilli()%1_000_000, purpose)
}
