package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 11, 7, 14, 15, 16, 123_000_000, time.Local)

func TestOrderIdentifier_Resolve(t *testing.T) {
	tests := []struct {
		name        string
		in          OrderIdentifier
		wantDate    string
		expectedErr error
	}{
		{
			name:     "DateFromReqSeqID",
			in:       OrderIdentifier{ReqSeqID: "123_20251106_999_PAY"},
			wantDate: "20251106",
		},
		{
			name:     "ExplicitDateWins",
			in:       OrderIdentifier{ReqSeqID: "123_20251106_999_PAY", ReqDate: "20251105"},
			wantDate: "20251105",
		},
		{
			name:     "SettlementIDDefaultsToToday",
			in:       OrderIdentifier{HfSeqID: "002900TOP1A251106141456P102ac139caf00000"},
			wantDate: "20251107",
		},
		{
			name:     "UnparseableSegmentDefaultsToToday",
			in:       OrderIdentifier{ReqSeqID: "123_abc_999_PAY"},
			wantDate: "20251107",
		},
		{
			name:     "NoSeparatorDefaultsToToday",
			in:       OrderIdentifier{PartyOrderID: "03242511065129633711868", ReqSeqID: "plain"},
			wantDate: "20251107",
		},
		{
			name:        "NoIdentifiers",
			in:          OrderIdentifier{ReqDate: "20251106"},
			expectedErr: ErrInvalidIdentifiers,
		},
		{
			name:        "BadExplicitDate",
			in:          OrderIdentifier{HfSeqID: "x", ReqDate: "2025-11-06"},
			expectedErr: ErrInvalidRequestDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Resolve(fixedNow)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, got.ReqDate)
			assert.Equal(t, tt.in.ReqSeqID, got.ReqSeqID)
			assert.Equal(t, tt.in.HfSeqID, got.HfSeqID)
		})
	}
}

func TestOrderIdentifier_Narrowed(t *testing.T) {
	ids := OrderIdentifier{ReqSeqID: "a", HfSeqID: "b", PartyOrderID: "c", ReqDate: "20251106"}
	assert.Equal(t, OrderIdentifier{HfSeqID: "b", ReqDate: "20251106"}, ids.Narrowed())
}

func TestOrderStatusRecord(t *testing.T) {
	r := OrderStatusRecord{RespCode: "00000100", TransStat: TransStatusProcessing}
	assert.True(t, r.Succeeded())
	assert.False(t, r.IsTerminal())

	r.TransStat = TransStatusClosed
	assert.True(t, r.IsTerminal())

	r.RespCode = RespCodeInsufficientIdentifiers
	assert.False(t, r.Succeeded())
	assert.True(t, r.InsufficientIdentifiers())
	assert.False(t, r.IsTerminal())
}

func TestTransStatus_String(t *testing.T) {
	assert.Equal(t, "SUCCESS", TransStatusSuccess.String())
	assert.Equal(t, "UNKNOWN", TransStatus("").String())
	assert.Equal(t, "UNKNOWN(I)", TransStatus("I").String())
	assert.False(t, TransStatus("I").IsTerminal())
}

func TestAmounts(t *testing.T) {
	one, err := ParseAmount(" 1 ")
	require.NoError(t, err)
	assert.Equal(t, "1.00", FormatAmount(one))

	_, err = ParseAmount("1,00")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.NoError(t, ValidatePaymentAmount(one))
	assert.ErrorIs(t, ValidatePaymentAmount(decimal.RequireFromString("0.99")), ErrAmountBelowMinimum)

	paid := decimal.RequireFromString("2.50")
	assert.NoError(t, ValidateRefundAmount(decimal.RequireFromString("2.50"), paid))
	assert.NoError(t, ValidateRefundAmount(decimal.RequireFromString("0.01"), paid))
	assert.ErrorIs(t, ValidateRefundAmount(decimal.RequireFromString("2.51"), paid), ErrInvalidRefundAmount)
	assert.ErrorIs(t, ValidateRefundAmount(decimal.Zero, paid), ErrInvalidRefundAmount)
	assert.ErrorIs(t, ValidateRefundAmount(decimal.RequireFromString("-1"), decimal.Zero), ErrInvalidRefundAmount)
	assert.NoError(t, ValidateRefundAmount(decimal.RequireFromString("99"), decimal.Zero))
}

func TestAmounts_SubCentPrecision(t *testing.T) {
	for _, in := range []string{"0.001", "1.005", "2.999"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}

	trailing, err := ParseAmount("1.500")
	require.NoError(t, err)
	assert.Equal(t, "1.50", FormatAmount(trailing))

	assert.ErrorIs(t, ValidatePaymentAmount(decimal.RequireFromString("1.005")), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateRefundAmount(decimal.RequireFromString("0.001"), decimal.Zero), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateRefundAmount(decimal.RequireFromString("0.001"), decimal.RequireFromString("1.00")), ErrInvalidAmount)
}

func TestNewRequestSeqID(t *testing.T) {
	id := NewRequestSeqID("1435964137120268288", PurposePay, fixedNow)

	expected := fmt.Sprintf("1435964137120268288_20251107_%06d_PAY", fixedNow.UnixMilli()%1_000_000)
	assert.Equal(t, expected, id)

	d, ok := DateFromReqSeqID(id)
	assert.True(t, ok)
	assert.Equal(t, "20251107", d)
}
