package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qrpay-certifier/internal/features/payment/domain"
	"qrpay-certifier/internal/features/payment/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCertificationService is a mock implementation of CertificationService
type MockCertificationService struct {
	mock.Mock
}

func (m *MockCertificationService) Query(ctx context.Context, ids domain.OrderIdentifier) (*domain.OrderStatusRecord, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderStatusRecord), args.Error(1)
}

func (m *MockCertificationService) WaitForSettlement(ctx context.Context, ids domain.OrderIdentifier, opts service.PollOptions) (*domain.OrderStatusRecord, error) {
	args := m.Called(ctx, ids, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderStatusRecord), args.Error(1)
}

func (m *MockCertificationService) Refund(ctx context.Context, in service.RefundInput) (*domain.RefundRecord, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundRecord), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

var defaults = service.PollOptions{MaxWait: 300 * time.Second, Interval: 3 * time.Second}

func setupApp(svc *MockCertificationService, cache Pinger) *fiber.App {
	app := fiber.New()
	app.Use(requestid.New(requestid.Config{Header: "X-Ray-ID"}))
	NewPaymentHandler(svc, defaults, cache).Register(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func intPtr(i int) *int { return &i }

func TestPaymentHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		cache      Pinger
		wantStatus int
		wantCache  string
	}{
		{name: "NoCache", cache: nil, wantStatus: http.StatusOK, wantCache: "disabled"},
		{name: "CacheUp", cache: stubPinger{}, wantStatus: http.StatusOK, wantCache: "ok"},
		{name: "CacheDown", cache: stubPinger{err: errors.New("refused")}, wantStatus: http.StatusServiceUnavailable, wantCache: "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(new(MockCertificationService), tt.cache)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var out HealthResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, tt.wantCache, out.Cache)
		})
	}
}

func TestPaymentHandler_GetStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockCertificationService)
		app := setupApp(svc, nil)

		svc.On("Query", mock.Anything, domain.OrderIdentifier{HfSeqID: "hf-1", ReqDate: "20251106"}).
			Return(&domain.OrderStatusRecord{RespCode: "00000000", TransStat: domain.TransStatusSuccess}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/orders/status?hf_seq_id=hf-1&req_date=20251106", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var record domain.OrderStatusRecord
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
		assert.Equal(t, domain.TransStatusSuccess, record.TransStat)
		svc.AssertExpectations(t)
	})

	t.Run("NoIdentifiers", func(t *testing.T) {
		svc := new(MockCertificationService)
		app := setupApp(svc, nil)

		svc.On("Query", mock.Anything, domain.OrderIdentifier{}).Return(nil, domain.ErrInvalidIdentifiers).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/orders/status", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		out := decodeError(t, resp)
		assert.NotEmpty(t, out.RayID)
		assert.Equal(t, resp.Header.Get("X-Ray-ID"), out.RayID)
	})

	t.Run("GatewayDown", func(t *testing.T) {
		svc := new(MockCertificationService)
		app := setupApp(svc, nil)

		svc.On("Query", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("service: status query failed: %w", errors.New("dial tcp"))).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/orders/status?req_seq_id=x", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func TestPaymentHandler_WaitForSettlement(t *testing.T) {
	t.Run("DefaultsApplied", func(t *testing.T) {
		svc := new(MockCertificationService)
		app := setupApp(svc, nil)

		svc.On("WaitForSettlement", mock.Anything, domain.OrderIdentifier{ReqSeqID: "123_20251106_999_PAY"}, defaults).
			Return(&domain.OrderStatusRecord{RespCode: "00000000", TransStat: domain.TransStatusSuccess}, nil).Once()

		resp := postJSON(t, app, "/orders/wait", WaitRequest{ReqSeqID: "123_20251106_999_PAY"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("BudgetOverride", func(t *testing.T) {
		svc := new(MockCertificationService)
		app := setupApp(svc, nil)

		want := service.PollOptions{MaxWait: 0, Interval: time.Second}
		svc.On("WaitForSettlement", mock.Anything, mock.Anything, want).
			Return(nil, fmt.Errorf("%w after 0s", service.ErrPollTimeout)).Once()

		resp := postJSON(t, app, "/orders/wait", WaitRequest{
			HfSeqID:             "hf-1",
			MaxWaitSeconds:      intPtr(0),
			PollIntervalSeconds: intPtr(1),
		})
		assert.Equal(t, http.StatusRequestTimeout, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		tests := []struct {
			name string
			body WaitRequest
		}{
			{name: "NoIdentifier", body: WaitRequest{ReqDate: "20251106"}},
			{name: "BadDate", body: WaitRequest{HfSeqID: "hf", ReqDate: "2025-11-06"}},
			{name: "NegativeWait", body: WaitRequest{HfSeqID: "hf", MaxWaitSeconds: intPtr(-1)}},
			{name: "ZeroInterval", body: WaitRequest{HfSeqID: "hf", PollIntervalSeconds: intPtr(0)}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := new(MockCertificationService)
				app := setupApp(svc, nil)

				resp := postJSON(t, app, "/orders/wait", tt.body)
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				svc.AssertNotCalled(t, "WaitForSettlement", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("ShutdownCancelsWait", func(t *testing.T) {
		svc := new(MockCertificationService)
		lifetime, shutdown := context.WithCancel(context.Background())
		defer shutdown()

		app := fiber.New()
		app.Use(requestid.New(requestid.Config{Header: "X-Ray-ID"}))
		NewPaymentHandler(svc, defaults, nil).WithLifetime(lifetime).Register(app)

		var stopped bool
		svc.On("WaitForSettlement", mock.Anything, mock.Anything, defaults).
			Run(func(args mock.Arguments) {
				ctx := args.Get(0).(context.Context)
				shutdown()
				select {
				case <-ctx.Done():
					stopped = true
				case <-time.After(time.Second):
				}
			}).
			Return(nil, context.Canceled).Once()

		resp := postJSON(t, app, "/orders/wait", WaitRequest{HfSeqID: "hf-1"})
		assert.True(t, stopped, "wait context not cancelled by shutdown")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "console is shutting down", decodeError(t, resp).Message)
		svc.AssertExpectations(t)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		app := setupApp(new(MockCertificationService), nil)

		req := httptest.NewRequest(http.MethodPost, "/orders/wait", bytes.NewReader([]byte("{")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestPaymentHandler_Refund(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockCertificationService)
		app := setupApp(svc, nil)

		svc.On("Refund", mock.Anything, mock.MatchedBy(func(in service.RefundInput) bool {
			return in.Original.ReqSeqID == "123_20251105_999_PAY" &&
				in.Amount.Equal(decimal.RequireFromString("0.50")) &&
				in.OriginalAmount.Equal(decimal.RequireFromString("1.00"))
		})).Return(&domain.RefundRecord{
			OrderStatusRecord: domain.OrderStatusRecord{RespCode: "00000000", TransStat: domain.TransStatusProcessing},
			OrdAmt:            "0.50",
		}, nil).Once()

		resp := postJSON(t, app, "/refunds", RefundRequest{
			ReqSeqID:    "123_20251105_999_PAY",
			RefundAmt:   "0.50",
			OriginalAmt: "1.00",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("Rejected", func(t *testing.T) {
		svc := new(MockCertificationService)
		app := setupApp(svc, nil)

		svc.On("Refund", mock.Anything, mock.Anything).
			Return(nil, &service.RejectedError{Code: "23000003", Desc: "refund exceeds balance"}).Once()

		resp := postJSON(t, app, "/refunds", RefundRequest{HfSeqID: "hf-1", ReqDate: "20251105", RefundAmt: "1.00"})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		out := decodeError(t, resp)
		assert.Equal(t, "23000003", out.Code)
		assert.Equal(t, "refund exceeds balance", out.Message)
	})

	t.Run("MissingOriginalDate", func(t *testing.T) {
		svc := new(MockCertificationService)
		app := setupApp(svc, nil)

		svc.On("Refund", mock.Anything, mock.Anything).Return(nil, service.ErrMissingOriginalDate).Once()

		resp := postJSON(t, app, "/refunds", RefundRequest{HfSeqID: "hf-1", RefundAmt: "1.00"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		tests := []struct {
			name string
			body RefundRequest
		}{
			{name: "NoIdentifier", body: RefundRequest{ReqDate: "20251105", RefundAmt: "1.00"}},
			{name: "NoAmount", body: RefundRequest{HfSeqID: "hf-1"}},
			{name: "AmountNotNumeric", body: RefundRequest{HfSeqID: "hf-1", RefundAmt: "one"}},
			{name: "BadOriginalAmount", body: RefundRequest{HfSeqID: "hf-1", RefundAmt: "1", OriginalAmt: "x"}},
			{name: "SubCentAmount", body: RefundRequest{HfSeqID: "hf-1", ReqDate: "20251105", RefundAmt: "0.001"}},
			{name: "SubCentOriginalAmount", body: RefundRequest{HfSeqID: "hf-1", ReqDate: "20251105", RefundAmt: "1.01", OriginalAmt: "1.005"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := new(MockCertificationService)
				app := setupApp(svc, nil)

				resp := postJSON(t, app, "/refunds", tt.body)
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				svc.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
			})
		}
	})
}
