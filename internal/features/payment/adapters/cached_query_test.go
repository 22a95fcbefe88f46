package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"qrpay-certifier/internal/core/cache"
	"qrpay-certifier/internal/features/payment/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQueryService is a mock implementation of ports.OrderQueryService
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Query(ctx context.Context, ids domain.OrderIdentifier) (*domain.OrderStatusRecord, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderStatusRecord), args.Error(1)
}

func newCachedService(t *testing.T, next *MockQueryService) (*CachedQueryService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := cache.NewRedisAdapter("redis://"+mr.Addr(), "certifier")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return NewCachedQueryService(next, c, 2*time.Second), mr
}

var cachedIDs = domain.OrderIdentifier{HfSeqID: "hf-1", ReqDate: "20251106"}

func TestCachedQueryService_HitAfterMiss(t *testing.T) {
	ctx := context.Background()
	next := new(MockQueryService)
	svc, mr := newCachedService(t, next)

	record := &domain.OrderStatusRecord{RespCode: "00000000", TransStat: domain.TransStatusProcessing, HfSeqID: "hf-1"}
	next.On("Query", ctx, cachedIDs).Return(record, nil).Once()

	first, err := svc.Query(ctx, cachedIDs)
	require.NoError(t, err)
	assert.Equal(t, record, first)

	second, err := svc.Query(ctx, cachedIDs)
	require.NoError(t, err)
	assert.Equal(t, record, second)

	next.AssertNumberOfCalls(t, "Query", 1)
	assert.True(t, mr.Exists("certifier:order_status:20251106::hf-1:"))
}

func TestCachedQueryService_Expires(t *testing.T) {
	ctx := context.Background()
	next := new(MockQueryService)
	svc, mr := newCachedService(t, next)

	processing := &domain.OrderStatusRecord{RespCode: "00000000", TransStat: domain.TransStatusProcessing}
	settled := &domain.OrderStatusRecord{RespCode: "00000000", TransStat: domain.TransStatusSuccess}
	next.On("Query", ctx, cachedIDs).Return(processing, nil).Once()
	next.On("Query", ctx, cachedIDs).Return(settled, nil).Once()

	_, err := svc.Query(ctx, cachedIDs)
	require.NoError(t, err)

	mr.FastForward(3 * time.Second)

	record, err := svc.Query(ctx, cachedIDs)
	require.NoError(t, err)
	assert.Equal(t, domain.TransStatusSuccess, record.TransStat)
	next.AssertExpectations(t)
}

func TestCachedQueryService_RejectionNotCached(t *testing.T) {
	ctx := context.Background()
	next := new(MockQueryService)
	svc, _ := newCachedService(t, next)

	rejected := &domain.OrderStatusRecord{RespCode: domain.RespCodeInsufficientIdentifiers}
	next.On("Query", ctx, cachedIDs).Return(rejected, nil).Twice()

	for i := 0; i < 2; i++ {
		record, err := svc.Query(ctx, cachedIDs)
		require.NoError(t, err)
		assert.True(t, record.InsufficientIdentifiers())
	}
	next.AssertExpectations(t)
}

func TestCachedQueryService_ErrorPassesThrough(t *testing.T) {
	ctx := context.Background()
	next := new(MockQueryService)
	svc, _ := newCachedService(t, next)

	next.On("Query", ctx, cachedIDs).Return(nil, errors.New("connection refused")).Once()

	_, err := svc.Query(ctx, cachedIDs)
	assert.EqualError(t, err, "connection refused")
}

func TestCachedQueryService_CacheDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	next := new(MockQueryService)
	svc, mr := newCachedService(t, next)
	mr.Close()

	record := &domain.OrderStatusRecord{RespCode: "00000000", TransStat: domain.TransStatusSuccess}
	next.On("Query", ctx, cachedIDs).Return(record, nil).Once()

	got, err := svc.Query(ctx, cachedIDs)
	require.NoError(t, err)
	assert.Equal(t, record, got)
}
