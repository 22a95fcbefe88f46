package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"qrpay-certifier/internal/core/cache"
	"qrpay-certifier/internal/core/logger"
	"qrpay-certifier/internal/features/payment/domain"
	"qrpay-certifier/internal/features/payment/ports"

	"go.uber.org/zap"
)

const statusCacheKeyPrefix = "order_status"

// CachedQueryService implements ports.OrderQueryService on top of another
// query service, keeping accepted answers in the cache for a short TTL.
type CachedQueryService struct {
	next  ports.OrderQueryService
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedQueryService creates a new CachedQueryService.
func NewCachedQueryService(next ports.OrderQueryService, c cache.Cache, ttl time.Duration) *CachedQueryService {
	return &CachedQueryService{
		next:  next,
		cache: c,
		ttl:   ttl,
		log:   logger.Named("status_cache"),
	}
}

// Query returns a cached record when one is fresh, otherwise asks the next
// service. Cache failures are logged and never fail the query.
func (s *CachedQueryService) Query(ctx context.Context, ids domain.OrderIdentifier) (*domain.OrderStatusRecord, error) {
	key := statusCacheKey(ids)

	if record, err := s.load(ctx, key); err == nil {
		s.log.Debug("Status served from cache", zap.String("key", key))
		return record, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("Status cache read failed", zap.String("key", key), zap.Error(err))
	}

	record, err := s.next.Query(ctx, ids)
	if err != nil {
		return nil, err
	}

	// rejections are not cached, the next poll must reach the gateway
	if record != nil && record.Succeeded() {
		if err := s.store(ctx, key, record); err != nil {
			s.log.Warn("Status cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return record, nil
}

func (s *CachedQueryService) load(ctx context.Context, key string) (*domain.OrderStatusRecord, error) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var record domain.OrderStatusRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached status: %w", err)
	}
	return &record, nil
}

func (s *CachedQueryService) store(ctx context.Context, key string, record *domain.OrderStatusRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	return s.cache.Set(ctx, key, data, s.ttl)
}

func statusCacheKey(ids domain.OrderIdentifier) string {
	return strings.Join([]string{statusCacheKeyPrefix, ids.ReqDate, ids.ReqSeqID, ids.HfSeqID, ids.PartyOrderID}, ":")
}
