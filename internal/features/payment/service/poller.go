package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qrpay-certifier/internal/core/logger"
	"qrpay-certifier/internal/features/payment/domain"
	"qrpay-certifier/internal/features/payment/ports"

	"go.uber.org/zap"
)

var (
	// ErrPollTimeout is returned when no terminal status was seen before the deadline.
	ErrPollTimeout = errors.New("timed out waiting for a terminal payment status")
	// ErrInvalidPollOptions is returned for a negative deadline or a non-positive interval.
	ErrInvalidPollOptions = errors.New("invalid poll options")
)

// PollOptions bounds a settlement wait.
type PollOptions struct {
	// MaxWait is the wall-clock budget. Zero times out before the first query.
	MaxWait time.Duration
	// Interval is the pause after every non-terminal attempt.
	Interval time.Duration
}

// DefaultPollOptions waits up to five minutes, querying every three seconds.
func DefaultPollOptions() PollOptions {
	return PollOptions{MaxWait: 300 * time.Second, Interval: 3 * time.Second}
}

// Validate rejects budgets the loop cannot honor.
func (o PollOptions) Validate() error {
	if o.MaxWait < 0 {
		return fmt.Errorf("%w: max wait must not be negative", ErrInvalidPollOptions)
	}
	if o.Interval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidPollOptions)
	}
	return nil
}

// Poller waits for an order to reach a terminal status by querying it at a
// fixed interval. Query failures and non-success response codes are treated
// as transient; the deadline is the only hard stop.
type Poller struct {
	query ports.OrderQueryService
	log   *zap.Logger
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a Poller on top of the given query service.
func NewPoller(query ports.OrderQueryService) *Poller {
	return &Poller{
		query: query,
		log:   logger.Named("poller"),
		now:   time.Now,
		sleep: sleepContext,
	}
}

// WaitForTerminalStatus returns the first record with a terminal status
// (Success, Failed or Closed). Callers inspect TransStat to tell them apart.
// It returns ErrPollTimeout once opts.MaxWait has elapsed, or ctx.Err() when
// interrupted.
func (p *Poller) WaitForTerminalStatus(ctx context.Context, ids domain.OrderIdentifier, opts PollOptions) (*domain.OrderStatusRecord, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := p.now()

	ids, err := ids.Resolve(start)
	if err != nil {
		return nil, err
	}

	p.log.Info("Waiting for settlement",
		zap.String("req_seq_id", ids.ReqSeqID),
		zap.String("hf_seq_id", ids.HfSeqID),
		zap.String("party_order_id", ids.PartyOrderID),
		zap.String("req_date", ids.ReqDate),
		zap.Duration("max_wait", opts.MaxWait),
		zap.Duration("interval", opts.Interval),
	)

	for attempt := 1; ; attempt++ {
		elapsed := p.now().Sub(start)
		if elapsed >= opts.MaxWait {
			p.log.Warn("Settlement wait timed out",
				zap.Duration("elapsed", elapsed),
				zap.Int("attempts", attempt-1),
			)
			return nil, fmt.Errorf("%w after %s", ErrPollTimeout, elapsed.Truncate(time.Second))
		}

		if record := p.attempt(ctx, ids, attempt, elapsed); record != nil {
			return record, nil
		}

		if err := p.sleep(ctx, opts.Interval); err != nil {
			return nil, err
		}
	}
}

// attempt runs one query and returns the record only when it is terminal.
func (p *Poller) attempt(ctx context.Context, ids domain.OrderIdentifier, attempt int, elapsed time.Duration) *domain.OrderStatusRecord {
	log := p.log.With(zap.Int("attempt", attempt), zap.Duration("elapsed", elapsed.Truncate(time.Second)))

	record, err := p.query.Query(ctx, ids)
	if err != nil || record == nil {
		log.Warn("Status query failed, retrying", zap.Error(err))
		return nil
	}

	if record.InsufficientIdentifiers() && ids.HfSeqID != "" {
		log.Info("Gateway could not match identifiers, retrying with settlement id only")
		narrowed, err := p.query.Query(ctx, ids.Narrowed())
		if err != nil || narrowed == nil {
			log.Warn("Narrowed status query failed", zap.Error(err))
		} else {
			record = narrowed
		}
	}

	if !record.Succeeded() {
		log.Warn("Status query rejected, retrying",
			zap.String("resp_code", record.RespCode),
			zap.String("resp_desc", record.RespDesc),
		)
		return nil
	}

	if record.TransStat.IsTerminal() {
		log.Info("Terminal status reached",
			zap.Stringer("status", record.TransStat),
			zap.String("hf_seq_id", record.HfSeqID),
			zap.String("trans_amt", record.TransAmt),
		)
		return record
	}

	log.Info("Payment not settled yet", zap.Stringer("status", record.TransStat))
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
