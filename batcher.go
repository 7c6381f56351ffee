package i18nbackend

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
)

// DefaultFlushDelay is the debounce window for missing-key reports.
const DefaultFlushDelay = 1000 * time.Millisecond

// MissingKeySender delivers a batch of missing keys.
type MissingKeySender func(ctx context.Context, keys []MissingKey) error

// BatcherConfig configures a MissingKeyBatcher.
type BatcherConfig struct {
	Send    MissingKeySender // nil disables delivery; flushes become no-ops
	Delay   time.Duration    // debounce window (default: DefaultFlushDelay)
	OnSaved MissingKeysSavedFunc
	Logger  *slog.Logger
	Metrics *Metrics
}

// MissingKeyBatcher accumulates missing keys and delivers them in debounced batches.
//
// Every Report restarts the flush timer, so a burst of reports produces a single
// batch. A batch that fails to deliver is put back at the front of the queue and
// waits for the next flush; nothing reschedules a flush on failure, a later
// Report (or an explicit Flush) is required.
type MissingKeyBatcher struct {
	mu    sync.Mutex
	queue []MissingKey
	timer *time.Timer

	send    MissingKeySender
	delay   time.Duration
	onSaved MissingKeysSavedFunc
	logger  *slog.Logger
	metrics *Metrics
}

// NewMissingKeyBatcher creates a batcher.
func NewMissingKeyBatcher(cfg BatcherConfig) *MissingKeyBatcher {
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultFlushDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MissingKeyBatcher{
		send:    cfg.Send,
		delay:   delay,
		onSaved: cfg.OnSaved,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Report queues one record per language and reschedules the flush.
func (b *MissingKeyBatcher) Report(languages []string, namespace, key, fallbackValue string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, lng := range languages {
		b.queue = append(b.queue, MissingKey{
			Key:          key,
			DefaultValue: fallbackValue,
			Namespace:    namespace,
			Language:     lng,
		})
	}

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.flushScheduled)
}

func (b *MissingKeyBatcher) flushScheduled() {
	_ = b.Flush(context.Background())
}

// Flush delivers everything queued so far. Delivery errors are logged and the
// batch is re-queued; the error is also returned for explicit callers.
func (b *MissingKeyBatcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	if len(b.queue) == 0 || b.send == nil {
		b.mu.Unlock()
		return nil
	}
	batch := b.queue
	b.queue = nil
	b.mu.Unlock()

	batchID := xid.New().String()
	log := b.logger.With("batch_id", batchID, "keys", len(batch))

	if err := b.send(ctx, batch); err != nil {
		b.mu.Lock()
		requeued := make([]MissingKey, 0, len(batch)+len(b.queue))
		requeued = append(requeued, batch...)
		b.queue = append(requeued, b.queue...)
		b.mu.Unlock()

		b.metrics.missingKeys("requeued", len(batch))
		log.Warn("saving missing keys failed, re-queued for next flush", "error", err)
		return err
	}

	b.metrics.missingKeys("saved", len(batch))
	log.Debug("missing keys saved")

	if b.onSaved != nil {
		b.onSaved(batch)
	}
	return nil
}

// Pending returns a copy of the queued records in queue order.
func (b *MissingKeyBatcher) Pending() []MissingKey {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]MissingKey, len(b.queue))
	copy(out, b.queue)
	return out
}

// Stop cancels a scheduled flush. Queued records are kept.
func (b *MissingKeyBatcher) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
