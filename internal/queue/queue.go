package queue

import (
	"context"
	"time"
)

// Well-known queue names.
const (
	FillUpdates    = "fill-updates"
	OrderUpdates   = "order-updates"
	MakerApprovals = "maker-approvals"
	Orders         = "orders"
	Activities     = "activities"
	BlockChecks    = "block-checks"
)

// Publisher fans event-derived jobs out to downstream workers.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload interface{}) error
	// PublishDelayed schedules the payload for delivery after the given
	// delay. Used for reorg rechecks.
	PublishDelayed(ctx context.Context, queue string, payload interface{}, delay time.Duration) error
}

// Nop discards everything. Useful for backfills where downstream side
// effects are unwanted.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, string, interface{}) error { return nil }

// PublishDelayed implements Publisher.
func (Nop) PublishDelayed(context.Context, string, interface{}, time.Duration) error { return nil }
