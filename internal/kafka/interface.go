package kafka

import (
	"context"

	"github.com/snigenigmatic/QuadChat/internal/domain"
)

// MessageProducer archives persisted messages to an event stream for
// downstream consumers (search indexing, analytics). Production failures
// never reach the sender's ack; the database is the durability boundary.
type MessageProducer interface {
	ProduceRoomMessage(ctx context.Context, msg *domain.Message) error
	ProduceDirectMessage(ctx context.Context, msg *domain.DirectMessage) error
	Close() error
}
