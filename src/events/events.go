// Package events publishes domain events after successful writes.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/models"
)

const (
	FOLLOWS_QUEUE  = "follows"
	LIKES_QUEUE    = "likes"
	COMMENTS_QUEUE = "comments"
)

// bindings routes each queue to the event types it receives.
var bindings = map[string][]models.EventType{
	FOLLOWS_QUEUE:  {models.EventUserFollowed, models.EventUserUnfollowed},
	LIKES_QUEUE:    {models.EventPostLiked},
	COMMENTS_QUEUE: {models.EventPostCommented},
}

type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
	Close() error
}

// New stamps an event with a fresh id and the current time.
func New(kind models.EventType, actor, recipient primitive.ObjectID) models.Event {
	return models.Event{
		Id:        uuid.NewString(),
		Type:      kind,
		Actor:     actor,
		Recipient: recipient,
		CreatedAt: time.Now().UTC(),
	}
}

// WithPost attaches a post reference.
func WithPost(event models.Event, postID primitive.ObjectID) models.Event {
	event.Post = &postID
	return event
}

// WithComment attaches a comment reference.
func WithComment(event models.Event, commentID primitive.ObjectID) models.Event {
	event.Comment = &commentID
	return event
}

// LogPublisher writes events to the log; used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event models.Event) error {
	p.logger.Debug("event",
		zap.String("id", event.Id),
		zap.String("type", string(event.Type)),
		zap.String("actor", event.Actor.Hex()),
		zap.String("recipient", event.Recipient.Hex()),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
