package handlers

import (
	"context"
	"fmt"

	"community/document"
	"community/models"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier creates the broadcast notification that follows a new post or
// event.
type Notifier struct {
	store Store
	feed  Publisher
}

func NewNotifier(store Store, feed Publisher) *Notifier {
	return &Notifier{store: store, feed: feed}
}

// Announce stores one broadcast notification of the given kind pointing at
// relatedID. The entity it refers to is never rolled back when this fails.
func (n *Notifier) Announce(ctx context.Context, kind, title string, relatedID primitive.ObjectID) (primitive.ObjectID, error) {
	related := relatedID.Hex()
	notif := models.Notification{
		User:      nil,
		Type:      kind,
		Message:   fmt.Sprintf("New %s: %s", kind, title),
		RelatedID: &related,
		IsRead:    false,
	}

	id, err := n.store.Insert(ctx, models.NotificationCollection, notif)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("announce %s %s: %w", kind, related, err)
	}

	log.Debug().Str("kind", kind).Str("related_id", related).Str("id", id.Hex()).Msg("broadcast notification created")

	if n.feed != nil {
		n.feed.PublishNotification(nil, document.Mapping{
			{Key: "_id", Value: document.String(id.Hex())},
			{Key: "user", Value: document.Null{}},
			{Key: "type", Value: document.String(notif.Type)},
			{Key: "message", Value: document.String(notif.Message)},
			{Key: "related_id", Value: document.String(related)},
			{Key: "is_read", Value: document.Bool(false)},
		})
	}
	return id, nil
}
