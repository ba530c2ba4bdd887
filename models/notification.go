package models

// Notification types produced by the server itself. Clients may store
// any other type string.
const (
	NotificationPost  = "post"
	NotificationEvent = "event"
	NotificationInfo  = "info"
)

type Notification struct {
	User      *string `json:"user" bson:"user"` // nil means broadcast to everyone
	Type      string  `json:"type" bson:"type" binding:"required"`
	Message   string  `json:"message" bson:"message" binding:"required"`
	RelatedID *string `json:"related_id" bson:"related_id"`
	IsRead    bool    `json:"is_read" bson:"is_read"`
}

// MarkReadRequest is the body of POST /api/notifications/read.
type MarkReadRequest struct {
	ID string `json:"id" binding:"required"`
}
