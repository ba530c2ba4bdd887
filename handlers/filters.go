package handlers

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Per-route limit caps.
const (
	maxPostLimit         = 100
	maxEventLimit        = 100
	maxNotificationLimit = 200
	maxUserLimit         = 200
)

// PostFilter matches posts whose tags contain tag exactly. An empty tag
// matches every post.
func PostFilter(tag string) bson.M {
	if tag == "" {
		return bson.M{}
	}
	return bson.M{"tags": tag}
}

// EventFilter keeps events starting at or after now when upcoming is set.
func EventFilter(upcoming bool, now time.Time) bson.M {
	if !upcoming {
		return bson.M{}
	}
	return bson.M{"start_time": bson.M{"$gte": now.UTC()}}
}

// NotificationFilter matches notifications addressed to user or broadcast
// to everyone, optionally only the unread ones.
func NotificationFilter(user string, unreadOnly bool) bson.M {
	filter := bson.M{}
	if user != "" {
		filter["$or"] = bson.A{
			bson.M{"user": user},
			bson.M{"user": nil},
		}
	}
	if unreadOnly {
		filter["is_read"] = false
	}
	return filter
}
