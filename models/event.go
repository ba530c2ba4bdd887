package models

import "time"

// Event has no check that EndTime follows StartTime.
type Event struct {
	Organizer   string     `json:"organizer" bson:"organizer" binding:"required"`
	Title       string     `json:"title" bson:"title" binding:"required"`
	Description string     `json:"description" bson:"description" binding:"required"`
	Location    string     `json:"location" bson:"location" binding:"required"`
	StartTime   time.Time  `json:"start_time" bson:"start_time" binding:"required"`
	EndTime     *time.Time `json:"end_time" bson:"end_time"`
}

func NewEvent() Event {
	return Event{}
}
