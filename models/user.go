package models

// Collection names, one per entity kind.
const (
	UserCollection         = "user"
	PostCollection         = "post"
	EventCollection        = "event"
	NotificationCollection = "notification"
)

type User struct {
	Username    string  `json:"username" bson:"username" binding:"required"`
	DisplayName *string `json:"display_name" bson:"display_name"`
	AvatarURL   *string `json:"avatar_url" bson:"avatar_url"`
	Bio         *string `json:"bio" bson:"bio"`
	IsActive    bool    `json:"is_active" bson:"is_active"`
}

// NewUser returns a User with its defaults applied.
func NewUser() User {
	return User{IsActive: true}
}
