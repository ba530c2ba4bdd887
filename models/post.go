package models

type Post struct {
	Author   string   `json:"author" bson:"author" binding:"required"`
	Title    string   `json:"title" bson:"title" binding:"required"`
	Content  string   `json:"content" bson:"content" binding:"required"`
	Tags     []string `json:"tags" bson:"tags"`
	ImageURL *string  `json:"image_url" bson:"image_url"`
}

func NewPost() Post {
	return Post{Tags: []string{}}
}
