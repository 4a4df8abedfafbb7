package posts

import "time"

// Post is a community post owned by the user who created it.
type Post struct {
	ID         string    `json:"id" bson:"_id"`
	AuthorID   string    `json:"authorId" bson:"authorId"`
	AuthorName string    `json:"authorName" bson:"authorName"`
	Title      string    `json:"title" bson:"title"`
	Content    string    `json:"content,omitempty" bson:"content,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}
