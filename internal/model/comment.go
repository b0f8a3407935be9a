package model

import "time"

// Comment belongs to exactly one post (PostID). Comments are deleted
// individually by moderation, or in bulk when their parent post is deleted.
type Comment struct {
	ID          string    `json:"id"          db:"id"`
	PostID      string    `json:"post"        db:"post_id"`
	AuthorEmail string    `json:"authorEmail" db:"author_email"`
	AuthorName  string    `json:"authorName"  db:"author_name"`
	Body        string    `json:"body"        db:"body"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}
