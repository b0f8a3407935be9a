package model

import "time"

// Post is a forum post.
//
// OwnerEmail is set from the verified token claim at creation time and is the
// single source of truth for ownership checks; a client-supplied owner field
// in an edit request is ignored.
//
// Upvotes/Downvotes/Comments are denormalized counters maintained by the
// repository. Popularity (upvotes minus downvotes) is computed at query time when
// the caller asks for popularity ordering; it is never stored.
type Post struct {
	ID          string    `json:"id"          db:"id"`
	OwnerEmail  string    `json:"email"       db:"owner_email"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	Tags        []string  `json:"tags"`
	Upvotes     int       `json:"upvote"      db:"upvotes"`
	Downvotes   int       `json:"downvote"    db:"downvotes"`
	Comments    int       `json:"comments"    db:"comments"`
	Edited      bool      `json:"edited"      db:"edited"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}
