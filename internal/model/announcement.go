package model

import "time"

// Announcement is an admin-authored broadcast, append-only and publicly
// listable.
type Announcement struct {
	ID          string    `json:"id"          db:"id"`
	AuthorEmail string    `json:"authorEmail" db:"author_email"`
	Title       string    `json:"title"       db:"title"`
	Body        string    `json:"body"        db:"body"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}

// Tag is an entry in the curated tag list shown to post authors. The tags on
// a post are free strings; this list only drives the picker UI.
type Tag struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Stats holds the global record counts returned by GET /stats.
type Stats struct {
	Users    int `json:"users"`
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
}
