// Package repository declares the persistence interfaces the service layer
// depends on. The sqlite subpackage provides the concrete implementation; the
// service tests provide in-memory mocks.
package repository

import (
	"context"

	"github.com/rahat/chatterpoint/internal/model"
)

// Sort orders accepted by PostRepository.List. The default is newest-first
// (descending insertion order). Popularity is upvotes minus downvotes,
// computed in the query, not stored.
const (
	SortNewest     = "newest"
	SortPopularity = "popularity"
)

// ListOptions bounds and orders a listing query. Limit and Offset are
// expected to be normalized (positive limit, non-negative offset) by the
// caller; Sort is one of the Sort constants, or empty for the default.
type ListOptions struct {
	Limit  int
	Offset int
	Sort   string
}

// PostFilter selects a subset of posts. Zero fields mean "no restriction".
// List and Count must interpret a filter identically, so the totals a page
// reports always describe the same set the page was sliced from.
type PostFilter struct {
	Tag        string
	OwnerEmail string
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
	Count(ctx context.Context) (int, error)
	UpdateRole(ctx context.Context, id, role string) error
	AddBadge(ctx context.Context, email, badge string) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, filter PostFilter, opts ListOptions) ([]model.Post, error)
	Count(ctx context.Context, filter PostFilter) (int, error)
	Update(ctx context.Context, post *model.Post) error
	// Delete removes the post, its tag rows, and all of its comments in one
	// transaction.
	Delete(ctx context.Context, id string) error
	// Vote adjusts one counter: +1 increments upvotes, -1 increments
	// downvotes. Any other value is rejected by the service before this call.
	Vote(ctx context.Context, id string, vote int) error
}

type CommentRepository interface {
	// Create inserts the comment and increments the parent post's comment
	// counter in one transaction; if the post does not exist the insert is
	// rolled back and ErrNotFound is returned.
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string, opts ListOptions) ([]model.Comment, error)
	CountByPost(ctx context.Context, postID string) (int, error)
	Count(ctx context.Context) (int, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	List(ctx context.Context, opts ListOptions) ([]model.Report, error)
	Count(ctx context.Context) (int, error)
	// Resolve deletes the report and, when deleteComment is set, the
	// referenced comment (decrementing its post's counter), in one
	// transaction.
	Resolve(ctx context.Context, reportID, commentID string, deleteComment bool) error
}

type AnnouncementRepository interface {
	Create(ctx context.Context, a *model.Announcement) error
	List(ctx context.Context, opts ListOptions) ([]model.Announcement, error)
	Count(ctx context.Context) (int, error)
}

type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	List(ctx context.Context) ([]model.Tag, error)
}
