package service

import (
	"context"
	"strings"

	"github.com/rs/xid"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/model"
	"github.com/rahat/chatterpoint/internal/repository"
)

// PostService handles post creation, listing, editing, deletion, and voting.
// Ownership is decided by the verified token email against the stored owner,
// never by anything the client sends in a body.
type PostService struct {
	posts repository.PostRepository
}

func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

// validatePostID rejects malformed IDs before any store call, so a garbage
// ID is a 400, not a 404.
func validatePostID(id string) error {
	if _, err := xid.FromString(id); err != nil {
		return apperror.ValidationFailed("id", "Invalid Post ID format")
	}
	return nil
}

type PostInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Create creates a post owned by the authenticated caller.
func (s *PostService) Create(ctx context.Context, ownerEmail string, in PostInput) (*model.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.ValidationFailed("title", "Title is required")
	}

	post := &model.Post{
		OwnerEmail:  ownerEmail,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Tags:        in.Tags,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	if err := validatePostID(id); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id)
}

// ListInput selects and orders the public post feed. Tag narrows the feed to
// posts carrying that tag; Sort may be "popularity" for a net-vote ordering,
// anything else means newest first.
type ListInput struct {
	PageRequest
	Tag  string
	Sort string
}

// List returns a page of the feed. The totals describe the same filtered set
// as the page: asking for tag=go reports how many go posts exist, not how
// many posts exist.
func (s *PostService) List(ctx context.Context, in ListInput) ([]model.Post, PageInfo, error) {
	sort := repository.SortNewest
	if in.Sort == repository.SortPopularity {
		sort = repository.SortPopularity
	}
	filter := repository.PostFilter{Tag: strings.TrimSpace(in.Tag)}

	posts, err := s.posts.List(ctx, filter, in.listOptions(sort))
	if err != nil {
		return nil, PageInfo{}, err
	}
	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return posts, pageInfo(in.PageRequest, total), nil
}

// ListByOwner returns a page of one author's posts, newest first, with
// totals over that author's posts only.
func (s *PostService) ListByOwner(ctx context.Context, email string, req PageRequest) ([]model.Post, PageInfo, error) {
	filter := repository.PostFilter{OwnerEmail: email}

	posts, err := s.posts.List(ctx, filter, req.listOptions(repository.SortNewest))
	if err != nil {
		return nil, PageInfo{}, err
	}
	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return posts, pageInfo(req, total), nil
}

// CountByOwner returns how many posts the given author has.
func (s *PostService) CountByOwner(ctx context.Context, email string) (int, error) {
	return s.posts.Count(ctx, repository.PostFilter{OwnerEmail: email})
}

// Update edits a post's title, description, and tags, and marks it edited.
// Only the stored owner may edit; anyone else gets ErrForbidden and the post
// is untouched.
func (s *PostService) Update(ctx context.Context, callerEmail, id string, in PostInput) (*model.Post, error) {
	if err := validatePostID(id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.ValidationFailed("title", "Title is required")
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.OwnerEmail != callerEmail {
		return nil, apperror.Forbidden("You can only edit your own posts")
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Description = in.Description
	post.Tags = in.Tags
	post.Edited = true

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post and all of its comments. Only the stored owner may
// delete.
func (s *PostService) Delete(ctx context.Context, callerEmail, id string) error {
	if err := validatePostID(id); err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.OwnerEmail != callerEmail {
		return apperror.Forbidden("You can only delete your own posts")
	}

	return s.posts.Delete(ctx, id)
}

// Vote applies a single vote to a post. The only accepted values are +1
// (upvote) and -1 (downvote); anything else leaves the counters unchanged.
// Voting needs no account and is not tracked per caller, so repeat votes
// accumulate.
func (s *PostService) Vote(ctx context.Context, id string, vote int) error {
	if err := validatePostID(id); err != nil {
		return err
	}
	if vote != 1 && vote != -1 {
		return apperror.ValidationFailed("vote", "Vote must be +1 or -1")
	}
	return s.posts.Vote(ctx, id, vote)
}
