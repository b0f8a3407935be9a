package service

import (
	"context"
	"strings"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/model"
	"github.com/rahat/chatterpoint/internal/repository"
)

// CommentService handles comment creation and per-post listing.
type CommentService struct {
	comments repository.CommentRepository
}

func NewCommentService(comments repository.CommentRepository) *CommentService {
	return &CommentService{comments: comments}
}

type CommentInput struct {
	PostID      string `json:"post"`
	AuthorEmail string `json:"authorEmail"`
	AuthorName  string `json:"authorName"`
	Body        string `json:"body"`
}

// Create adds a comment to a post. The insert and the post's comment-counter
// increment happen together; commenting on a vanished post is a 404 and
// leaves nothing behind.
func (s *CommentService) Create(ctx context.Context, in CommentInput) (*model.Comment, error) {
	if err := validatePostID(in.PostID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, apperror.ValidationFailed("body", "Comment body is required")
	}

	comment := &model.Comment{
		PostID:      in.PostID,
		AuthorEmail: in.AuthorEmail,
		AuthorName:  in.AuthorName,
		Body:        in.Body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByPost returns a page of one post's comments, newest first, with
// totals over that post's comments only.
func (s *CommentService) ListByPost(ctx context.Context, postID string, req PageRequest) ([]model.Comment, PageInfo, error) {
	if err := validatePostID(postID); err != nil {
		return nil, PageInfo{}, err
	}

	comments, err := s.comments.ListByPost(ctx, postID, req.listOptions(""))
	if err != nil {
		return nil, PageInfo{}, err
	}
	total, err := s.comments.CountByPost(ctx, postID)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return comments, pageInfo(req, total), nil
}
