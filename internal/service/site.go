package service

import (
	"context"
	"strings"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/model"
	"github.com/rahat/chatterpoint/internal/repository"
)

// SiteService covers the site-wide surfaces: global stats, announcements,
// and the curated tag list.
type SiteService struct {
	users         repository.UserRepository
	posts         repository.PostRepository
	comments      repository.CommentRepository
	announcements repository.AnnouncementRepository
	tags          repository.TagRepository
}

func NewSiteService(
	users repository.UserRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	announcements repository.AnnouncementRepository,
	tags repository.TagRepository,
) *SiteService {
	return &SiteService{
		users:         users,
		posts:         posts,
		comments:      comments,
		announcements: announcements,
		tags:          tags,
	}
}

// Stats returns the global user, post, and comment counts.
func (s *SiteService) Stats(ctx context.Context) (*model.Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.Count(ctx, repository.PostFilter{})
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Stats{Users: users, Posts: posts, Comments: comments}, nil
}

type AnnouncementInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CreateAnnouncement publishes an announcement authored by the
// authenticated caller.
func (s *SiteService) CreateAnnouncement(ctx context.Context, authorEmail string, in AnnouncementInput) (*model.Announcement, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.ValidationFailed("title", "Title is required")
	}

	a := &model.Announcement{
		AuthorEmail: authorEmail,
		Title:       strings.TrimSpace(in.Title),
		Body:        in.Body,
	}
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAnnouncements returns a page of announcements, newest first.
func (s *SiteService) ListAnnouncements(ctx context.Context, req PageRequest) ([]model.Announcement, PageInfo, error) {
	announcements, err := s.announcements.List(ctx, req.listOptions(""))
	if err != nil {
		return nil, PageInfo{}, err
	}
	total, err := s.announcements.Count(ctx)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return announcements, pageInfo(req, total), nil
}

// CreateTag adds a name to the curated tag list. Names are unique.
func (s *SiteService) CreateTag(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "Tag name is required")
	}

	tag := &model.Tag{Name: name}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// ListTags returns the whole curated tag list alphabetically.
func (s *SiteService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.tags.List(ctx)
}
