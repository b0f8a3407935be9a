package service

import (
	"context"

	"github.com/rs/xid"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/model"
	"github.com/rahat/chatterpoint/internal/repository"
)

// In-memory repository fakes. They store records in maps, generate real xid
// identifiers, and record the filters they were queried with so tests can
// assert that List and Count saw the same one.

type mockUserRepo struct {
	byEmail    map[string]*model.User
	byID       map[string]*model.User
	roleSet    map[string]string
	badgeCalls []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byEmail: make(map[string]*model.User),
		byID:    make(map[string]*model.User),
		roleSet: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = xid.New().String()
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("User")
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("User")
}

func (m *mockUserRepo) List(_ context.Context, opts repository.ListOptions) ([]model.User, error) {
	users := make([]model.User, 0, len(m.byID))
	for _, u := range m.byID {
		users = append(users, *u)
	}
	return users, nil
}

func (m *mockUserRepo) Count(_ context.Context) (int, error) {
	return len(m.byID), nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id, role string) error {
	if _, ok := m.byID[id]; !ok {
		return apperror.NotFound("User")
	}
	m.roleSet[id] = role
	return nil
}

func (m *mockUserRepo) AddBadge(_ context.Context, email, badge string) error {
	if _, ok := m.byEmail[email]; !ok {
		return apperror.NotFound("User")
	}
	m.badgeCalls = append(m.badgeCalls, email+":"+badge)
	return nil
}

type mockPostRepo struct {
	posts map[string]*model.Post

	listFilter  *repository.PostFilter
	listOpts    *repository.ListOptions
	countFilter *repository.PostFilter

	voteCalls []int
	deleted   []string
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]*model.Post)}
}

func (m *mockPostRepo) add(owner, title string) *model.Post {
	post := &model.Post{ID: xid.New().String(), OwnerEmail: owner, Title: title}
	m.posts[post.ID] = post
	return post
}

func (m *mockPostRepo) Create(_ context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	m.posts[post.ID] = post
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	if p, ok := m.posts[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, apperror.NotFound("Post")
}

func (m *mockPostRepo) List(_ context.Context, filter repository.PostFilter, opts repository.ListOptions) ([]model.Post, error) {
	m.listFilter = &filter
	m.listOpts = &opts
	posts := make([]model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		posts = append(posts, *p)
	}
	return posts, nil
}

func (m *mockPostRepo) Count(_ context.Context, filter repository.PostFilter) (int, error) {
	m.countFilter = &filter
	return len(m.posts), nil
}

func (m *mockPostRepo) Update(_ context.Context, post *model.Post) error {
	if _, ok := m.posts[post.ID]; !ok {
		return apperror.NotFound("Post")
	}
	clone := *post
	m.posts[post.ID] = &clone
	return nil
}

func (m *mockPostRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return apperror.NotFound("Post")
	}
	delete(m.posts, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockPostRepo) Vote(_ context.Context, id string, vote int) error {
	if _, ok := m.posts[id]; !ok {
		return apperror.NotFound("Post")
	}
	m.voteCalls = append(m.voteCalls, vote)
	return nil
}

type mockCommentRepo struct {
	comments map[string]*model.Comment
	missing  bool // simulate a vanished parent post
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[string]*model.Comment)}
}

func (m *mockCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	if m.missing {
		return apperror.NotFound("Post")
	}
	comment.ID = xid.New().String()
	m.comments[comment.ID] = comment
	return nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id string) (*model.Comment, error) {
	if c, ok := m.comments[id]; ok {
		return c, nil
	}
	return nil, apperror.NotFound("Comment")
}

func (m *mockCommentRepo) ListByPost(_ context.Context, postID string, opts repository.ListOptions) ([]model.Comment, error) {
	comments := []model.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	return comments, nil
}

func (m *mockCommentRepo) CountByPost(_ context.Context, postID string) (int, error) {
	n := 0
	for _, c := range m.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (m *mockCommentRepo) Count(_ context.Context) (int, error) {
	return len(m.comments), nil
}

type resolveCall struct {
	reportID      string
	commentID     string
	deleteComment bool
}

type mockReportRepo struct {
	reports  map[string]*model.Report
	resolved []resolveCall
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{reports: make(map[string]*model.Report)}
}

func (m *mockReportRepo) Create(_ context.Context, report *model.Report) error {
	report.ID = xid.New().String()
	m.reports[report.ID] = report
	return nil
}

func (m *mockReportRepo) GetByID(_ context.Context, id string) (*model.Report, error) {
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return nil, apperror.NotFound("Report")
}

func (m *mockReportRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Report, error) {
	reports := make([]model.Report, 0, len(m.reports))
	for _, r := range m.reports {
		reports = append(reports, *r)
	}
	return reports, nil
}

func (m *mockReportRepo) Count(_ context.Context) (int, error) {
	return len(m.reports), nil
}

func (m *mockReportRepo) Resolve(_ context.Context, reportID, commentID string, deleteComment bool) error {
	if _, ok := m.reports[reportID]; !ok {
		return apperror.NotFound("Report")
	}
	delete(m.reports, reportID)
	m.resolved = append(m.resolved, resolveCall{reportID, commentID, deleteComment})
	return nil
}

type mockAnnouncementRepo struct {
	announcements []*model.Announcement
}

func (m *mockAnnouncementRepo) Create(_ context.Context, a *model.Announcement) error {
	a.ID = xid.New().String()
	m.announcements = append(m.announcements, a)
	return nil
}

func (m *mockAnnouncementRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Announcement, error) {
	out := make([]model.Announcement, 0, len(m.announcements))
	for _, a := range m.announcements {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAnnouncementRepo) Count(_ context.Context) (int, error) {
	return len(m.announcements), nil
}

type mockTagRepo struct {
	tags []*model.Tag
}

func (m *mockTagRepo) Create(_ context.Context, tag *model.Tag) error {
	for _, t := range m.tags {
		if t.Name == tag.Name {
			return apperror.Conflict("name", "Tag already exists")
		}
	}
	tag.ID = xid.New().String()
	m.tags = append(m.tags, tag)
	return nil
}

func (m *mockTagRepo) List(_ context.Context) ([]model.Tag, error) {
	out := make([]model.Tag, 0, len(m.tags))
	for _, t := range m.tags {
		out = append(out, *t)
	}
	return out, nil
}

// Interface conformance for the fakes.
var (
	_ repository.UserRepository         = (*mockUserRepo)(nil)
	_ repository.PostRepository         = (*mockPostRepo)(nil)
	_ repository.CommentRepository      = (*mockCommentRepo)(nil)
	_ repository.ReportRepository       = (*mockReportRepo)(nil)
	_ repository.AnnouncementRepository = (*mockAnnouncementRepo)(nil)
	_ repository.TagRepository          = (*mockTagRepo)(nil)
)
