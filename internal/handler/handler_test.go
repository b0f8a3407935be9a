package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rahat/chatterpoint/internal/auth"
	"github.com/rahat/chatterpoint/internal/repository/sqlite"
	"github.com/rahat/chatterpoint/internal/service"
)

// env holds a fully wired handler stack over an in-memory database, with the
// routes declared the same way the real router declares them.
type env struct {
	router chi.Router
	tokens *auth.TokenService
	db     *sqlite.DB
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New(:memory:) error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := NewUserHandler(service.NewUserService(db.Users(), auth.NewPasswordServiceForTest(4)), logger)
	posts := NewPostHandler(service.NewPostService(db.Posts()), logger)
	comments := NewCommentHandler(service.NewCommentService(db.Comments()), logger)
	reports := NewReportHandler(service.NewReportService(db.Reports()), logger)
	site := NewSiteHandler(service.NewSiteService(db.Users(), db.Posts(), db.Comments(), db.Announcements(), db.Tags()), logger)
	token := NewTokenHandler(tokens, logger)

	requireAuth := auth.RequireAuth(tokens)

	r := chi.NewRouter()
	r.Post("/users/register", users.Register)
	r.Get("/user/{email}", users.GetByEmail)
	r.Get("/users", users.List)
	r.With(requireAuth).Put("/user/update-role/{id}", users.UpdateRole)
	r.Put("/update-badges", users.AddBadge)
	r.With(requireAuth).Post("/posts", posts.Create)
	r.Get("/posts", posts.List)
	r.With(requireAuth).Get("/my-posts/{email}", posts.ListMine)
	r.Get("/post/{id}", posts.Get)
	r.With(requireAuth).Put("/post/{id}", posts.Update)
	r.With(requireAuth).Delete("/post/{id}", posts.Delete)
	r.Post("/post/{id}/vote", posts.Vote)
	r.With(requireAuth).Get("/post-count/{email}", posts.CountByOwner)
	r.Post("/comment", comments.Create)
	r.Get("/comments/{post}", comments.ListByPost)
	r.Post("/report", reports.Submit)
	r.Get("/report", reports.List)
	r.Delete("/report", reports.Resolve)
	r.With(requireAuth).Get("/stats", site.Stats)
	r.With(requireAuth).Post("/announcements", site.CreateAnnouncement)
	r.Get("/announcements", site.ListAnnouncements)
	r.With(requireAuth).Post("/tags", site.CreateTag)
	r.Get("/tags", site.ListTags)
	r.Post("/jwt", token.Issue)

	return &env{router: r, tokens: tokens, db: db}
}

// do performs a request against the router. A non-empty token goes in the
// Authorization header.
func (e *env) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) tokenFor(t *testing.T, email string) string {
	t.Helper()
	token, err := e.tokens.Issue(email)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return body
}

func TestRegister(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/users/register", "",
		`{"name":"Rahat","email":"rahat@y.com","password":"s3cret"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	user, _ := body["user"].(map[string]any)
	if user == nil || user["email"] != "rahat@y.com" {
		t.Errorf("body = %v, want the created user", body)
	}
	if _, leaked := user["password"]; leaked {
		t.Error("response must not carry a password field")
	}

	// Same email again is a 400 with the exact duplicate message.
	rec = e.do(t, http.MethodPost, "/users/register", "",
		`{"name":"Imposter","email":"rahat@y.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want 400", rec.Code)
	}
	if msg := decodeBody(t, rec)["message"]; msg != "Email already exists" {
		t.Errorf("message = %v, want %q", msg, "Email already exists")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/user/ghost@y.com", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPostLifecycle(t *testing.T) {
	e := newEnv(t)
	owner := e.tokenFor(t, "owner@y.com")

	// Creating without a token is rejected before the handler runs.
	rec := e.do(t, http.MethodPost, "/posts", "", `{"title":"hello"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create status = %d, want 401", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/posts", owner, `{"title":"hello","tags":["go"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201, body %s", rec.Code, rec.Body)
	}
	post, _ := decodeBody(t, rec)["post"].(map[string]any)
	if post["email"] != "owner@y.com" {
		t.Errorf("owner = %v, want the token email", post["email"])
	}
	id, _ := post["id"].(string)

	// A stranger cannot edit it.
	stranger := e.tokenFor(t, "stranger@y.com")
	rec = e.do(t, http.MethodPut, "/post/"+id, stranger, `{"title":"hijacked"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger edit status = %d, want 403", rec.Code)
	}

	// The owner can.
	rec = e.do(t, http.MethodPut, "/post/"+id, owner, `{"title":"revised"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner edit status = %d, want 200, body %s", rec.Code, rec.Body)
	}
	edited, _ := decodeBody(t, rec)["post"].(map[string]any)
	if edited["edited"] != true {
		t.Error("edit must set the edited flag")
	}

	// Delete, then the post is gone.
	rec = e.do(t, http.MethodDelete, "/post/"+id, owner, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}
	rec = e.do(t, http.MethodGet, "/post/"+id, "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", rec.Code)
	}
}

func TestGetPost_MalformedID(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/post/not-an-id", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := decodeBody(t, rec)["message"]; msg != "Invalid Post ID format" {
		t.Errorf("message = %v, want %q", msg, "Invalid Post ID format")
	}
}

func TestVote(t *testing.T) {
	e := newEnv(t)
	owner := e.tokenFor(t, "owner@y.com")

	rec := e.do(t, http.MethodPost, "/posts", owner, `{"title":"votable"}`)
	post, _ := decodeBody(t, rec)["post"].(map[string]any)
	id, _ := post["id"].(string)

	// Voting needs no token.
	rec = e.do(t, http.MethodPost, "/post/"+id+"/vote", "", `{"vote":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("vote status = %d, want 200, body %s", rec.Code, rec.Body)
	}

	rec = e.do(t, http.MethodPost, "/post/"+id+"/vote", "", `{"vote":5}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range vote status = %d, want 400", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/post/"+id, "", "")
	got := decodeBody(t, rec)
	if got["upvote"] != float64(1) || got["downvote"] != float64(0) {
		t.Errorf("counters = %v/%v, want 1/0", got["upvote"], got["downvote"])
	}
}

func TestPostList_FilteredTotals(t *testing.T) {
	e := newEnv(t)
	owner := e.tokenFor(t, "owner@y.com")

	e.do(t, http.MethodPost, "/posts", owner, `{"title":"a","tags":["go"]}`)
	e.do(t, http.MethodPost, "/posts", owner, `{"title":"b","tags":["go"]}`)
	e.do(t, http.MethodPost, "/posts", owner, `{"title":"c","tags":["rust"]}`)

	rec := e.do(t, http.MethodGet, "/posts?tag=go&limit=1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["totalCount"] != float64(2) {
		t.Errorf("totalCount = %v, want 2 (the filtered set, not the table)", body["totalCount"])
	}
	if body["totalPages"] != float64(2) {
		t.Errorf("totalPages = %v, want 2", body["totalPages"])
	}
}

func TestCommentFlow(t *testing.T) {
	e := newEnv(t)
	owner := e.tokenFor(t, "owner@y.com")

	rec := e.do(t, http.MethodPost, "/posts", owner, `{"title":"thread"}`)
	post, _ := decodeBody(t, rec)["post"].(map[string]any)
	id, _ := post["id"].(string)

	rec = e.do(t, http.MethodPost, "/comment", "",
		`{"post":"`+id+`","authorName":"B","body":"nice"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment status = %d, want 201, body %s", rec.Code, rec.Body)
	}

	rec = e.do(t, http.MethodGet, "/comments/"+id, "", "")
	body := decodeBody(t, rec)
	if body["totalCount"] != float64(1) {
		t.Errorf("totalCount = %v, want 1", body["totalCount"])
	}

	// The post's denormalized counter moved too.
	rec = e.do(t, http.MethodGet, "/post/"+id, "", "")
	if got := decodeBody(t, rec); got["comments"] != float64(1) {
		t.Errorf("post comments = %v, want 1", got["comments"])
	}
}

func TestReportFlow(t *testing.T) {
	e := newEnv(t)
	owner := e.tokenFor(t, "owner@y.com")

	rec := e.do(t, http.MethodPost, "/posts", owner, `{"title":"thread"}`)
	post, _ := decodeBody(t, rec)["post"].(map[string]any)
	postID, _ := post["id"].(string)

	rec = e.do(t, http.MethodPost, "/comment", "", `{"post":"`+postID+`","body":"rude"}`)
	comment, _ := decodeBody(t, rec)["comment"].(map[string]any)
	commentID, _ := comment["id"].(string)

	rec = e.do(t, http.MethodPost, "/report", "",
		`{"commentId":"`+commentID+`","postId":"`+postID+`","reason":"abusive"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("report status = %d, want 201, body %s", rec.Code, rec.Body)
	}
	report, _ := decodeBody(t, rec)["report"].(map[string]any)
	reportID, _ := report["id"].(string)

	// Resolving with action=comment removes the comment as well.
	rec = e.do(t, http.MethodDelete,
		"/report?id="+reportID+"&commentId="+commentID+"&action=comment", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, want 200, body %s", rec.Code, rec.Body)
	}

	rec = e.do(t, http.MethodGet, "/comments/"+postID, "", "")
	if body := decodeBody(t, rec); body["totalCount"] != float64(0) {
		t.Errorf("comments after resolution = %v, want 0", body["totalCount"])
	}

	rec = e.do(t, http.MethodDelete, "/report?id="+reportID+"&action=report", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("re-resolve status = %d, want 404", rec.Code)
	}
}

func TestStats_RequiresAuth(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/stats", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/stats", e.tokenFor(t, "admin@y.com"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	if body["users"] != float64(0) || body["posts"] != float64(0) {
		t.Errorf("stats = %v, want zero counts on an empty site", body)
	}
}

func TestTokenIssue(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/jwt", "", `{"email":"anyone@y.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}
	token, _ := decodeBody(t, rec)["token"].(string)
	if token == "" {
		t.Fatal("no token in response")
	}
	email, err := e.tokens.Verify(token)
	if err != nil || email != "anyone@y.com" {
		t.Errorf("Verify() = (%q, %v), want the issued email back", email, err)
	}

	rec = e.do(t, http.MethodPost, "/jwt", "", `{"email":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank email status = %d, want 400", rec.Code)
	}
}

func TestBadges(t *testing.T) {
	e := newEnv(t)

	e.do(t, http.MethodPost, "/users/register", "", `{"name":"R","email":"rahat@y.com"}`)

	rec := e.do(t, http.MethodPut, "/update-badges", "",
		`{"email":"rahat@y.com","badge":"gold"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}

	rec = e.do(t, http.MethodGet, "/user/rahat@y.com", "", "")
	user := decodeBody(t, rec)
	badges, _ := user["badges"].([]any)
	if len(badges) != 1 || badges[0] != "gold" {
		t.Errorf("badges = %v, want [gold]", badges)
	}
}

func TestDecodeJSON_BadBody(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/users/register", "", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
