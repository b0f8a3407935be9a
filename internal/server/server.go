// Package server wires the router and owns the HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rahat/chatterpoint/internal/auth"
	"github.com/rahat/chatterpoint/internal/config"
	"github.com/rahat/chatterpoint/internal/handler"
	"github.com/rahat/chatterpoint/internal/middleware"
	"github.com/rahat/chatterpoint/internal/payment"
	"github.com/rahat/chatterpoint/internal/repository/sqlite"
	"github.com/rahat/chatterpoint/internal/service"
)

// Server is the HTTP server plus the resources it owns. Close the database
// through Shutdown, not directly.
type Server struct {
	cfg    config.Config
	logger *slog.Logger
	http   *http.Server
	db     *sqlite.DB
}

// New builds the full application: store, services, handlers, and router.
func New(cfg config.Config, logger *slog.Logger, db *sqlite.DB, payments payment.Provider) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	userSvc := service.NewUserService(db.Users(), auth.NewPasswordService())
	postSvc := service.NewPostService(db.Posts())
	commentSvc := service.NewCommentService(db.Comments())
	reportSvc := service.NewReportService(db.Reports())
	siteSvc := service.NewSiteService(db.Users(), db.Posts(), db.Comments(), db.Announcements(), db.Tags())

	users := handler.NewUserHandler(userSvc, logger)
	posts := handler.NewPostHandler(postSvc, logger)
	comments := handler.NewCommentHandler(commentSvc, logger)
	reports := handler.NewReportHandler(reportSvc, logger)
	site := handler.NewSiteHandler(siteSvc, logger)
	token := handler.NewTokenHandler(tokens, logger)
	pay := handler.NewPaymentHandler(payments, logger)

	router := newRouter(routerDeps{
		logger:   logger,
		origins:  cfg.AllowedOrigins,
		tokens:   tokens,
		users:    users,
		posts:    posts,
		comments: comments,
		reports:  reports,
		site:     site,
		token:    token,
		payment:  pay,
	})

	return &Server{
		cfg:    cfg,
		logger: logger,
		db:     db,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}, nil
}

type routerDeps struct {
	logger   *slog.Logger
	origins  []string
	tokens   *auth.TokenService
	users    *handler.UserHandler
	posts    *handler.PostHandler
	comments *handler.CommentHandler
	reports  *handler.ReportHandler
	site     *handler.SiteHandler
	token    *handler.TokenHandler
	payment  *handler.PaymentHandler
}

// newRouter declares every route. Authentication is route-declared: the
// protected routes opt in with requireAuth, everything else is public.
func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	requireAuth := auth.RequireAuth(d.tokens)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ChatterPoint API"))
	})

	// Users.
	r.Post("/users/register", d.users.Register)
	r.Get("/user/{email}", d.users.GetByEmail)
	r.Get("/users", d.users.List)
	r.With(requireAuth).Put("/user/update-role/{id}", d.users.UpdateRole)
	r.Put("/update-badges", d.users.AddBadge)

	// Posts.
	r.With(requireAuth).Post("/posts", d.posts.Create)
	r.Get("/posts", d.posts.List)
	r.With(requireAuth).Get("/my-posts/{email}", d.posts.ListMine)
	r.Get("/post/{id}", d.posts.Get)
	r.With(requireAuth).Put("/post/{id}", d.posts.Update)
	r.With(requireAuth).Delete("/post/{id}", d.posts.Delete)
	r.Post("/post/{id}/vote", d.posts.Vote)
	r.With(requireAuth).Get("/post-count/{email}", d.posts.CountByOwner)

	// Comments.
	r.Post("/comment", d.comments.Create)
	r.Get("/comments/{post}", d.comments.ListByPost)

	// Reports.
	r.Post("/report", d.reports.Submit)
	r.Get("/report", d.reports.List)
	r.Delete("/report", d.reports.Resolve)

	// Site.
	r.With(requireAuth).Get("/stats", d.site.Stats)
	r.With(requireAuth).Post("/announcements", d.site.CreateAnnouncement)
	r.Get("/announcements", d.site.ListAnnouncements)
	r.With(requireAuth).Post("/tags", d.site.CreateTag)
	r.Get("/tags", d.site.ListTags)

	// Tokens and payments.
	r.Post("/jwt", d.token.Issue)
	r.Post("/create-payment-intent", d.payment.CreateIntent)

	return r
}

// Start runs the server until the context is canceled, then shuts down
// gracefully and closes the database.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.db.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	if closeErr := s.db.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
