package service

import (
	"context"
	"strings"

	"github.com/rs/xid"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/model"
	"github.com/rahat/chatterpoint/internal/repository"
)

// ReportService handles submitting comment reports and resolving them.
type ReportService struct {
	reports repository.ReportRepository
}

func NewReportService(reports repository.ReportRepository) *ReportService {
	return &ReportService{reports: reports}
}

type ReportInput struct {
	CommentID string `json:"commentId"`
	PostID    string `json:"postId"`
	Reason    string `json:"reason"`
}

// Submit files a report against a comment.
func (s *ReportService) Submit(ctx context.Context, in ReportInput) (*model.Report, error) {
	if _, err := xid.FromString(in.CommentID); err != nil {
		return nil, apperror.ValidationFailed("commentId", "Invalid Comment ID format")
	}
	if err := validatePostID(in.PostID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, apperror.ValidationFailed("reason", "Reason is required")
	}

	report := &model.Report{
		CommentID: in.CommentID,
		PostID:    in.PostID,
		Reason:    in.Reason,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// List returns a page of open reports, newest first.
func (s *ReportService) List(ctx context.Context, req PageRequest) ([]model.Report, PageInfo, error) {
	reports, err := s.reports.List(ctx, req.listOptions(""))
	if err != nil {
		return nil, PageInfo{}, err
	}
	total, err := s.reports.Count(ctx)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return reports, pageInfo(req, total), nil
}

// Resolve closes a report. Action "report" dismisses it; action "comment"
// also deletes the reported comment. All IDs are validated before anything
// is mutated, and both paths run in a single transaction.
func (s *ReportService) Resolve(ctx context.Context, reportID, commentID, action string) error {
	if action != model.ReportActionReport && action != model.ReportActionComment {
		return apperror.ValidationFailed("action", "Action must be \"report\" or \"comment\"")
	}
	if _, err := xid.FromString(reportID); err != nil {
		return apperror.ValidationFailed("id", "Invalid Report ID format")
	}
	deleteComment := action == model.ReportActionComment
	if deleteComment {
		if _, err := xid.FromString(commentID); err != nil {
			return apperror.ValidationFailed("commentId", "Invalid Comment ID format")
		}
	}
	return s.reports.Resolve(ctx, reportID, commentID, deleteComment)
}
