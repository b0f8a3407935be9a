package model

import "time"

// Report flags a comment for moderator review. It references the comment (and
// its post) by ID rather than embedding either. Resolution either deletes
// just the report, or the reported comment together with the report.
type Report struct {
	ID        string    `json:"id"        db:"id"`
	CommentID string    `json:"commentId" db:"comment_id"`
	PostID    string    `json:"postId"    db:"post_id"`
	Reason    string    `json:"reason"    db:"reason"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Report resolution actions accepted by DELETE /report.
const (
	ReportActionReport  = "report"  // delete only the report record
	ReportActionComment = "comment" // delete the reported comment and the report
)
