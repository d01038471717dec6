package models

import (
	"errors"
	"time"
)

// ExamStatus is the lifecycle state of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "draft"
	ExamStatusPublished ExamStatus = "published"
	ExamStatusLive      ExamStatus = "live"
	ExamStatusArchived  ExamStatus = "archived"
)

// ErrTransitionNotImplemented is returned for status transitions the platform
// does not support, such as moving anything back to draft.
var ErrTransitionNotImplemented = errors.New("status transition not implemented yet")

// ValidExamStatus reports whether the given string names a known status.
func ValidExamStatus(status string) bool {
	switch ExamStatus(status) {
	case ExamStatusDraft, ExamStatusPublished, ExamStatusLive, ExamStatusArchived:
		return true
	default:
		return false
	}
}

// CanTransition reports whether an exam may move from one status to another.
// Publishing is one-directional except for the published/archived pair, which
// can be re-opened.
func CanTransition(from, to ExamStatus) bool {
	switch from {
	case ExamStatusDraft:
		return to == ExamStatusPublished
	case ExamStatusPublished:
		return to == ExamStatusLive || to == ExamStatusArchived
	case ExamStatusLive:
		return to == ExamStatusArchived
	case ExamStatusArchived:
		return to == ExamStatusPublished
	default:
		return false
	}
}

// Exam is one assessment definition owned by a recruiter.
type Exam struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	Title                 string     `gorm:"size:255;not null" json:"title"`
	JobLevel              string     `gorm:"size:64" json:"job_level"`
	Description           string     `gorm:"type:text" json:"description"`
	DurationHours         float64    `gorm:"not null" json:"duration_hours"`
	SubmissionWindowHours float64    `gorm:"not null" json:"submission_window_hours"`
	ShowScore             bool       `gorm:"not null;default:false" json:"show_score"`
	IsPublic              bool       `gorm:"not null;default:false" json:"is_public"`
	Status                ExamStatus `gorm:"size:16;not null;default:draft" json:"status"`
	OwnerID               uint       `gorm:"index" json:"owner_id"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	Sections              []Section  `gorm:"constraint:OnDelete:CASCADE" json:"sections"`
}

// Editable reports whether the exam still accepts mutations. Publishing locks
// further edit and delete.
func (e Exam) Editable() bool {
	return e.Status == ExamStatusDraft
}

// AcceptsInvitations reports whether candidates may currently be invited.
func (e Exam) AcceptsInvitations() bool {
	return e.Status == ExamStatusPublished || e.Status == ExamStatusLive
}
