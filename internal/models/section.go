package models

import "time"

// Section is a named, weighted, timed subdivision of an exam. Weight is a
// fraction of the exam total; the sum across one exam's sections must not
// exceed 1, and the sum of durations must not exceed the exam duration.
type Section struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ExamID           uint       `gorm:"index;not null" json:"exam_id"`
	Name             string     `gorm:"size:255;not null" json:"name"`
	Description      string     `gorm:"type:text" json:"description"`
	Weight           float64    `gorm:"not null" json:"weight"`
	DurationHours    float64    `gorm:"not null" json:"duration_hours"`
	StartDate        *time.Time `json:"start_date"`
	ShuffleQuestions bool       `gorm:"not null;default:false" json:"shuffle_questions"`
	Proctored        bool       `gorm:"not null;default:false" json:"proctored"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Questions        []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions"`
}
