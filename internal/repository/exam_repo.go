package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/provaboard/prova-api/internal/models"
)

// ExamRelations names the child collections a FindOne call may preload.
type ExamRelations struct {
	Sections  bool
	Questions bool
}

// ParseExamRelations reads the comma-separated relations query parameter the
// dashboard sends, e.g. "sections,questions".
func ParseExamRelations(raw string) ExamRelations {
	var relations ExamRelations
	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "sections":
			relations.Sections = true
		case "questions":
			relations.Questions = true
		}
	}
	return relations
}

// ExamRepository defines persistence operations for exams.
type ExamRepository interface {
	List(ctx context.Context, ownerID uint) ([]models.Exam, error)
	GetByID(ctx context.Context, id uint, relations ExamRelations) (models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	UpdateStatus(ctx context.Context, id uint, status models.ExamStatus) error
	Delete(ctx context.Context, id uint) error
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository instantiates a GORM-backed repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) List(ctx context.Context, ownerID uint) ([]models.Exam, error) {
	var exams []models.Exam
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if ownerID != 0 {
		query = query.Where("owner_id = ?", ownerID)
	}
	if err := query.Find(&exams).Error; err != nil {
		return nil, err
	}

	return exams, nil
}

func (r *examRepository) GetByID(ctx context.Context, id uint, relations ExamRelations) (models.Exam, error) {
	query := r.db.WithContext(ctx)
	if relations.Sections {
		query = query.Preload("Sections")
	}
	if relations.Questions {
		query = query.Preload("Sections.Questions").Preload("Sections.Questions.Options").Preload("Sections.Questions.Rubric")
	}

	var exam models.Exam
	if err := query.First(&exam, id).Error; err != nil {
		return models.Exam{}, err
	}

	return exam, nil
}

func (r *examRepository) Create(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepository) Update(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Save(exam).Error
}

func (r *examRepository) UpdateStatus(ctx context.Context, id uint, status models.ExamStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Exam{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *examRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Exam{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
