package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/provaboard/prova-api/internal/models"
)

// SectionRepository defines persistence operations for exam sections.
type SectionRepository interface {
	ListByExam(ctx context.Context, examID uint) ([]models.Section, error)
	GetByID(ctx context.Context, id uint) (models.Section, error)
	Create(ctx context.Context, section *models.Section) error
	Update(ctx context.Context, section *models.Section) error
	CountQuestions(ctx context.Context, sectionID uint) (int64, error)
}

type sectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository instantiates a GORM-backed repository.
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

func (r *sectionRepository) ListByExam(ctx context.Context, examID uint) ([]models.Section, error) {
	var sections []models.Section
	if err := r.db.WithContext(ctx).Where("exam_id = ?", examID).Order("created_at ASC").Find(&sections).Error; err != nil {
		return nil, err
	}

	return sections, nil
}

func (r *sectionRepository) GetByID(ctx context.Context, id uint) (models.Section, error) {
	var section models.Section
	if err := r.db.WithContext(ctx).Preload("Questions").First(&section, id).Error; err != nil {
		return models.Section{}, err
	}

	return section, nil
}

func (r *sectionRepository) Create(ctx context.Context, section *models.Section) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *sectionRepository) Update(ctx context.Context, section *models.Section) error {
	return r.db.WithContext(ctx).Save(section).Error
}

func (r *sectionRepository) CountQuestions(ctx context.Context, sectionID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).Where("section_id = ?", sectionID).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
