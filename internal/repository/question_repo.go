package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/provaboard/prova-api/internal/models"
)

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Question, error)
	ListBySection(ctx context.Context, sectionID uint) ([]models.Question, error)
	Create(ctx context.Context, question *models.Question) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates a GORM-backed repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).Preload("Options").Preload("Rubric").First(&question, id).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *questionRepository) ListBySection(ctx context.Context, sectionID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.WithContext(ctx).Preload("Options").Preload("Rubric").
		Where("section_id = ?", sectionID).Order("created_at ASC").Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}
