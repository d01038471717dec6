package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/provaboard/prova-api/internal/models"
)

// AnswerSheetRepository defines persistence operations for answer sheets.
type AnswerSheetRepository interface {
	GetByID(ctx context.Context, id uint) (models.AnswerSheet, error)
	Update(ctx context.Context, sheet *models.AnswerSheet) error
	CountPendingByExam(ctx context.Context, examID uint) (int64, error)
}

type answerSheetRepository struct {
	db *gorm.DB
}

// NewAnswerSheetRepository instantiates a GORM-backed repository.
func NewAnswerSheetRepository(db *gorm.DB) AnswerSheetRepository {
	return &answerSheetRepository{db: db}
}

func (r *answerSheetRepository) GetByID(ctx context.Context, id uint) (models.AnswerSheet, error) {
	var sheet models.AnswerSheet
	if err := r.db.WithContext(ctx).First(&sheet, id).Error; err != nil {
		return models.AnswerSheet{}, err
	}

	return sheet, nil
}

func (r *answerSheetRepository) Update(ctx context.Context, sheet *models.AnswerSheet) error {
	return r.db.WithContext(ctx).Save(sheet).Error
}

func (r *answerSheetRepository) CountPendingByExam(ctx context.Context, examID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AnswerSheet{}).
		Where("exam_id = ? AND status <> ?", examID, models.AnswerSheetStatusFinished).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
