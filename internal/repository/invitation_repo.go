package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/provaboard/prova-api/internal/models"
)

// InvitationRepository defines persistence operations for exam invitations.
type InvitationRepository interface {
	ListByExam(ctx context.Context, examID uint) ([]models.Invitation, error)
	GetByID(ctx context.Context, id uint) (models.Invitation, error)
	CreateBatch(ctx context.Context, invitations []models.Invitation) error
	Update(ctx context.Context, invitation *models.Invitation) error
}

type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository instantiates a GORM-backed repository.
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) ListByExam(ctx context.Context, examID uint) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := r.db.WithContext(ctx).Where("exam_id = ?", examID).Order("created_at ASC").Find(&invitations).Error; err != nil {
		return nil, err
	}

	return invitations, nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id uint) (models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).First(&invitation, id).Error; err != nil {
		return models.Invitation{}, err
	}

	return invitation, nil
}

func (r *invitationRepository) CreateBatch(ctx context.Context, invitations []models.Invitation) error {
	if len(invitations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&invitations).Error
}

func (r *invitationRepository) Update(ctx context.Context, invitation *models.Invitation) error {
	return r.db.WithContext(ctx).Save(invitation).Error
}
