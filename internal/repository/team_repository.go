package repository

import (
	"context"
	"errors"

	"teamtasks/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamRepository struct {
	db *gorm.DB
}

type TeamRepositoryInterface interface {
	CreateWithAdmin(ctx context.Context, team *model.Team, creatorUserID uuid.UUID) error
	GetForUser(ctx context.Context, userID uuid.UUID) ([]model.Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	Update(ctx context.Context, team *model.Team) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ TeamRepositoryInterface = (*TeamRepository)(nil)

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// CreateWithAdmin creates the team together with the creator's admin
// membership in one transaction, so a team never exists without an admin.
func (r *TeamRepository) CreateWithAdmin(ctx context.Context, team *model.Team, creatorUserID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		membership := model.Membership{
			UserID: creatorUserID,
			TeamID: team.ID,
			Role:   model.RoleAdmin,
		}
		return tx.Create(&membership).Error
	})
}

// GetForUser returns the teams where the user holds any membership.
func (r *TeamRepository) GetForUser(ctx context.Context, userID uuid.UUID) ([]model.Team, error) {
	var teams []model.Team
	err := r.db.WithContext(ctx).
		Preload("Memberships.User").
		Joins("JOIN memberships ON memberships.team_id = teams.id").
		Where("memberships.user_id = ?", userID).
		Find(&teams).Error
	return teams, err
}

func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Preload("Memberships.User").Where("id = ?", id).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) Update(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

func (r *TeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Team{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTeamNotFound
	}
	return nil
}
