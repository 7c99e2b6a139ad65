package repository

import (
	"context"
	"errors"

	"teamtasks/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MembershipRepository struct {
	db *gorm.DB
}

type MembershipRepositoryInterface interface {
	GetByTeamAndUser(ctx context.Context, teamID, userID uuid.UUID) (*model.Membership, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Membership, error)
	FindByTeamAndEmail(ctx context.Context, teamID uuid.UUID, email string) (*model.Membership, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]model.Membership, error)
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	IsAdmin(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	AddMember(ctx context.Context, teamID, userID uuid.UUID, role string) (*model.Membership, error)
	RemoveMember(ctx context.Context, teamID, targetUserID, actorUserID uuid.UUID) error
	ChangeRole(ctx context.Context, teamID, targetUserID, actorUserID uuid.UUID, newRole string) (*model.Membership, error)
}

var _ MembershipRepositoryInterface = (*MembershipRepository)(nil)

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// GetByTeamAndUser returns the user's membership in the team, or nil if none.
func (r *MembershipRepository) GetByTeamAndUser(ctx context.Context, teamID, userID uuid.UUID) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).Where("team_id = ? AND user_id = ?", teamID, userID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *MembershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindByTeamAndEmail resolves a membership by the member's email, scoped to
// one team. Returns nil when no member of the team has that email.
func (r *MembershipRepository) FindByTeamAndEmail(ctx context.Context, teamID uuid.UUID, email string) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.team_id = ? AND users.email = ?", teamID, email).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *MembershipRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]model.Membership, error) {
	var memberships []model.Membership
	err := r.db.WithContext(ctx).Preload("User").Where("team_id = ?", teamID).Order("joined_at").Find(&memberships).Error
	return memberships, err
}

func (r *MembershipRepository) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	membership, err := r.GetByTeamAndUser(ctx, teamID, userID)
	return membership != nil, err
}

func (r *MembershipRepository) IsAdmin(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	membership, err := r.GetByTeamAndUser(ctx, teamID, userID)
	if err != nil || membership == nil {
		return false, err
	}
	return membership.IsAdmin(), nil
}

// AddMember creates a membership for the user in the team. The existence
// check and the insert run in one transaction with the team's membership rows
// locked, so two concurrent adds for the same user cannot both pass the
// check; the unique index on (user_id, team_id) backs this at the schema
// level as well.
func (r *MembershipRepository) AddMember(ctx context.Context, teamID, userID uuid.UUID, role string) (*model.Membership, error) {
	membership := model.Membership{
		UserID: userID,
		TeamID: teamID,
		Role:   role,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Membership{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("team_id = ? AND user_id = ?", teamID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyMember
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// RemoveMember deletes the target user's membership. The admin count is read
// under a row lock on the team's memberships inside the same transaction as
// the delete: two concurrent removals cannot both observe two admins and
// leave the team with none.
func (r *MembershipRepository) RemoveMember(ctx context.Context, teamID, targetUserID, actorUserID uuid.UUID) error {
	if targetUserID == actorUserID {
		return ErrSelfRemoval
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memberships, err := lockTeamMemberships(tx, teamID)
		if err != nil {
			return err
		}
		target, adminCount := findMembership(memberships, targetUserID)
		if target == nil {
			return ErrNotAMember
		}
		if target.IsAdmin() && adminCount <= 1 {
			return ErrLastAdmin
		}
		return tx.Delete(&model.Membership{}, "id = ?", target.ID).Error
	})
}

// ChangeRole updates the target user's role under the same locking scheme as
// RemoveMember, so demoting the sole admin is rejected even under concurrent
// demotions.
func (r *MembershipRepository) ChangeRole(ctx context.Context, teamID, targetUserID, actorUserID uuid.UUID, newRole string) (*model.Membership, error) {
	if targetUserID == actorUserID {
		return nil, ErrSelfRoleChange
	}
	var updated model.Membership
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memberships, err := lockTeamMemberships(tx, teamID)
		if err != nil {
			return err
		}
		target, adminCount := findMembership(memberships, targetUserID)
		if target == nil {
			return ErrNotAMember
		}
		if target.IsAdmin() && newRole == model.RoleMember && adminCount <= 1 {
			return ErrLastAdmin
		}
		target.Role = newRole
		updated = *target
		return tx.Model(&model.Membership{}).Where("id = ?", target.ID).Update("role", newRole).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// lockTeamMemberships reads all memberships of a team with SELECT ... FOR
// UPDATE, serializing concurrent membership writes against the same team.
func lockTeamMemberships(tx *gorm.DB, teamID uuid.UUID) ([]model.Membership, error) {
	var memberships []model.Membership
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("team_id = ?", teamID).
		Find(&memberships).Error
	return memberships, err
}

func findMembership(memberships []model.Membership, userID uuid.UUID) (*model.Membership, int) {
	var target *model.Membership
	adminCount := 0
	for i := range memberships {
		if memberships[i].IsAdmin() {
			adminCount++
		}
		if memberships[i].UserID == userID {
			target = &memberships[i]
		}
	}
	return target, adminCount
}
