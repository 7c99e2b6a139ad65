package handler_test

import (
	"context"

	"teamtasks/internal/model"
	"teamtasks/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *model.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) GetOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Company, error) {
	args := m.Called(ctx, ownerID)
	companies := args.Get(0)
	if companies == nil {
		return nil, args.Error(1)
	}
	return companies.([]model.Company), args.Error(1)
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	args := m.Called(ctx, id)
	company := args.Get(0)
	if company == nil {
		return nil, args.Error(1)
	}
	return company.(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) Update(ctx context.Context, company *model.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) CreateWithAdmin(ctx context.Context, team *model.Team, creatorUserID uuid.UUID) error {
	args := m.Called(ctx, team, creatorUserID)
	return args.Error(0)
}

func (m *MockTeamRepository) GetForUser(ctx context.Context, userID uuid.UUID) ([]model.Team, error) {
	args := m.Called(ctx, userID)
	teams := args.Get(0)
	if teams == nil {
		return nil, args.Error(1)
	}
	return teams.([]model.Team), args.Error(1)
}

func (m *MockTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	args := m.Called(ctx, id)
	team := args.Get(0)
	if team == nil {
		return nil, args.Error(1)
	}
	return team.(*model.Team), args.Error(1)
}

func (m *MockTeamRepository) Update(ctx context.Context, team *model.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) GetByTeamAndUser(ctx context.Context, teamID, userID uuid.UUID) (*model.Membership, error) {
	args := m.Called(ctx, teamID, userID)
	membership := args.Get(0)
	if membership == nil {
		return nil, args.Error(1)
	}
	return membership.(*model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Membership, error) {
	args := m.Called(ctx, id)
	membership := args.Get(0)
	if membership == nil {
		return nil, args.Error(1)
	}
	return membership.(*model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) FindByTeamAndEmail(ctx context.Context, teamID uuid.UUID, email string) (*model.Membership, error) {
	args := m.Called(ctx, teamID, email)
	membership := args.Get(0)
	if membership == nil {
		return nil, args.Error(1)
	}
	return membership.(*model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]model.Membership, error) {
	args := m.Called(ctx, teamID)
	memberships := args.Get(0)
	if memberships == nil {
		return nil, args.Error(1)
	}
	return memberships.([]model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) IsAdmin(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) AddMember(ctx context.Context, teamID, userID uuid.UUID, role string) (*model.Membership, error) {
	args := m.Called(ctx, teamID, userID, role)
	membership := args.Get(0)
	if membership == nil {
		return nil, args.Error(1)
	}
	return membership.(*model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) RemoveMember(ctx context.Context, teamID, targetUserID, actorUserID uuid.UUID) error {
	args := m.Called(ctx, teamID, targetUserID, actorUserID)
	return args.Error(0)
}

func (m *MockMembershipRepository) ChangeRole(ctx context.Context, teamID, targetUserID, actorUserID uuid.UUID, newRole string) (*model.Membership, error) {
	args := m.Called(ctx, teamID, targetUserID, actorUserID, newRole)
	membership := args.Get(0)
	if membership == nil {
		return nil, args.Error(1)
	}
	return membership.(*model.Membership), args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListForUser(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, userID, filter)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) Assign(ctx context.Context, taskID, membershipID uuid.UUID) error {
	args := m.Called(ctx, taskID, membershipID)
	return args.Error(0)
}

func (m *MockTaskRepository) ListAssignments(ctx context.Context, taskID uuid.UUID) ([]model.TaskAssignment, error) {
	args := m.Called(ctx, taskID)
	assignments := args.Get(0)
	if assignments == nil {
		return nil, args.Error(1)
	}
	return assignments.([]model.TaskAssignment), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Record(ctx context.Context, entry *model.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]model.ActivityLog, error) {
	args := m.Called(ctx, teamID)
	entries := args.Get(0)
	if entries == nil {
		return nil, args.Error(1)
	}
	return entries.([]model.ActivityLog), args.Error(1)
}
