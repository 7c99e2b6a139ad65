package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"teamtasks/internal/handler"
	"teamtasks/internal/model"
	"teamtasks/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type teamTestMocks struct {
	team       *MockTeamRepository
	company    *MockCompanyRepository
	membership *MockMembershipRepository
	user       *MockUserRepository
	activity   *MockActivityRepository
}

func setupTeamTest(userID uuid.UUID) (*gin.Engine, teamTestMocks) {
	gin.SetMode(gin.TestMode)
	mocks := teamTestMocks{
		team:       new(MockTeamRepository),
		company:    new(MockCompanyRepository),
		membership: new(MockMembershipRepository),
		user:       new(MockUserRepository),
		activity:   new(MockActivityRepository),
	}
	teamHandler := handler.NewTeamHandler(mocks.team, mocks.company, mocks.membership, mocks.user, mocks.activity)

	r := gin.Default()
	authorized := r.Group("/", authAs(userID))
	authorized.GET("/teams/:id", teamHandler.GetByID)
	authorized.POST("/teams/:id/members", teamHandler.AddMember)
	authorized.DELETE("/teams/:id/members/:user_id", teamHandler.RemoveMember)
	authorized.PATCH("/teams/:id/members/:user_id/role", teamHandler.ChangeRole)
	authorized.GET("/teams/:id/activity", teamHandler.GetActivity)
	return r, mocks
}

func testTeam() *model.Team {
	return &model.Team{
		ID:        uuid.New(),
		Name:      "Backend",
		CompanyID: uuid.New(),
	}
}

func adminOf(team *model.Team, userID uuid.UUID) *model.Membership {
	return &model.Membership{
		ID:     uuid.New(),
		UserID: userID,
		TeamID: team.ID,
		Role:   model.RoleAdmin,
	}
}

func memberOf(team *model.Team, userID uuid.UUID) *model.Membership {
	return &model.Membership{
		ID:     uuid.New(),
		UserID: userID,
		TeamID: team.ID,
		Role:   model.RoleMember,
	}
}

func TestTeamGetByID_NotAMember(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mocks := setupTeamTest(userID)
	team := testTeam()

	mocks.team.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mocks.membership.On("GetByTeamAndUser", mock.Anything, team.ID, userID).Return(nil, nil)

	req, _ := http.NewRequest("GET", "/teams/"+team.ID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert: the team must look like it does not exist
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Team not found")
}

func TestTeamAddMember_Success(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mocks := setupTeamTest(userID)
	team := testTeam()
	targetID := uuid.New()
	target := &model.User{ID: targetID, Email: "new@example.com", Name: "New Member"}
	added := &model.Membership{ID: uuid.New(), UserID: targetID, TeamID: team.ID, Role: model.RoleMember}

	mocks.team.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mocks.membership.On("GetByTeamAndUser", mock.Anything, team.ID, userID).Return(adminOf(team, userID), nil)
	mocks.user.On("GetByID", mock.Anything, targetID).Return(target, nil)
	mocks.membership.On("AddMember", mock.Anything, team.ID, targetID, model.RoleMember).Return(added, nil)
	mocks.activity.On("Record", mock.Anything, mock.MatchedBy(func(e *model.ActivityLog) bool {
		return e.Action == model.ActionMemberAdded && e.TargetUserID != nil && *e.TargetUserID == targetID
	})).Return(nil)

	jsonBody, _ := json.Marshal(handler.AddMemberRequest{UserID: targetID.String()})
	req, _ := http.NewRequest("POST", "/teams/"+team.ID.String()+"/members", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var response handler.MemberResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, targetID.String(), response.UserID)
	assert.Equal(t, "new@example.com", response.Email)
	assert.Equal(t, model.RoleMember, response.Role)

	mocks.activity.AssertExpectations(t)
}

func TestTeamAddMember_NonAdmin(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mocks := setupTeamTest(userID)
	team := testTeam()

	mocks.team.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mocks.membership.On("GetByTeamAndUser", mock.Anything, team.ID, userID).Return(memberOf(team, userID), nil)

	jsonBody, _ := json.Marshal(handler.AddMemberRequest{UserID: uuid.New().String()})
	req, _ := http.NewRequest("POST", "/teams/"+team.ID.String()+"/members", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	mocks.membership.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTeamAddMember_AlreadyMember(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mocks := setupTeamTest(userID)
	team := testTeam()
	targetID := uuid.New()
	target := &model.User{ID: targetID, Email: "dup@example.com"}

	mocks.team.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mocks.membership.On("GetByTeamAndUser", mock.Anything, team.ID, userID).Return(adminOf(team, userID), nil)
	mocks.user.On("GetByID", mock.Anything, targetID).Return(target, nil)
	mocks.membership.On("AddMember", mock.Anything, team.ID, targetID, model.RoleMember).
		Return(nil, repository.ErrAlreadyMember)

	jsonBody, _ := json.Marshal(handler.AddMemberRequest{UserID: targetID.String()})
	req, _ := http.NewRequest("POST", "/teams/"+team.ID.String()+"/members", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	mocks.activity.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestTeamAddMember_InvalidRole(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mocks := setupTeamTest(userID)
	team := testTeam()

	mocks.team.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mocks.membership.On("GetByTeamAndUser", mock.Anything, team.ID, userID).Return(adminOf(team, userID), nil)

	jsonBody, _ := json.Marshal(handler.AddMemberRequest{UserID: uuid.New().String(), Role: "owner"})
	req, _ := http.NewRequest("POST", "/teams/"+team.ID.String()+"/members", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTeamRemoveMember_Success(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mocks := setupTeamTest(userID)
	team := testTeam()
	targetID := uuid.New()

	mocks.team.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mocks.membership.On("GetByTeamAndUser", mock.Anything, team.ID, userID).Return(adminOf(team, userID), nil)
	mocks.membership.On("RemoveMember", mock.Anything, team.ID, targetID, userID).Return(nil)
	mocks.activity.On("Record", mock.Anything, mock.MatchedBy(func(e *model.ActivityLog) bool {
		return e.Action == model.ActionMemberRemoved && e.TargetUserID != nil && *e.TargetUserID == targetID
	})).Return(nil)

	req, _ := http.NewRequest("DELETE", "/teams/"+team.ID.String()+"/members/"+targetID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	mocks.activity.AssertExpectations(t)
}

func TestTeamRemoveMember_LastAdmin(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mocks := setupTeamTest(userID)
	team := testTeam()
	targetID := uuid.New()

	mocks.team.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mocks.membership.On("GetByTeamAndUser", mock.Anything, team.ID, userID).Return(adminOf(team, userID), nil)
	mocks.membership.On("RemoveMember", mock.Anything, team.ID, targetID, userID).
		Return(repository.ErrLastAdmin)

	req, _ := http.NewRequest("DELETE", "/teams/"+team.ID.String()+"/members/"+targetID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "last admin")
	mocks.activity.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestTeamRemoveMember_Self(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mocks := setupTeamTest(userID)
	team := testTeam()

	mocks.team.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mocks.membership.On("GetByTeamAndUser", mock.Anything, team.ID, userID).Return(adminOf(team, userID), nil)
	mocks.membership.On("RemoveMember", mock.Anything, team.ID, userID, userID).
		Return(repository.ErrSelfRemoval)

	req, _ := http.NewRequest("DELETE", "/teams/"+team.ID.String()+"/members/"+userID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "cannot remove yourself")
}

func TestTeamChangeRole_Self(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mocks := setupTeamTest(userID)
	team := testTeam()

	mocks.team.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mocks.membership.On("GetByTeamAndUser", mock.Anything, team.ID, userID).Return(adminOf(team, userID), nil)
	mocks.membership.On("ChangeRole", mock.Anything, team.ID, userID, userID, model.RoleMember).
		Return(nil, repository.ErrSelfRoleChange)

	jsonBody, _ := json.Marshal(handler.ChangeRoleRequest{Role: model.RoleMember})
	req, _ := http.NewRequest("PATCH", "/teams/"+team.ID.String()+"/members/"+userID.String()+"/role", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "own role")
}

func TestTeamGetActivity_MemberForbidden(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mocks := setupTeamTest(userID)
	team := testTeam()

	mocks.team.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mocks.membership.On("GetByTeamAndUser", mock.Anything, team.ID, userID).Return(memberOf(team, userID), nil)

	req, _ := http.NewRequest("GET", "/teams/"+team.ID.String()+"/activity", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	mocks.activity.AssertNotCalled(t, "ListByTeam", mock.Anything, mock.Anything)
}

func TestTeamGetActivity_AdminSeesEntries(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mocks := setupTeamTest(userID)
	team := testTeam()
	taskID := uuid.New()
	entries := []model.ActivityLog{
		{
			ID:          uuid.New(),
			Action:      model.ActionTaskCreated,
			PerformedBy: userID,
			TaskID:      &taskID,
			Details:     model.JSONMap{"title": "Ship it"},
		},
	}

	mocks.team.On("GetByID", mock.Anything, team.ID).Return(team, nil)
	mocks.membership.On("GetByTeamAndUser", mock.Anything, team.ID, userID).Return(adminOf(team, userID), nil)
	mocks.activity.On("ListByTeam", mock.Anything, team.ID).Return(entries, nil)

	req, _ := http.NewRequest("GET", "/teams/"+team.ID.String()+"/activity", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response []handler.ActivityResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 1)
	assert.Equal(t, model.ActionTaskCreated, response[0].Action)
	assert.NotNil(t, response[0].TaskID)
	assert.Equal(t, taskID.String(), *response[0].TaskID)
}
