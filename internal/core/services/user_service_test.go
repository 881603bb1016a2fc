package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pravaha-app/expense_backend/internal/apperrors"
	"github.com/pravaha-app/expense_backend/internal/core/domain"
	portssvc "github.com/pravaha-app/expense_backend/internal/core/ports/services"
	"github.com/pravaha-app/expense_backend/internal/core/services"
	"github.com/pravaha-app/expense_backend/internal/dto"
	"github.com/pravaha-app/expense_backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserRepository (based on UserService usage) ---
type MockUserRepository struct {
	mock.Mock
	FindUserByIDFn func(ctx context.Context, userID string) (*domain.User, error)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if m.FindUserByIDFn != nil {
		return m.FindUserByIDFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsersByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, companyID, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveUserInTx(ctx context.Context, tx pgx.Tx, user domain.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateManager(ctx context.Context, userID string, managerID *string, updatedAt time.Time, updatedBy string) error {
	args := m.Called(ctx, userID, managerID, updatedAt, updatedBy)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

// --- Test Suite ---
type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade

	companyID string
	admin     domain.Requester
	employee  domain.Requester
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)

	suite.companyID = uuid.NewString()
	suite.admin = domain.Requester{UserID: uuid.NewString(), CompanyID: suite.companyID, Role: domain.RoleAdmin}
	suite.employee = domain.Requester{UserID: uuid.NewString(), CompanyID: suite.companyID, Role: domain.RoleEmployee}
}

// --- CreateUser Tests ---

func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Email:    "Bob@Example.com",
		Password: "password123",
		FullName: "Bob Smith",
		Role:     "EMPLOYEE",
	}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "bob@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(user domain.User) bool {
		return user.Email == "bob@example.com" &&
			user.CompanyID == suite.companyID &&
			user.Role == domain.RoleEmployee &&
			user.PasswordHash != req.Password
	})).Return(nil).Once()

	created, err := suite.service.CreateUser(ctx, suite.admin, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.Equal("bob@example.com", created.Email)
	suite.Equal(domain.RoleEmployee, created.Role)
	suite.Equal(suite.companyID, created.CompanyID)
	suite.NotEmpty(created.UserID)
	suite.Equal(suite.admin.UserID, created.CreatedBy)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_ForbiddenForNonAdmin() {
	ctx := context.Background()
	req := dto.CreateUserRequest{Email: "x@example.com", Password: "password123", FullName: "X", Role: "EMPLOYEE"}

	for _, requester := range []domain.Requester{
		suite.employee,
		{UserID: uuid.NewString(), CompanyID: suite.companyID, Role: domain.RoleManager},
	} {
		created, err := suite.service.CreateUser(ctx, requester, req)
		suite.Require().Error(err)
		suite.Nil(created)
		suite.ErrorIs(err, apperrors.ErrForbidden)
	}
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateUser_AdminRoleRejected() {
	ctx := context.Background()
	req := dto.CreateUserRequest{Email: "x@example.com", Password: "password123", FullName: "X", Role: "ADMIN"}

	created, err := suite.service.CreateUser(ctx, suite.admin, req)

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateEmail() {
	ctx := context.Background()
	req := dto.CreateUserRequest{Email: "taken@example.com", Password: "password123", FullName: "X", Role: "MANAGER"}
	existing := &domain.User{UserID: uuid.NewString(), Email: "taken@example.com"}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "taken@example.com").Return(existing, nil).Once()

	created, err := suite.service.CreateUser(ctx, suite.admin, req)

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, apperrors.ErrDuplicateEmail)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

// --- AssignManager Tests ---

func (suite *UserServiceTestSuite) TestAssignManager_Success() {
	ctx := context.Background()
	employeeID := uuid.NewString()
	managerID := uuid.NewString()
	employee := &domain.User{UserID: employeeID, CompanyID: suite.companyID, Role: domain.RoleEmployee}
	manager := &domain.User{UserID: managerID, CompanyID: suite.companyID, Role: domain.RoleManager}

	suite.mockUserRepo.On("FindUserByID", ctx, employeeID).Return(employee, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, managerID).Return(manager, nil).Once()
	suite.mockUserRepo.On("UpdateManager", ctx, employeeID, &managerID, mock.AnythingOfType("time.Time"), suite.admin.UserID).Return(nil).Once()

	updated, err := suite.service.AssignManager(ctx, suite.admin, employeeID, &managerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Require().NotNil(updated.ManagerID)
	suite.Equal(managerID, *updated.ManagerID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAssignManager_ClearAssignment() {
	ctx := context.Background()
	managerID := uuid.NewString()
	employeeID := uuid.NewString()
	employee := &domain.User{UserID: employeeID, CompanyID: suite.companyID, Role: domain.RoleEmployee, ManagerID: &managerID}

	suite.mockUserRepo.On("FindUserByID", ctx, employeeID).Return(employee, nil).Once()
	suite.mockUserRepo.On("UpdateManager", ctx, employeeID, (*string)(nil), mock.AnythingOfType("time.Time"), suite.admin.UserID).Return(nil).Once()

	updated, err := suite.service.AssignManager(ctx, suite.admin, employeeID, nil)

	suite.Require().NoError(err)
	suite.Nil(updated.ManagerID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAssignManager_ForbiddenForNonAdmin() {
	ctx := context.Background()
	managerID := uuid.NewString()

	updated, err := suite.service.AssignManager(ctx, suite.employee, uuid.NewString(), &managerID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestAssignManager_SelfRejected() {
	ctx := context.Background()
	employeeID := uuid.NewString()
	employee := &domain.User{UserID: employeeID, CompanyID: suite.companyID, Role: domain.RoleManager}

	suite.mockUserRepo.On("FindUserByID", ctx, employeeID).Return(employee, nil).Once()

	updated, err := suite.service.AssignManager(ctx, suite.admin, employeeID, &employeeID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidAssignment)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateManager", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestAssignManager_EmployeeRoleCannotManage() {
	ctx := context.Background()
	employeeID := uuid.NewString()
	managerID := uuid.NewString()
	employee := &domain.User{UserID: employeeID, CompanyID: suite.companyID, Role: domain.RoleEmployee}
	notAManager := &domain.User{UserID: managerID, CompanyID: suite.companyID, Role: domain.RoleEmployee}

	suite.mockUserRepo.On("FindUserByID", ctx, employeeID).Return(employee, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, managerID).Return(notAManager, nil).Once()

	updated, err := suite.service.AssignManager(ctx, suite.admin, employeeID, &managerID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidAssignment)
}

func (suite *UserServiceTestSuite) TestAssignManager_CrossCompanyManagerRejected() {
	ctx := context.Background()
	employeeID := uuid.NewString()
	managerID := uuid.NewString()
	employee := &domain.User{UserID: employeeID, CompanyID: suite.companyID, Role: domain.RoleEmployee}
	foreignManager := &domain.User{UserID: managerID, CompanyID: uuid.NewString(), Role: domain.RoleManager}

	suite.mockUserRepo.On("FindUserByID", ctx, employeeID).Return(employee, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, managerID).Return(foreignManager, nil).Once()

	updated, err := suite.service.AssignManager(ctx, suite.admin, employeeID, &managerID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidAssignment)
}

func (suite *UserServiceTestSuite) TestAssignManager_CycleRejected() {
	// Chain: carol -> bob -> alice. Assigning carol as alice's manager would
	// close the loop alice -> carol -> bob -> alice.
	ctx := context.Background()
	aliceID := uuid.NewString()
	bobID := uuid.NewString()
	carolID := uuid.NewString()

	alice := &domain.User{UserID: aliceID, CompanyID: suite.companyID, Role: domain.RoleManager}
	bob := &domain.User{UserID: bobID, CompanyID: suite.companyID, Role: domain.RoleManager, ManagerID: &aliceID}
	carol := &domain.User{UserID: carolID, CompanyID: suite.companyID, Role: domain.RoleManager, ManagerID: &bobID}

	users := map[string]*domain.User{aliceID: alice, bobID: bob, carolID: carol}
	suite.mockUserRepo.FindUserByIDFn = func(ctx context.Context, userID string) (*domain.User, error) {
		if u, ok := users[userID]; ok {
			return u, nil
		}
		return nil, apperrors.ErrNotFound
	}

	updated, err := suite.service.AssignManager(ctx, suite.admin, aliceID, &carolID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidAssignment)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateManager", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestAssignManager_CrossTenantEmployeeHidden() {
	ctx := context.Background()
	employeeID := uuid.NewString()
	managerID := uuid.NewString()
	foreignEmployee := &domain.User{UserID: employeeID, CompanyID: uuid.NewString(), Role: domain.RoleEmployee}

	suite.mockUserRepo.On("FindUserByID", ctx, employeeID).Return(foreignEmployee, nil).Once()

	updated, err := suite.service.AssignManager(ctx, suite.admin, employeeID, &managerID)

	suite.Require().Error(err)
	suite.Nil(updated)
	// Cross-tenant targets are refused, not reported as missing.
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestAssignManager_DeactivatedManagerRejected() {
	ctx := context.Background()
	employeeID := uuid.NewString()
	managerID := uuid.NewString()
	deletedAt := time.Now()
	employee := &domain.User{UserID: employeeID, CompanyID: suite.companyID, Role: domain.RoleEmployee}
	goneManager := &domain.User{UserID: managerID, CompanyID: suite.companyID, Role: domain.RoleManager, DeletedAt: &deletedAt}

	suite.mockUserRepo.On("FindUserByID", ctx, employeeID).Return(employee, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, managerID).Return(goneManager, nil).Once()

	updated, err := suite.service.AssignManager(ctx, suite.admin, employeeID, &managerID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidAssignment)
}

// --- DeactivateUser Tests ---

func (suite *UserServiceTestSuite) TestDeactivateUser_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	user := &domain.User{UserID: userID, CompanyID: suite.companyID, Role: domain.RoleEmployee}

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(user, nil).Once()
	suite.mockUserRepo.On("MarkUserDeleted", ctx, userID, mock.AnythingOfType("time.Time"), suite.admin.UserID).Return(nil).Once()

	err := suite.service.DeactivateUser(ctx, suite.admin, userID)

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestDeactivateUser_ForbiddenForNonAdmin() {
	ctx := context.Background()

	err := suite.service.DeactivateUser(ctx, suite.employee, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "MarkUserDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestDeactivateUser_SelfRejected() {
	ctx := context.Background()

	err := suite.service.DeactivateUser(ctx, suite.admin, suite.admin.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestDeactivateUser_CrossTenantHidden() {
	ctx := context.Background()
	userID := uuid.NewString()
	foreign := &domain.User{UserID: userID, CompanyID: uuid.NewString(), Role: domain.RoleEmployee}

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(foreign, nil).Once()

	err := suite.service.DeactivateUser(ctx, suite.admin, userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "MarkUserDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Authenticate Tests ---

func (suite *UserServiceTestSuite) TestAuthenticate_Success() {
	ctx := context.Background()
	password := "correct-horse-battery"
	hash, err := utils.HashPassword(password)
	suite.Require().NoError(err)
	user := &domain.User{UserID: uuid.NewString(), Email: "alice@example.com", PasswordHash: hash}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "alice@example.com").Return(user, nil).Once()

	got, err := suite.service.Authenticate(ctx, " Alice@Example.com ", password)

	suite.Require().NoError(err)
	suite.Equal(user.UserID, got.UserID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticate_UnknownEmail() {
	ctx := context.Background()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound).Once()

	got, err := suite.service.Authenticate(ctx, "ghost@example.com", "whatever123")

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func (suite *UserServiceTestSuite) TestAuthenticate_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("the-real-password")
	suite.Require().NoError(err)
	user := &domain.User{UserID: uuid.NewString(), Email: "alice@example.com", PasswordHash: hash}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "alice@example.com").Return(user, nil).Once()

	got, err := suite.service.Authenticate(ctx, "alice@example.com", "not-the-password")

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func (suite *UserServiceTestSuite) TestAuthenticate_DeletedUser() {
	ctx := context.Background()
	password := "correct-horse-battery"
	hash, err := utils.HashPassword(password)
	suite.Require().NoError(err)
	deletedAt := time.Now()
	user := &domain.User{UserID: uuid.NewString(), Email: "gone@example.com", PasswordHash: hash, DeletedAt: &deletedAt}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "gone@example.com").Return(user, nil).Once()

	got, err := suite.service.Authenticate(ctx, "gone@example.com", password)

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

// --- ResolveRequester Tests ---

func (suite *UserServiceTestSuite) TestResolveRequester_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	user := &domain.User{UserID: userID, CompanyID: suite.companyID, Role: domain.RoleManager}

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(user, nil).Once()

	requester, err := suite.service.ResolveRequester(ctx, userID)

	suite.Require().NoError(err)
	suite.Equal(userID, requester.UserID)
	suite.Equal(suite.companyID, requester.CompanyID)
	suite.Equal(domain.RoleManager, requester.Role)
}

func (suite *UserServiceTestSuite) TestResolveRequester_UnknownUser() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ResolveRequester(ctx, userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

// --- GetUserByID Tests ---

func (suite *UserServiceTestSuite) TestGetUserByID_OwnRecord() {
	ctx := context.Background()
	user := &domain.User{UserID: suite.employee.UserID, CompanyID: suite.companyID, Role: domain.RoleEmployee}

	suite.mockUserRepo.On("FindUserByID", ctx, suite.employee.UserID).Return(user, nil).Once()

	got, err := suite.service.GetUserByID(ctx, suite.employee, suite.employee.UserID)

	suite.Require().NoError(err)
	suite.Equal(user, got)
}

func (suite *UserServiceTestSuite) TestGetUserByID_OtherUserForbiddenForEmployee() {
	ctx := context.Background()

	got, err := suite.service.GetUserByID(ctx, suite.employee, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindUserByID", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestGetUserByID_CrossTenantHiddenFromAdmin() {
	ctx := context.Background()
	userID := uuid.NewString()
	foreign := &domain.User{UserID: userID, CompanyID: uuid.NewString(), Role: domain.RoleEmployee}

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(foreign, nil).Once()

	got, err := suite.service.GetUserByID(ctx, suite.admin, userID)

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

// --- ListCompanyUsers Tests ---

func (suite *UserServiceTestSuite) TestListCompanyUsers_Success() {
	ctx := context.Background()
	expected := []domain.User{{UserID: uuid.NewString()}, {UserID: uuid.NewString()}}

	suite.mockUserRepo.On("FindUsersByCompany", ctx, suite.companyID, 10, 0).Return(expected, nil).Once()

	users, err := suite.service.ListCompanyUsers(ctx, suite.admin, 10, 0)

	suite.Require().NoError(err)
	suite.Len(users, 2)
}

func (suite *UserServiceTestSuite) TestListCompanyUsers_ForbiddenForEmployee() {
	ctx := context.Background()

	users, err := suite.service.ListCompanyUsers(ctx, suite.employee, 10, 0)

	suite.Require().Error(err)
	suite.Nil(users)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestListCompanyUsers_RepoError() {
	ctx := context.Background()
	expectedErr := assert.AnError

	suite.mockUserRepo.On("FindUsersByCompany", ctx, suite.companyID, 10, 0).Return(nil, expectedErr).Once()

	users, err := suite.service.ListCompanyUsers(ctx, suite.admin, 10, 0)

	suite.Require().Error(err)
	suite.Nil(users)
	suite.ErrorIs(err, expectedErr)
}

// --- Run Suite ---
func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
