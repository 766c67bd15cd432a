package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/zuzi-store/internal/config"
	"github.com/javajoker/zuzi-store/internal/database"
	"github.com/javajoker/zuzi-store/internal/models"
	"github.com/javajoker/zuzi-store/internal/utils"
)

type UserServiceTestSuite struct {
	suite.Suite
	db    *gorm.DB
	users *UserService
	auth  *AuthService
	admin models.User
	ctx   context.Context
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.ctx = context.Background()
	suite.Require().NoError(database.SeedInitialData(suite.db, config.AdminConfig{Username: "admin", Password: "admin123"}))
	suite.Require().NoError(suite.db.Where("username = ?", "admin").First(&suite.admin).Error)

	cfg := &config.Config{
		JWT:     config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 24},
		Session: config.SessionConfig{CookieName: "session", RememberDuration: 30},
	}
	suite.users = NewUserService(suite.db)
	suite.auth = NewAuthService(suite.db, cfg, utils.NewTokenManager(cfg.JWT.SecretKey),
		newFixedClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)))
}

func (suite *UserServiceTestSuite) TestSeedIsIdempotent() {
	suite.Require().NoError(database.SeedInitialData(suite.db, config.AdminConfig{Username: "other", Password: "secret1"}))

	var count int64
	suite.db.Model(&models.User{}).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *UserServiceTestSuite) TestCreateEmployee() {
	user, err := suite.users.CreateEmployee(suite.ctx, &CreateEmployeeRequest{Username: "clerk", Password: "secret1"})
	suite.Require().NoError(err)
	suite.Equal(models.RoleEmployee, user.Role)
	suite.NoError(user.CheckPassword("secret1"))

	_, err = suite.users.CreateEmployee(suite.ctx, &CreateEmployeeRequest{Username: "clerk", Password: "secret2"})
	suite.ErrorIs(err, ErrUsernameTaken)

	_, err = suite.users.CreateEmployee(suite.ctx, &CreateEmployeeRequest{Username: "short", Password: "12345"})
	suite.ErrorIs(err, ErrPasswordTooShort)

	_, err = suite.users.CreateEmployee(suite.ctx, &CreateEmployeeRequest{Username: "a b", Password: "secret1"})
	suite.Error(err)
}

func (suite *UserServiceTestSuite) TestListUsers() {
	_, err := suite.users.CreateEmployee(suite.ctx, &CreateEmployeeRequest{Username: "clerk", Password: "secret1"})
	suite.Require().NoError(err)

	users, total, err := suite.users.ListUsers(suite.ctx, utils.PaginationParams{Page: 1, Limit: 20})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Equal("admin", users[0].Username)
	suite.Equal("clerk", users[1].Username)

	page, total, err := suite.users.ListUsers(suite.ctx, utils.PaginationParams{Page: 2, Limit: 1})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Require().Len(page, 1)
	suite.Equal("clerk", page[0].Username)
}

func (suite *UserServiceTestSuite) TestDeleteUserGuardsLastAdmin() {
	suite.ErrorIs(suite.users.DeleteUser(suite.ctx, suite.admin.ID), ErrLastAdmin)

	second := &models.User{Username: "boss", Role: models.RoleAdmin}
	suite.Require().NoError(second.SetPassword("secret1"))
	suite.Require().NoError(suite.db.Create(second).Error)

	suite.NoError(suite.users.DeleteUser(suite.ctx, suite.admin.ID))
	suite.ErrorIs(suite.users.DeleteUser(suite.ctx, second.ID), ErrLastAdmin)
	suite.ErrorIs(suite.users.DeleteUser(suite.ctx, 999), ErrUserNotFound)
}

func (suite *UserServiceTestSuite) TestDeleteEmployee() {
	clerk, err := suite.users.CreateEmployee(suite.ctx, &CreateEmployeeRequest{Username: "clerk", Password: "secret1"})
	suite.Require().NoError(err)

	suite.NoError(suite.users.DeleteUser(suite.ctx, clerk.ID))

	var count int64
	suite.db.Model(&models.User{}).Where("id = ?", clerk.ID).Count(&count)
	suite.Zero(count)
}

func (suite *UserServiceTestSuite) TestChangePassword() {
	err := suite.users.ChangePassword(suite.ctx, suite.admin.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "newpass1", ConfirmPassword: "newpass1",
	})
	suite.ErrorIs(err, ErrWrongPassword)

	err = suite.users.ChangePassword(suite.ctx, suite.admin.ID, &ChangePasswordRequest{
		CurrentPassword: "admin123", NewPassword: "newpass1", ConfirmPassword: "newpass2",
	})
	suite.ErrorIs(err, ErrPasswordMismatch)

	err = suite.users.ChangePassword(suite.ctx, suite.admin.ID, &ChangePasswordRequest{
		CurrentPassword: "admin123", NewPassword: "abc", ConfirmPassword: "abc",
	})
	suite.ErrorIs(err, ErrPasswordTooShort)

	err = suite.users.ChangePassword(suite.ctx, suite.admin.ID, &ChangePasswordRequest{
		CurrentPassword: "admin123", NewPassword: "newpass1", ConfirmPassword: "newpass1",
	})
	suite.Require().NoError(err)

	_, err = suite.auth.Login(suite.ctx, &LoginRequest{Username: "admin", Password: "admin123"})
	suite.ErrorIs(err, ErrInvalidCredentials)
	_, err = suite.auth.Login(suite.ctx, &LoginRequest{Username: "admin", Password: "newpass1"})
	suite.NoError(err)
}

func (suite *UserServiceTestSuite) TestLogin() {
	resp, err := suite.auth.Login(suite.ctx, &LoginRequest{Username: "admin", Password: "admin123"})
	suite.Require().NoError(err)
	suite.Equal("Bearer", resp.TokenType)
	suite.Zero(resp.CookieMaxAge)
	suite.NotNil(resp.User.LastLoginAt)

	remembered, err := suite.auth.Login(suite.ctx, &LoginRequest{Username: "admin", Password: "admin123", RememberMe: true})
	suite.Require().NoError(err)
	suite.Equal(30*24*3600, remembered.CookieMaxAge)

	_, err = suite.auth.Login(suite.ctx, &LoginRequest{Username: "nobody", Password: "admin123"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	identity, err := suite.auth.Authenticate(suite.ctx, resp.AccessToken)
	suite.Require().NoError(err)
	suite.Equal(suite.admin.ID, identity.UserID)
	suite.True(identity.IsAdmin())
}

func (suite *UserServiceTestSuite) TestAuthenticateDeletedUser() {
	clerk, err := suite.users.CreateEmployee(suite.ctx, &CreateEmployeeRequest{Username: "clerk", Password: "secret1"})
	suite.Require().NoError(err)
	resp, err := suite.auth.Login(suite.ctx, &LoginRequest{Username: "clerk", Password: "secret1"})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.users.DeleteUser(suite.ctx, clerk.ID))

	_, err = suite.auth.Authenticate(suite.ctx, resp.AccessToken)
	suite.ErrorIs(err, ErrUserNotFound)

	_, err = suite.auth.Authenticate(suite.ctx, "not-a-token")
	suite.Error(err)
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
