// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/services"
	"github.com/javajoker/zuzi-store/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// POST /create-employee
func (h *UserHandler) CreateEmployee(c *gin.Context) {
	if _, ok := authorize(c, auth.CapManageUsers); !ok {
		return
	}

	var req services.CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateEmployee(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": utils.T(c, i18n.KeyUserCreated),
		"user":    user,
	})
}

// GET /manage-users
func (h *UserHandler) ManageUsers(c *gin.Context) {
	if _, ok := authorize(c, auth.CapManageUsers); !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.userService.ListUsers(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// POST /delete-user/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if _, ok := authorize(c, auth.CapManageUsers); !ok {
		return
	}

	id, ok := parseIDParam(c, "id", "user id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": utils.T(c, i18n.KeyUserDeleted),
	})
}

// POST /change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	identity, ok := authorize(c, auth.CapChangeOwnPassword)
	if !ok {
		return
	}

	var req services.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), identity.UserID, &req); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": utils.T(c, i18n.KeyUserPasswordChanged),
	})
}
