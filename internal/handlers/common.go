// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/services"
	"github.com/javajoker/zuzi-store/internal/utils"
)

// authorize runs the capability guard for the current request and writes the
// rejection when it fails.
func authorize(c *gin.Context, capability auth.Capability) (*auth.Identity, bool) {
	identity, _ := auth.IdentityFromContext(c)

	decision := auth.Authorize(identity, capability)
	if decision.Allowed {
		return identity, true
	}

	message := utils.T(c, decision.Reason)
	if decision.Status == http.StatusUnauthorized {
		utils.UnauthorizedResponse(c, message)
	} else {
		utils.ForbiddenResponse(c, message)
	}
	return nil, false
}

func parseIDParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyValidationInvalid, label), nil)
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes and validates the request body into req.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// respondError maps service errors onto the API error envelope.
func respondError(c *gin.Context, err error) {
	if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	var revertErr *services.RevertError
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
	case errors.Is(err, services.ErrSaleNotFound):
		utils.NotFoundResponse(c, i18n.KeySaleNotFound)
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, i18n.KeyUserNotFound)
	case errors.Is(err, services.ErrNoUnits):
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyProductNoUnits), nil)
	case errors.Is(err, services.ErrInvalidCost),
		errors.Is(err, services.ErrInvalidSize),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidWindow):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrInsufficientStock):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrAlreadyReverted):
		utils.ConflictResponse(c, utils.T(c, i18n.KeySaleAlreadyReverted))
	case errors.Is(err, services.ErrLastAdmin):
		utils.ConflictResponse(c, utils.T(c, i18n.KeyUserLastAdmin))
	case errors.Is(err, services.ErrUsernameTaken):
		utils.ConflictResponse(c, utils.T(c, i18n.KeyUserUsernameTaken))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, utils.T(c, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrWrongPassword):
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyUserWrongPassword), nil)
	case errors.Is(err, services.ErrPasswordMismatch):
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyUserPasswordMismatch), nil)
	case errors.Is(err, services.ErrPasswordTooShort):
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyUserPasswordTooShort), nil)
	case errors.As(err, &revertErr):
		utils.UnprocessableResponse(c, utils.T(c, i18n.KeySaleRevertFailed, revertErr.Cause.Error()))
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled service error")
		c.Error(err)
		utils.InternalErrorResponse(c, "")
	}
}
