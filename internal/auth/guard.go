// internal/auth/guard.go
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/models"
)

type Capability string

const (
	CapBrowse            Capability = "browse"
	CapSell              Capability = "sell"
	CapChangeOwnPassword Capability = "change_own_password"
	CapManageCatalog     Capability = "manage_catalog"
	CapViewReports       Capability = "view_reports"
	CapExport            Capability = "export"
	CapRevertSales       Capability = "revert_sales"
	CapManageUsers       Capability = "manage_users"
)

// Capabilities granted to every authenticated user regardless of role.
var baseCapabilities = map[Capability]bool{
	CapBrowse:            true,
	CapSell:              true,
	CapChangeOwnPassword: true,
}

var roleCapabilities = map[models.Role]map[Capability]bool{
	models.RoleAdmin: {
		CapManageCatalog: true,
		CapViewReports:   true,
		CapExport:        true,
		CapRevertSales:   true,
		CapManageUsers:   true,
	},
	models.RoleEmployee: {},
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID   uint        `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// Decision is the outcome of a capability check. Reason is a translation key.
type Decision struct {
	Allowed bool
	Status  int
	Reason  string
}

func Authorize(id *Identity, capability Capability) Decision {
	if id == nil || id.UserID == 0 {
		return Decision{Status: http.StatusUnauthorized, Reason: i18n.KeyAuthRequired}
	}

	if baseCapabilities[capability] || roleCapabilities[id.Role][capability] {
		return Decision{Allowed: true, Status: http.StatusOK}
	}

	return Decision{Status: http.StatusForbidden, Reason: i18n.KeyAuthForbidden}
}

const contextKeyIdentity = "identity"

func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(contextKeyIdentity, id)
}

func IdentityFromContext(c *gin.Context) (*Identity, bool) {
	if v, exists := c.Get(contextKeyIdentity); exists {
		if id, ok := v.(*Identity); ok && id != nil {
			return id, true
		}
	}
	return nil, false
}
