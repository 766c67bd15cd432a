// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthForbidden          = "auth.forbidden"

	// Users
	KeyUserNotFound         = "user.not_found"
	KeyUserCreated          = "user.created"
	KeyUserDeleted          = "user.deleted"
	KeyUserUsernameTaken    = "user.username_taken"
	KeyUserLastAdmin        = "user.last_admin"
	KeyUserPasswordChanged  = "user.password_changed"
	KeyUserWrongPassword    = "user.wrong_password"
	KeyUserPasswordMismatch = "user.password_mismatch"
	KeyUserPasswordTooShort = "user.password_too_short"

	// Products
	KeyProductCreated  = "product.created"
	KeyProductUpdated  = "product.updated"
	KeyProductDeleted  = "product.deleted"
	KeyProductNotFound = "product.not_found"
	KeyProductNoUnits  = "product.no_units"

	// Sales
	KeySaleRecorded          = "sale.recorded"
	KeySaleNotFound          = "sale.not_found"
	KeySaleInsufficientStock = "sale.insufficient_stock"
	KeySaleReverted          = "sale.reverted"
	KeySaleAlreadyReverted   = "sale.already_reverted"
	KeySaleRevertFailed      = "sale.revert_failed"

	// Reports
	KeyReportInvalidWindow = "report.invalid_window"

	// Uploads
	KeyUploadSuccess = "upload.success"
	KeyUploadFailed  = "upload.failed"

	// Rate limiting
	KeyRateLimited = "rate_limit.exceeded"

	KeyInternalError = "error.internal"
)
