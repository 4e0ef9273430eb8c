package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"
	ErrCodeInvalidMarks     = "invalid_marks"

	// Resource errors
	ErrCodeNotFound           = "not_found"
	ErrCodeAssignmentNotFound = "assignment_not_found"
	ErrCodeSubmissionNotFound = "submission_not_found"
	ErrCodeStatsNotFound      = "stats_not_found"
	ErrCodeAlreadyExists      = "already_exists"

	// Business logic errors
	ErrCodeGradeFailed       = "grade_failed"
	ErrCodeStatsInitFailed   = "stats_init_failed"
	ErrCodeStatsUpdateFailed = "stats_update_failed"
	ErrCodeResetFailed       = "monthly_reset_failed"

	// Leaderboard errors
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeStorageError       = "storage_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
