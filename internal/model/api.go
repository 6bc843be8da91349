package model

// ErrorBody is the JSON payload returned for denied or failed requests.
// The field shape is part of the public contract: clients of the gated
// API match on {"error": "Forbidden", ...}.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error strings used in denial responses.
const (
	ErrorForbidden    = "Forbidden"
	ErrorUnauthorized = "unauthorized"
	ErrorBadRequest   = "Bad Request"
	ErrorInternal     = "Internal Server Error"
)

// StudioAccessMessage is the human-readable text returned when a caller is
// authenticated but lacks the required role.
const StudioAccessMessage = "Creative Studio requires manager or higher role"

// SignInMessage is carried as a query parameter on the unauthenticated
// redirect back to the public entry point.
const SignInMessage = "Please sign in to access Creative Studio"
