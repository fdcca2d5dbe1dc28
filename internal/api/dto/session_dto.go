package dto

// SessionLoginRequest payload for session issuance. Remember is loosely
// typed: any truthy JSON value asks for the long session.
type SessionLoginRequest struct {
	IDToken  string `json:"idToken"`
	Remember any    `json:"remember"`
}

// RememberMe reports whether Remember is truthy.
func (r SessionLoginRequest) RememberMe() bool {
	switch v := r.Remember.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	default:
		return true
	}
}

// OKResponse is the acknowledgement returned by mutation endpoints.
type OKResponse struct {
	OK bool `json:"ok"`
}

// Acknowledge returns the success body.
func Acknowledge() OKResponse {
	return OKResponse{OK: true}
}
