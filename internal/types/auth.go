package types

import (
	"github.com/go-playground/validator/v10"
)

// AdminLoginRequest represents the admin login request.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate validates the AdminLoginRequest using the validator.
func (r *AdminLoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// AdminLoginResponse carries the session token issued after a successful login.
type AdminLoginResponse struct {
	Token string `json:"token"`
}

// AttendeeSummary is an admin listing row: an attendee plus derived match counts.
type AttendeeSummary struct {
	Attendee     *Attendee `json:"attendee"`
	TopCount     int       `json:"top_count"`
	BroaderCount int       `json:"broader_count"`
	Acknowledged int       `json:"acknowledged_count"`
	HasVector    bool      `json:"has_vector"`
}
