// Package types provides type definitions for structured data used throughout the matchmaking system.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Attendee represents a registered networking-event participant.
// Profile fields are captured once at registration and are immutable afterward.
type Attendee struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Organization string    `json:"organization,omitempty"`
	Role         string    `json:"role,omitempty"`
	Industry     string    `json:"industry,omitempty"`
	City         string    `json:"city,omitempty"`

	// Free-text business fields. Assets and Needs are comma-separated
	// capability phrases as typed by the attendee.
	RevenueDriver string `json:"revenue_driver,omitempty"`
	Constraint    string `json:"constraint,omitempty"`
	Assets        string `json:"assets,omitempty"`
	Needs         string `json:"needs,omitempty"`
	FunFact       string `json:"fun_fact,omitempty"`

	// Consent controls whether the attendee may be shown to or matched
	// with other attendees.
	Consent   bool      `json:"consent"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest represents the request to register a new attendee.
type RegisterRequest struct {
	Name          string `json:"name" validate:"required,min=1"`
	Organization  string `json:"organization,omitempty"`
	Role          string `json:"role,omitempty"`
	Industry      string `json:"industry,omitempty"`
	City          string `json:"city,omitempty"`
	RevenueDriver string `json:"revenue_driver,omitempty"`
	Constraint    string `json:"constraint,omitempty"`
	Assets        string `json:"assets,omitempty"`
	Needs         string `json:"needs,omitempty"`
	FunFact       string `json:"fun_fact,omitempty"`
	Consent       bool   `json:"consent"`
}

// Validate validates the RegisterRequest using the validator.
func (r *RegisterRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ToAttendee converts the request into an Attendee with a fresh ID.
func (r *RegisterRequest) ToAttendee() *Attendee {
	return &Attendee{
		ID:            uuid.New(),
		Name:          r.Name,
		Organization:  r.Organization,
		Role:          r.Role,
		Industry:      r.Industry,
		City:          r.City,
		RevenueDriver: r.RevenueDriver,
		Constraint:    r.Constraint,
		Assets:        r.Assets,
		Needs:         r.Needs,
		FunFact:       r.FunFact,
		Consent:       r.Consent,
		CreatedAt:     time.Now().UTC(),
	}
}

// EmbeddingVector is the semantic embedding of an attendee's concatenated
// profile text. At most one vector exists per attendee; regeneration
// overwrites in place.
type EmbeddingVector struct {
	AttendeeID uuid.UUID `json:"attendee_id"`
	Values     []float32 `json:"values"`
	Model      string    `json:"model,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
