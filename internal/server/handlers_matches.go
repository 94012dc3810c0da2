package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/AILLCSteve/rotary-networking-app/internal/pipeline"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// handleGenerateTop runs the research-enriched top-tier generation for an attendee.
func (s *Server) handleGenerateTop(w http.ResponseWriter, r *http.Request) {
	s.generateMatches(w, r, types.TierTop)
}

// handleGenerateBroader runs the broader-tier generation for an attendee.
func (s *Server) handleGenerateBroader(w http.ResponseWriter, r *http.Request) {
	s.generateMatches(w, r, types.TierBroader)
}

func (s *Server) generateMatches(w http.ResponseWriter, r *http.Request, tier types.Tier) {
	attendeeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid attendee ID")
		return
	}

	opts := pipeline.RunOptions{
		Store:      s.store,
		Client:     s.client,
		Researcher: s.researcher(),
		Verbose:    s.verbose,
	}

	result, err := s.run(r.Context(), opts, attendeeID, tier)
	if err != nil {
		s.errorResponse(w, HTTPStatus(classifyRunError(attendeeID, err)), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"subject_id": result.SubjectID,
		"tier":       result.Tier,
		"matches":    result.Matches,
		"fallbacks":  result.Fallbacks,
	})
}

// classifyRunError maps pipeline failures onto the typed API errors.
func classifyRunError(attendeeID uuid.UUID, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return &ErrAttendeeNotFound{AttendeeID: attendeeID}
	case strings.Contains(msg, "consented"):
		return &ErrNoConsent{AttendeeID: attendeeID}
	default:
		return err
	}
}
