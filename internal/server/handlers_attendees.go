package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AILLCSteve/rotary-networking-app/internal/llm"
	"github.com/AILLCSteve/rotary-networking-app/internal/profile"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// handleRegisterAttendee creates an attendee from the registration form.
func (s *Server) handleRegisterAttendee(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	attendee := req.ToAttendee()
	if err := s.store.CreateAttendee(r.Context(), attendee); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	// Best effort: a missing vector is filled in lazily on the next ranking run.
	s.embedAttendee(r.Context(), attendee)

	s.jsonResponse(w, http.StatusCreated, attendee)
}

// embedAttendee computes and stores the profile embedding for a newly
// registered attendee. Failures are logged, never surfaced to the caller.
func (s *Server) embedAttendee(ctx context.Context, attendee *types.Attendee) {
	if s.client == nil {
		return
	}
	values, err := s.client.Embed(ctx, profile.EmbeddingText(attendee))
	if err != nil {
		log.Printf("[server] embedding for %s failed: %v", attendee.ID, err)
		return
	}
	v := &types.EmbeddingVector{
		AttendeeID: attendee.ID,
		Values:     values,
		Model:      s.client.GetModel(llm.TierLite),
		UpdatedAt:  time.Now(),
	}
	if err := s.store.UpsertVector(ctx, v); err != nil {
		log.Printf("[server] persisting vector for %s failed: %v", attendee.ID, err)
	}
}

// handleDashboard returns an attendee's profile with their match records
// grouped by tier, ordered by score descending within each tier.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	attendeeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid attendee ID")
		return
	}

	attendee, err := s.store.GetAttendee(r.Context(), attendeeID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if attendee == nil {
		s.errorResponse(w, http.StatusNotFound, "Attendee not found")
		return
	}

	matches, err := s.store.ListMatchesForSubject(r.Context(), attendeeID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	top := make([]*types.MatchRecord, 0)
	broader := make([]*types.MatchRecord, 0)
	for _, m := range matches {
		if m.Tier == types.TierTop {
			top = append(top, m)
		} else {
			broader = append(broader, m)
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"attendee":        attendee,
		"top_matches":     top,
		"broader_matches": broader,
	})
}

// handleAcknowledgeMatch marks a match record as seen by its subject.
func (s *Server) handleAcknowledgeMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	match, err := s.store.GetMatch(r.Context(), matchID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if match == nil {
		s.errorResponse(w, http.StatusNotFound, "Match not found")
		return
	}

	if err := s.store.AcknowledgeMatch(r.Context(), matchID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	match.Status = types.StatusAcknowledged
	s.jsonResponse(w, http.StatusOK, match)
}
