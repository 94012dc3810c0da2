package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AILLCSteve/rotary-networking-app/internal/llm"
	"github.com/AILLCSteve/rotary-networking-app/internal/profile"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// adminSubject is the fixed claims subject for the single organizer login.
var adminSubject = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// regenConcurrency bounds parallel embedding calls during bulk regeneration.
const regenConcurrency = 4

// handleAdminLogin verifies the organizer credential and issues a session token.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req types.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if s.adminPasswordHash == "" {
		s.errorResponse(w, http.StatusInternalServerError, "Admin login is not configured")
		return
	}

	if req.Username != s.adminUsername || !s.passwordCfg.VerifyPassword(req.Password, s.adminPasswordHash) {
		err := &ErrInvalidCredentials{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	token, err := s.jwtService.GenerateToken(adminSubject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	s.jsonResponse(w, http.StatusOK, types.AdminLoginResponse{Token: token})
}

// handleListAttendees returns every attendee with derived match counts.
func (s *Server) handleListAttendees(w http.ResponseWriter, r *http.Request) {
	attendees, err := s.store.ListAttendees(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	counts, err := s.store.CountMatchesBySubject(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	vectorIDs, err := s.store.ListVectorIDs(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	summaries := make([]types.AttendeeSummary, 0, len(attendees))
	for _, a := range attendees {
		c := counts[a.ID]
		summaries = append(summaries, types.AttendeeSummary{
			Attendee:     a,
			TopCount:     c.Top,
			BroaderCount: c.Broader,
			Acknowledged: c.Acknowledged,
			HasVector:    vectorIDs[a.ID],
		})
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"attendees": summaries,
		"total":     len(summaries),
	})
}

// handleDeleteAttendee removes an attendee; vectors and match records
// cascade in the database.
func (s *Server) handleDeleteAttendee(w http.ResponseWriter, r *http.Request) {
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

	if err := s.store.DeleteAttendee(r.Context(), attendeeID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"deleted": attendeeID.String()})
}

// handleRegenerateEmbeddings recomputes the embedding vector of every
// attendee, a bounded number at a time. Per-attendee failures are collected
// rather than aborting the whole batch.
func (s *Server) handleRegenerateEmbeddings(w http.ResponseWriter, r *http.Request) {
	if s.client == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "No LLM client configured")
		return
	}

	attendees, err := s.store.ListAttendees(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	var mu sync.Mutex
	var failed []string

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(regenConcurrency)

	for _, a := range attendees {
		g.Go(func() error {
			values, err := s.client.Embed(ctx, profile.EmbeddingText(a))
			if err != nil {
				log.Printf("[admin] embedding %s failed: %v", a.ID, err)
				mu.Lock()
				failed = append(failed, a.ID.String())
				mu.Unlock()
				return nil
			}

			v := &types.EmbeddingVector{
				AttendeeID: a.ID,
				Values:     values,
				Model:      s.client.GetModel(llm.TierLite),
				UpdatedAt:  time.Now(),
			}
			if err := s.store.UpsertVector(ctx, v); err != nil {
				log.Printf("[admin] persisting vector for %s failed: %v", a.ID, err)
				mu.Lock()
				failed = append(failed, a.ID.String())
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Regeneration failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"total":       len(attendees),
		"regenerated": len(attendees) - len(failed),
		"failed":      failed,
	})
}

// handleResetMatches deletes every match record so the event can be rerun.
func (s *Server) handleResetMatches(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.store.ResetMatches(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"deleted": deleted})
}
