package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeValidator accepts exactly one token string.
type fakeValidator struct {
	validToken string
	subject    uuid.UUID
}

type fakeClaims struct {
	subject uuid.UUID
}

func (c *fakeClaims) SubjectID() uuid.UUID { return c.subject }

func (v *fakeValidator) ValidateToken(tokenString string) (SubjectGetter, error) {
	if tokenString != v.validToken {
		return nil, fmt.Errorf("invalid token")
	}
	return &fakeClaims{subject: v.subject}, nil
}

func protectedHandler(t *testing.T, wantSubject uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := GetSubject(r)
		require.NoError(t, err)
		assert.Equal(t, wantSubject, subject)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	subject := uuid.New()
	validator := &fakeValidator{validToken: "good-token", subject: subject}
	handler := AuthMiddleware(validator)(protectedHandler(t, subject))

	req := httptest.NewRequest("GET", "/admin/attendees", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_CaseInsensitiveBearer(t *testing.T) {
	subject := uuid.New()
	validator := &fakeValidator{validToken: "good-token", subject: subject}
	handler := AuthMiddleware(validator)(protectedHandler(t, subject))

	req := httptest.NewRequest("GET", "/admin/attendees", nil)
	req.Header.Set("Authorization", "bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	validator := &fakeValidator{validToken: "good-token", subject: uuid.New()}
	handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", "good-token"},
		{"wrong scheme", "Basic good-token"},
		{"invalid token", "Bearer bad-token"},
		{"empty token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/attendees", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestGetSubject_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	_, err := GetSubject(req)
	assert.Error(t, err)
}
