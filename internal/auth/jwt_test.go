package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.GenerateToken(7, "ada")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "ada", claims.Login)
}

func TestValidateTokenErrors(t *testing.T) {
	m := NewManager("secret", time.Hour)

	expired := NewManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := expired.GenerateToken(1, "old")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrExpiredToken))

	foreign, err := NewManager("other", time.Hour).GenerateToken(1, "x")
	require.NoError(t, err)
	_, err = m.ValidateToken(foreign)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = m.ValidateToken("garbage")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestMiddleware(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, err := m.GenerateToken(42, "ada")
	require.NoError(t, err)

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, 42, id)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + token, want: http.StatusNoContent},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
