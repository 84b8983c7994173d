package identity

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *Tokens) {
	t.Helper()
	tokens := NewTokens("unit-test-secret", time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(log, newTestStore(t), tokens), tokens
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandler_Register(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postJSON(t, handler.Register, map[string]string{
		"username": "alice",
		"password": "lutong-bahay-123",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var user User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestHandler_RegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "short username", body: map[string]string{"username": "al", "password": "lutong-bahay-123"}},
		{name: "short password", body: map[string]string{"username": "alice", "password": "short"}},
		{name: "non-alphanumeric username", body: map[string]string{"username": "alice!", "password": "lutong-bahay-123"}},
		{name: "missing password", body: map[string]string{"username": "alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t)
			rec := postJSON(t, handler.Register, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_RegisterDuplicate(t *testing.T) {
	handler, _ := newTestHandler(t)
	body := map[string]string{"username": "alice", "password": "lutong-bahay-123"}

	rec := postJSON(t, handler.Register, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Register, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_Login(t *testing.T) {
	handler, tokens := newTestHandler(t)
	body := map[string]string{"username": "alice", "password": "lutong-bahay-123"}

	rec := postJSON(t, handler.Register, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Login, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp authResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alice", resp.User.Username)

	claims, err := tokens.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestHandler_LoginBadCredentials(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postJSON(t, handler.Register, map[string]string{
		"username": "alice",
		"password": "lutong-bahay-123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Login, map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, handler.Login, map[string]string{
		"username": "nobody99",
		"password": "whatever-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_InvalidJSONBody(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
