package block_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
	"github.com/imadgeboyega/matchmaking-backend/internal/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(h http.HandlerFunc, userID int64, body string, vars map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = req.WithContext(auth.WithSession(context.Background(), &auth.Session{UserID: userID}))
	req = mux.SetURLVars(req, vars)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandlers(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := block.NewHandler(svc)

	rec := call(h.Block, alice, "", map[string]string{"userId": "2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User blocked successfully"}`, rec.Body.String())

	rec = call(h.Block, alice, "", map[string]string{"userId": "2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(h.Block, alice, "", map[string]string{"userId": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(h.BlockedUsers, alice, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var blocked []block.BlockedUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &blocked))
	require.Len(t, blocked, 1)
	assert.Equal(t, bob, blocked[0].ID)

	rec = call(h.Unblock, alice, "", map[string]string{"userId": "2"})
	assert.JSONEq(t, `{"message":"User unblocked successfully"}`, rec.Body.String())

	rec = call(h.Report, alice, `{"message":"rude"}`, map[string]string{"userId": "3"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Report submitted successfully"}`, rec.Body.String())

	rec = call(h.Report, alice, `{}`, map[string]string{"userId": "3"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Report message is required"}`, rec.Body.String())
}
