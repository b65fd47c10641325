package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	token, err := SignSessionToken("sess-1", "secret", time.Hour)
	require.NoError(t, err)

	sid, err := ParseSessionToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sid)
}

func TestSessionToken_Rejected(t *testing.T) {
	token, err := SignSessionToken("sess-1", "secret", time.Hour)
	require.NoError(t, err)
	expired, err := SignSessionToken("sess-1", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)

	_, err = ParseSessionToken(expired, "secret")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)

	_, err = ParseSessionToken("garbage", "secret")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Email  string `json:"email" validate:"required,email"`
		Mobile string `json:"mobile" validate:"required,mobile"`
	}

	assert.NoError(t, ValidateStruct(input{Email: "a@b.co", Mobile: "+2348012345678"}))

	err := ValidateStruct(input{Email: "nope", Mobile: "12345"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email must be a valid email")
	assert.Contains(t, err.Error(), "Mobile must be a valid mobile number")
}

func TestRespondWithAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithAppError(rec, errs.NotAuthorized("Cannot send message: User is blocked."))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Cannot send message: User is blocked.", body["error"])
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42", "userId")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "abc", "-1", "0"} {
		_, err := ParseID(raw, "userId")
		assert.ErrorIs(t, err, errs.ErrInvalidOperation, raw)
	}
}
