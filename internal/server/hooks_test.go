package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hookBody(jwt string) map[string]any {
	return map[string]any{"data": map[string]any{"jwt": jwt}}
}

func TestBeforeUserCreatedBlocksUninvitedAccount(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/beforeUserCreated", "", hookBody(ts.hookEvent(t, "stranger")))
	require.Equal(t, http.StatusNotFound, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", payload.Status)
	assert.Equal(t, domain.MsgNoInvitation, payload.Message)
}

func TestBeforeUserCreatedBlocksMissingUserRecord(t *testing.T) {
	ts := newTestServer(t, nil)
	owner := "uid9"
	require.NoError(t, ts.db.Create(&domain.InvitationCode{
		Code:      "ORPHAN01",
		Used:      true,
		UsedBy:    &owner,
		CreatedAt: time.Now().UTC(),
	}).Error)

	rec := ts.do(t, http.MethodPost, "/beforeUserCreated", "", hookBody(ts.hookEvent(t, owner)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "FAILED_PRECONDITION", payload.Status)
	assert.Equal(t, domain.MsgRecordMismatch, payload.Message)
}

func TestBeforeUserCreatedRejectsBadEvents(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seedCodes(t, "ABCD1234")
	require.Equal(t, http.StatusOK, ts.redeem(t, "uid1", "ABCD1234").Code)

	rec := ts.do(t, http.MethodPost, "/beforeUserCreated", "", hookBody(ts.token(t, "uid1", "")))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decodeError(t, rec).Status)

	rec = ts.do(t, http.MethodPost, "/beforeUserCreated", "", map[string]any{"data": map[string]any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, rec).Status)
}
