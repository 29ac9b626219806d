package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/peermirror/internal/client/client"
	"github.com/dmitrijs2005/peermirror/internal/client/models"
	"github.com/dmitrijs2005/peermirror/internal/client/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api    *fakeAPI
	store  *state.Store
	tokens *fakeTokens
	sink   *fakeSink
	rooms  *fakeRooms
	player *fakePlayer
	svc    SessionService
}

func newHarness() *harness {
	h := &harness{
		api:    &fakeAPI{},
		store:  state.NewStore(),
		tokens: &fakeTokens{},
		sink:   &fakeSink{},
		rooms:  &fakeRooms{},
		player: &fakePlayer{},
	}
	h.svc = NewSessionService(h.api, h.store, h.tokens, h.sink, h.rooms, h.player, nil)
	return h
}

func authResult(id, username, token string) *models.AuthResult {
	return &models.AuthResult{
		User:  &models.Peer{ID: id, Username: username, IsActive: true},
		Token: token,
	}
}

func TestLogin_StoresSession(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.api.AuthRet = authResult("u1", "alice", "jwt-1")

	payload := client.Credentials{Email: "a@b", Password: "p"}
	resp := h.svc.Login(ctx, payload)

	require.False(t, resp.HasError)
	require.NotNil(t, resp.Result)
	assert.Equal(t, payload, h.api.LastPayload)
	assert.Equal(t, []setCall{{"jwt-1", true}}, h.tokens.Sets)

	sess := h.store.Snapshot()
	assert.Equal(t, "jwt-1", sess.Token)
	require.NotNil(t, sess.User)
	assert.Equal(t, "alice", sess.User.Username)

	_, ok := h.store.Find("u1")
	assert.True(t, ok)
	assert.Empty(t, h.sink.Errors)
}

func TestLogin_ReplacesExistingSelfEntry(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.store.SetPeers(ctx, []models.Peer{{ID: "u1", Username: "old"}, {ID: "u2"}})
	h.api.AuthRet = authResult("u1", "fresh", "t")

	h.svc.Login(ctx, nil)

	p, ok := h.store.Find("u1")
	require.True(t, ok)
	assert.Equal(t, "fresh", p.Username)
	assert.Equal(t, 2, h.store.Len())
}

func TestLogin_KeepsOAuthProfile(t *testing.T) {
	h := newHarness()
	res := authResult("u1", "alice", "t")
	res.OAuth = &models.Profile{AvatarURL: "https://cdn/a.png"}
	h.api.AuthRet = res

	h.svc.Login(context.Background(), nil)

	sess := h.store.Snapshot()
	require.NotNil(t, sess.OAuth)
	assert.Equal(t, "https://cdn/a.png", sess.OAuth.AvatarURL)
}

func TestAuthFamily_FailureFlagsAndDoesNotMutate(t *testing.T) {
	ops := map[string]func(SessionService) Response[*models.AuthResult]{
		"register": func(s SessionService) Response[*models.AuthResult] { return s.Register(context.Background(), nil) },
		"activate": func(s SessionService) Response[*models.AuthResult] { return s.Activate(context.Background(), nil) },
		"update username": func(s SessionService) Response[*models.AuthResult] {
			return s.UpdateUsername(context.Background(), nil)
		},
		"update password": func(s SessionService) Response[*models.AuthResult] {
			return s.UpdatePassword(context.Background(), nil)
		},
		"login": func(s SessionService) Response[*models.AuthResult] { return s.Login(context.Background(), nil) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			h.api.AuthErr = client.ErrUnauthorized

			resp := op(h.svc)

			assert.True(t, resp.HasError)
			assert.Nil(t, resp.Result)
			require.Len(t, h.sink.Errors, 1)
			assert.ErrorIs(t, h.sink.Errors[0], client.ErrUnauthorized)
			assert.Empty(t, h.tokens.Sets)
			assert.Zero(t, h.store.Len())
			assert.Empty(t, h.store.Snapshot().Token)
			assert.Empty(t, h.sink.Successes)
		})
	}
}

func TestAuthFamily_SuccessRunsStoreSession(t *testing.T) {
	ops := map[string]func(SessionService) Response[*models.AuthResult]{
		"register": func(s SessionService) Response[*models.AuthResult] { return s.Register(context.Background(), nil) },
		"update username": func(s SessionService) Response[*models.AuthResult] {
			return s.UpdateUsername(context.Background(), nil)
		},
		"update password": func(s SessionService) Response[*models.AuthResult] {
			return s.UpdatePassword(context.Background(), nil)
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			h.api.AuthRet = authResult("u9", "nine", "tok-9")

			resp := op(h.svc)

			assert.False(t, resp.HasError)
			assert.Equal(t, "tok-9", h.store.Snapshot().Token)
			_, ok := h.store.Find("u9")
			assert.True(t, ok)
		})
	}
}

func TestActivate_SendsSuccessNotice(t *testing.T) {
	h := newHarness()
	h.api.AuthRet = authResult("u1", "alice", "t")

	resp := h.svc.Activate(context.Background(), client.Activation{Token: "code"})

	assert.False(t, resp.HasError)
	assert.Equal(t, []string{MsgActivated}, h.sink.Successes)
}

func TestLogin_MissingUserIsAnError(t *testing.T) {
	h := newHarness()
	h.api.AuthRet = &models.AuthResult{Token: "t"}

	resp := h.svc.Login(context.Background(), nil)

	assert.True(t, resp.HasError)
	require.Len(t, h.sink.Errors, 1)
	assert.ErrorIs(t, h.sink.Errors[0], state.ErrNoUser)
	assert.Empty(t, h.tokens.Sets)
}

func TestLogin_TokenPersistFailure(t *testing.T) {
	h := newHarness()
	h.api.AuthRet = authResult("u1", "alice", "t")
	h.tokens.SetErr = errors.New("disk full")

	resp := h.svc.Login(context.Background(), nil)

	assert.True(t, resp.HasError)
	require.Len(t, h.sink.Errors, 1)
	assert.Empty(t, h.store.Snapshot().Token)
	assert.Zero(t, h.store.Len())
}

func TestReset_FailureReportedWithoutFlag(t *testing.T) {
	h := newHarness()
	h.api.ResetErr = client.ErrUnavailable

	resp := h.svc.Reset(context.Background(), client.ResetRequest{Email: "a@b"})

	assert.False(t, resp.HasError)
	require.Len(t, h.sink.Errors, 1)
	assert.ErrorIs(t, h.sink.Errors[0], client.ErrUnavailable)
}

func TestReset_PlainResultLeavesSession(t *testing.T) {
	h := newHarness()
	h.api.ResetRet = json.RawMessage(`{"sent":true}`)

	resp := h.svc.Reset(context.Background(), nil)

	assert.JSONEq(t, `{"sent":true}`, string(resp.Result))
	assert.Empty(t, h.tokens.Sets)
	assert.Nil(t, h.store.Snapshot().User)
}

func TestReset_AuthResultStoresSession(t *testing.T) {
	h := newHarness()
	h.api.ResetRet = json.RawMessage(`{"user":{"_id":"u1","username":"alice"},"token":"t2"}`)

	h.svc.Reset(context.Background(), nil)

	sess := h.store.Snapshot()
	assert.Equal(t, "t2", sess.Token)
	require.NotNil(t, sess.User)
	assert.Equal(t, "u1", sess.User.ID)
}

func TestReset_ResponseAfterLogoutIsDiscarded(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.api.ResetRet = json.RawMessage(`{"user":{"_id":"u1","username":"alice"},"token":"late"}`)
	h.api.ResetHook = func(ctx context.Context) { h.svc.Logout(ctx) }

	resp := h.svc.Reset(ctx, nil)

	assert.False(t, resp.HasError)
	assert.NotNil(t, resp.Result)
	assert.Empty(t, h.sink.Errors)
	assert.Empty(t, h.tokens.Sets)
	assert.Empty(t, h.store.Snapshot().Token)
	assert.Zero(t, h.store.Len())
}

func TestMe_NoTokenNoRequest(t *testing.T) {
	h := newHarness()

	resp := h.svc.Me(context.Background())

	assert.False(t, resp.HasError)
	assert.Nil(t, resp.Result)
	assert.Empty(t, h.api.Calls)
	assert.Empty(t, h.store.Snapshot().Token)
}

func TestMe_PartialThenFull(t *testing.T) {
	h := newHarness()
	h.tokens.token, h.tokens.has = "persisted", true

	var during state.Session
	h.api.MeHook = func(context.Context) (*models.AuthResult, error) {
		during = h.store.Snapshot()
		return authResult("u1", "alice", "persisted"), nil
	}

	resp := h.svc.Me(context.Background())

	require.False(t, resp.HasError)
	assert.Equal(t, "persisted", during.Token)
	assert.Nil(t, during.User)

	after := h.store.Snapshot()
	require.NotNil(t, after.User)
	assert.Equal(t, "u1", after.User.ID)
}

func TestMe_FailureKeepsPartialSession(t *testing.T) {
	h := newHarness()
	h.tokens.token, h.tokens.has = "persisted", true
	h.api.AuthErr = client.ErrUnauthorized

	resp := h.svc.Me(context.Background())

	assert.True(t, resp.HasError)
	require.Len(t, h.sink.Errors, 1)
	sess := h.store.Snapshot()
	assert.Equal(t, "persisted", sess.Token)
	assert.Nil(t, sess.User)
}

func TestMe_TokenReadFailure(t *testing.T) {
	h := newHarness()
	h.tokens.GetErr = errors.New("locked")

	resp := h.svc.Me(context.Background())

	assert.True(t, resp.HasError)
	assert.Empty(t, h.api.Calls)
	require.Len(t, h.sink.Errors, 1)
}

func TestLogout_ClearsSessionKeepsSelfPeer(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.api.AuthRet = authResult("u1", "alice", "t")
	h.svc.Login(ctx, nil)
	h.rooms.Rooms = []models.Room{{ID: "r1"}}
	h.rooms.Room = &models.Room{ID: "r1"}

	h.svc.Logout(ctx)

	assert.Nil(t, h.rooms.Rooms)
	assert.Nil(t, h.rooms.Room)
	assert.Equal(t, 1, h.rooms.SetRoomsN)
	assert.Equal(t, 1, h.rooms.SetRoomN)
	assert.Equal(t, 1, h.tokens.Cleared)
	assert.Equal(t, []string{SoundLogout}, h.player.Played)

	sess := h.store.Snapshot()
	assert.Empty(t, sess.Token)
	assert.Nil(t, sess.User)
	assert.Nil(t, sess.OAuth)

	_, ok := h.store.Find("u1")
	assert.True(t, ok)
}

func TestLogin_ResponseAfterLogoutIsDiscarded(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.api.LoginHook = func(ctx context.Context) (*models.AuthResult, error) {
		h.svc.Logout(ctx)
		return authResult("u1", "alice", "late"), nil
	}

	resp := h.svc.Login(ctx, nil)

	assert.True(t, resp.HasError)
	assert.Empty(t, h.sink.Errors)
	assert.Empty(t, h.tokens.Sets)
	assert.Empty(t, h.store.Snapshot().Token)
	assert.Zero(t, h.store.Len())
}
