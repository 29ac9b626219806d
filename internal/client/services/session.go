package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/peermirror/internal/client/client"
	"github.com/dmitrijs2005/peermirror/internal/client/models"
	"github.com/dmitrijs2005/peermirror/internal/client/state"
	"github.com/dmitrijs2005/peermirror/internal/logging"
)

const (
	// MsgActivated is the notice sent after a successful activation.
	MsgActivated = "Account was successfully activated"

	// SoundLogout is played when the session ends.
	SoundLogout = "connection_pull"
)

// SessionService drives the local session through the authentication API.
//
// Contract:
//   - Register, Activate, UpdateUsername, UpdatePassword, Login: one request;
//     on success the token is persisted, the session is stored and the
//     directory's self entry is replaced with the returned user.
//   - Reset: one request; the result is returned as is and stored as a
//     session only when it carries a user and a token. Failure is reported
//     to the sink but HasError stays false.
//   - Me: no request without a persisted token; otherwise a partial session
//     carrying only the token is set before the request.
//   - Logout: resets rooms, clears the session and the persisted token and
//     plays the logout sound. The self peer stays in the directory.
//
// A response that arrives after Logout is discarded.
type SessionService interface {
	Register(ctx context.Context, payload any) Response[*models.AuthResult]
	Activate(ctx context.Context, payload any) Response[*models.AuthResult]
	Reset(ctx context.Context, payload any) Response[json.RawMessage]
	UpdateUsername(ctx context.Context, payload any) Response[*models.AuthResult]
	UpdatePassword(ctx context.Context, payload any) Response[*models.AuthResult]
	Login(ctx context.Context, payload any) Response[*models.AuthResult]
	Me(ctx context.Context) Response[*models.AuthResult]
	Logout(ctx context.Context)
}

type sessionService struct {
	api    client.Client
	state  SessionState
	tokens TokenStore
	sink   ErrorSink
	rooms  RoomResetter
	sound  SoundPlayer
	log    logging.Logger
}

// NewSessionService wires a SessionService. log may be nil.
func NewSessionService(api client.Client, st SessionState, tokens TokenStore, sink ErrorSink,
	rooms RoomResetter, sound SoundPlayer, log logging.Logger) SessionService {
	if log == nil {
		log = logging.Nop()
	}
	return &sessionService{
		api:    api,
		state:  st,
		tokens: tokens,
		sink:   sink,
		rooms:  rooms,
		sound:  sound,
		log:    log.With("module", "session"),
	}
}

func (s *sessionService) Register(ctx context.Context, payload any) Response[*models.AuthResult] {
	return s.authenticate(ctx, "register", true, func(ctx context.Context) (*models.AuthResult, error) {
		return s.api.Register(ctx, payload)
	})
}

func (s *sessionService) Activate(ctx context.Context, payload any) Response[*models.AuthResult] {
	resp := s.authenticate(ctx, "activate", true, func(ctx context.Context) (*models.AuthResult, error) {
		return s.api.Activate(ctx, payload)
	})
	if !resp.HasError && resp.Result != nil {
		s.sink.Success(ctx, MsgActivated)
	}
	return resp
}

func (s *sessionService) Reset(ctx context.Context, payload any) Response[json.RawMessage] {
	gen := s.state.Generation()
	raw, err := s.api.Reset(ctx, payload)
	if err != nil {
		s.fail(ctx, "reset", err)
		return Response[json.RawMessage]{}
	}

	var res models.AuthResult
	if json.Unmarshal(raw, &res) == nil && res.User != nil && res.User.ID != "" && res.Token != "" {
		err := s.storeSession(ctx, gen, &res)
		switch {
		case errors.Is(err, state.ErrStaleSession):
			s.log.Warn(ctx, "discarding response for an ended session", "op", "reset")
		case err != nil:
			s.fail(ctx, "reset", err)
		}
	}
	return Response[json.RawMessage]{Result: raw}
}

func (s *sessionService) UpdateUsername(ctx context.Context, payload any) Response[*models.AuthResult] {
	return s.authenticate(ctx, "update username", true, func(ctx context.Context) (*models.AuthResult, error) {
		return s.api.UpdateUsername(ctx, payload)
	})
}

func (s *sessionService) UpdatePassword(ctx context.Context, payload any) Response[*models.AuthResult] {
	return s.authenticate(ctx, "update password", true, func(ctx context.Context) (*models.AuthResult, error) {
		return s.api.UpdatePassword(ctx, payload)
	})
}

func (s *sessionService) Login(ctx context.Context, payload any) Response[*models.AuthResult] {
	return s.authenticate(ctx, "login", true, func(ctx context.Context) (*models.AuthResult, error) {
		return s.api.Login(ctx, payload)
	})
}

func (s *sessionService) Me(ctx context.Context) Response[*models.AuthResult] {
	token, ok, err := s.tokens.Get(ctx)
	if err != nil {
		s.fail(ctx, "me", fmt.Errorf("read token: %w", err))
		return Response[*models.AuthResult]{HasError: true}
	}
	if !ok {
		return Response[*models.AuthResult]{}
	}

	gen := s.state.Generation()
	if err := s.state.SetPartialSession(gen, token); err != nil {
		s.log.Warn(ctx, "partial session rejected", "err", err)
		return Response[*models.AuthResult]{}
	}

	return s.authenticateAt(ctx, gen, "me", true, s.api.Me)
}

func (s *sessionService) Logout(ctx context.Context) {
	s.rooms.SetRooms(nil)
	s.rooms.SetRoom(nil)
	s.state.ClearSession()
	if err := s.tokens.Clear(ctx); err != nil {
		s.fail(ctx, "logout", fmt.Errorf("clear token: %w", err))
	}
	s.sound.Play(ctx, SoundLogout)
	s.log.Info(ctx, "logged out")
}

func (s *sessionService) authenticate(ctx context.Context, op string, flag bool,
	call func(context.Context) (*models.AuthResult, error)) Response[*models.AuthResult] {
	return s.authenticateAt(ctx, s.state.Generation(), op, flag, call)
}

// authenticateAt issues call and stores its result under session
// generation gen.
func (s *sessionService) authenticateAt(ctx context.Context, gen uint64, op string, flag bool,
	call func(context.Context) (*models.AuthResult, error)) Response[*models.AuthResult] {
	res, err := call(ctx)
	if err == nil {
		err = s.storeSession(ctx, gen, res)
	}
	if errors.Is(err, state.ErrStaleSession) {
		s.log.Warn(ctx, "discarding response for an ended session", "op", op)
		return Response[*models.AuthResult]{HasError: flag}
	}
	if err != nil {
		s.fail(ctx, op, err)
		return Response[*models.AuthResult]{HasError: flag}
	}
	s.log.Info(ctx, "session stored", "op", op, "user_id", res.User.ID)
	return Response[*models.AuthResult]{Result: res}
}

// storeSession persists the token, records the session and refreshes the
// self entry of the directory.
func (s *sessionService) storeSession(ctx context.Context, gen uint64, res *models.AuthResult) error {
	if res == nil || res.User == nil || res.User.ID == "" {
		return state.ErrNoUser
	}
	if s.state.Generation() != gen {
		return state.ErrStaleSession
	}
	if err := s.tokens.Set(ctx, res.Token, true); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.state.StoreSession(ctx, gen, *res); err != nil {
		if errors.Is(err, state.ErrStaleSession) {
			// Logout ran between the check above and now.
			_ = s.tokens.Clear(ctx)
		}
		return err
	}
	s.state.ReplaceIdentity(ctx, *res.User)
	return nil
}

func (s *sessionService) fail(ctx context.Context, op string, err error) {
	s.log.Error(ctx, "request failed", "op", op, "err", err)
	s.sink.Error(ctx, fmt.Errorf("%s: %w", op, err))
}
