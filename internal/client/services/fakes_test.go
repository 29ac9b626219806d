package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/peermirror/internal/client/client"
	"github.com/dmitrijs2005/peermirror/internal/client/models"
)

// fakeAPI implements client.Client. Each call runs the matching hook if set,
// otherwise returns the canned result and error.
type fakeAPI struct {
	AuthRet *models.AuthResult
	AuthErr error

	ResetRet json.RawMessage
	ResetErr error

	PeersRet []models.Peer
	PeersErr error

	PeerRet *models.Peer
	PeerErr error

	MeHook    func(ctx context.Context) (*models.AuthResult, error)
	LoginHook func(ctx context.Context) (*models.AuthResult, error)
	ResetHook func(ctx context.Context)

	Calls       []string
	LastPayload any
	LastPeerID  string
}

func (f *fakeAPI) auth(op string, payload any) (*models.AuthResult, error) {
	f.Calls = append(f.Calls, op)
	f.LastPayload = payload
	return f.AuthRet, f.AuthErr
}

func (f *fakeAPI) Register(_ context.Context, p any) (*models.AuthResult, error) {
	return f.auth("register", p)
}
func (f *fakeAPI) Activate(_ context.Context, p any) (*models.AuthResult, error) {
	return f.auth("activate", p)
}
func (f *fakeAPI) UpdateUsername(_ context.Context, p any) (*models.AuthResult, error) {
	return f.auth("update_username", p)
}
func (f *fakeAPI) UpdatePassword(_ context.Context, p any) (*models.AuthResult, error) {
	return f.auth("update_password", p)
}

func (f *fakeAPI) Login(ctx context.Context, p any) (*models.AuthResult, error) {
	if f.LoginHook != nil {
		f.Calls = append(f.Calls, "login")
		return f.LoginHook(ctx)
	}
	return f.auth("login", p)
}

func (f *fakeAPI) Me(ctx context.Context) (*models.AuthResult, error) {
	if f.MeHook != nil {
		f.Calls = append(f.Calls, "me")
		return f.MeHook(ctx)
	}
	return f.auth("me", nil)
}

func (f *fakeAPI) Reset(ctx context.Context, p any) (json.RawMessage, error) {
	f.Calls = append(f.Calls, "reset")
	f.LastPayload = p
	if f.ResetHook != nil {
		f.ResetHook(ctx)
	}
	return f.ResetRet, f.ResetErr
}

func (f *fakeAPI) GetPeers(context.Context) ([]models.Peer, error) {
	f.Calls = append(f.Calls, "get_peers")
	return f.PeersRet, f.PeersErr
}

func (f *fakeAPI) GetPeer(_ context.Context, id string) (*models.Peer, error) {
	f.Calls = append(f.Calls, "get_peer")
	f.LastPeerID = id
	return f.PeerRet, f.PeerErr
}

func (f *fakeAPI) Close() error { return nil }

var _ client.Client = (*fakeAPI)(nil)

type setCall struct {
	Token  string
	Secure bool
}

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	has     bool
	GetErr  error
	SetErr  error
	Sets    []setCall
	Cleared int
}

func (f *fakeTokens) Get(context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.has, f.GetErr
}

func (f *fakeTokens) Set(_ context.Context, token string, secure bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.Sets = append(f.Sets, setCall{token, secure})
	f.token, f.has = token, token != ""
	return nil
}

func (f *fakeTokens) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cleared++
	f.token, f.has = "", false
	return nil
}

type fakeSink struct {
	Errors    []error
	Successes []string
}

func (f *fakeSink) Error(_ context.Context, err error)    { f.Errors = append(f.Errors, err) }
func (f *fakeSink) Success(_ context.Context, msg string) { f.Successes = append(f.Successes, msg) }

type fakeRooms struct {
	Rooms     []models.Room
	Room      *models.Room
	SetRoomsN int
	SetRoomN  int
}

func (f *fakeRooms) SetRooms(r []models.Room) { f.SetRoomsN++; f.Rooms = r }
func (f *fakeRooms) SetRoom(r *models.Room)   { f.SetRoomN++; f.Room = r }

type fakePlayer struct{ Played []string }

func (f *fakePlayer) Play(_ context.Context, name string) { f.Played = append(f.Played, name) }
