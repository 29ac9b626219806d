// Package projections derives read-only views from a state.View. Every
// function is pure and recomputed on each call.
package projections

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/peermirror/internal/client/models"
	"github.com/dmitrijs2005/peermirror/internal/client/state"
	"github.com/golang-jwt/jwt/v5"
)

// IsAuthenticated reports a token, a resolved user and a non-empty username.
func IsAuthenticated(s state.Session) bool {
	return s.Token != "" && s.User != nil && s.User.Username != ""
}

// IsActivated additionally requires the user's account to be active.
func IsActivated(s state.Session) bool {
	return IsAuthenticated(s) && s.User.IsActive
}

// AvatarURL prefers the OAuth avatar over the user's own. ok is false when
// neither a profile nor a user is set.
func AvatarURL(s state.Session) (url string, ok bool) {
	switch {
	case s.OAuth != nil:
		return s.OAuth.AvatarURL, true
	case s.User != nil:
		return s.User.AvatarURL, true
	}
	return "", false
}

func PeerByID(v state.View, id string) (models.Peer, bool) {
	i := slices.IndexFunc(v.Peers, func(p models.Peer) bool { return p.ID == id })
	if i < 0 {
		return models.Peer{}, false
	}
	return v.Peers[i], true
}

// PeersByIDs returns the matching peers in directory order.
func PeersByIDs(v state.View, ids []string) []models.Peer {
	want := toSet(ids)
	out := []models.Peer{}
	for _, p := range v.Peers {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// IsOnline is true for the session user and for any peer holding at least
// one connection. Unknown peers are offline.
func IsOnline(v state.View, id string) bool {
	p, ok := PeerByID(v, id)
	if !ok {
		return false
	}
	return selfID(v.Session) == id || p.Online()
}

// VisiblePeers returns the peers that take part in any of rooms, excluding
// the session user.
func VisiblePeers(v state.View, rooms []models.Room) []models.Peer {
	var ids []string
	for _, r := range rooms {
		ids = append(ids, r.Participants()...)
	}
	return visible(v, ids)
}

// VisiblePeersForRoom is VisiblePeers for a single room. A nil room or one
// without an id yields nothing.
func VisiblePeersForRoom(v state.View, room *models.Room) []models.Peer {
	if room == nil || room.ID == "" {
		return []models.Peer{}
	}
	return visible(v, room.Participants())
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// ok is false for tokens that do not parse or carry no expiry.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func visible(v state.View, ids []string) []models.Peer {
	set := toSet(ids)
	delete(set, selfID(v.Session))
	out := []models.Peer{}
	for _, p := range v.Peers {
		if _, ok := set[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func selfID(s state.Session) string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
