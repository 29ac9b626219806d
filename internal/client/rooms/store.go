// Package rooms keeps the room list and the currently opened room. The peer
// directory reads rooms from here to decide which peers are visible.
package rooms

import (
	"slices"
	"sync"

	"github.com/dmitrijs2005/peermirror/internal/client/models"
)

type Store struct {
	mu      sync.RWMutex
	rooms   []models.Room
	current *models.Room
}

func NewStore() *Store {
	return &Store{}
}

// SetRooms replaces the room list. nil clears it.
func (s *Store) SetRooms(rooms []models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = cloneRooms(rooms)
}

// SetRoom opens room. nil closes the current room.
func (s *Store) SetRoom(room *models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room == nil {
		s.current = nil
		return
	}
	r := cloneRoom(*room)
	s.current = &r
}

func (s *Store) Rooms() []models.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRooms(s.rooms)
}

// Current returns the open room, or nil.
func (s *Store) Current() *models.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	r := cloneRoom(*s.current)
	return &r
}

func cloneRooms(in []models.Room) []models.Room {
	if in == nil {
		return nil
	}
	out := make([]models.Room, len(in))
	for i, r := range in {
		out[i] = cloneRoom(r)
	}
	return out
}

func cloneRoom(r models.Room) models.Room {
	r.Members = slices.Clone(r.Members)
	r.Moderators = slices.Clone(r.Moderators)
	return r
}
