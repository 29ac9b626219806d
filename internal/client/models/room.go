package models

// Room is the slice of a chat room the peer directory cares about: who owns
// it and who participates in it. Rooms are owned by the rooms module.
type Room struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name,omitempty"`
	Owner      string   `json:"owner"`
	Members    []string `json:"members"`
	Moderators []string `json:"moderators"`
}

// Participants returns owner, members and moderators in that order. Empty
// identifiers are skipped; duplicates are kept.
func (r Room) Participants() []string {
	out := make([]string, 0, 1+len(r.Members)+len(r.Moderators))
	if r.Owner != "" {
		out = append(out, r.Owner)
	}
	for _, id := range r.Members {
		if id != "" {
			out = append(out, id)
		}
	}
	for _, id := range r.Moderators {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
