package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/peermirror/internal/client/models"
	"github.com/dmitrijs2005/peermirror/internal/client/projections"
)

// menuSound is the menu toggle that drives the terminal bell.
const menuSound = "sound"

// Peers refreshes the directory from the server and prints it.
func (a *App) Peers(ctx context.Context) error {
	if resp := a.query.RefreshAll(ctx); resp.HasError {
		return errFailed
	}
	v := a.store.View()
	a.printPeers(v.Peers, func(id string) bool { return projections.IsOnline(v, id) })
	return nil
}

// Get fetches one peer by id and prints it.
func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: get <id>")
		return nil
	}
	resp := a.query.FetchOne(ctx, args[0])
	if resp.Result == nil {
		return nil
	}
	v := a.store.View()
	a.printPeers([]models.Peer{*resp.Result}, func(id string) bool { return projections.IsOnline(v, id) })
	return nil
}

func (a *App) Online(_ context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: online <id>")
		return nil
	}
	v := a.store.View()
	for _, id := range args {
		state := "offline"
		if projections.IsOnline(v, id) {
			state = "online"
		}
		printlnFn(fmt.Sprintf("%s: %s", id, state))
	}
	return nil
}

// Room records a room locally and opens it:
//
//	room <id> <owner> [member...] [+moderator...]
func (a *App) Room(_ context.Context, args []string) error {
	if len(args) < 2 {
		printlnFn("Usage: room <id> <owner> [member...] [+moderator...]")
		return nil
	}
	r := models.Room{ID: args[0], Owner: args[1]}
	for _, id := range args[2:] {
		if mod, ok := strings.CutPrefix(id, "+"); ok {
			r.Moderators = append(r.Moderators, mod)
		} else {
			r.Members = append(r.Members, id)
		}
	}

	list := a.rooms.Rooms()
	replaced := false
	for i := range list {
		if list[i].ID == r.ID {
			list[i], replaced = r, true
		}
	}
	if !replaced {
		list = append(list, r)
	}
	a.rooms.SetRooms(list)
	a.rooms.SetRoom(&r)
	printlnFn(fmt.Sprintf("Room %s opened (%d rooms known)", r.ID, len(list)))
	return nil
}

// Visible prints the peers sharing a room with the session user.
func (a *App) Visible(_ context.Context) error {
	v := a.store.View()
	online := func(id string) bool { return projections.IsOnline(v, id) }

	printlnFn("All rooms:")
	a.printPeers(projections.VisiblePeers(v, a.rooms.Rooms()), online)

	if cur := a.rooms.Current(); cur != nil {
		printlnFn(fmt.Sprintf("Room %s:", cur.ID))
		a.printPeers(projections.VisiblePeersForRoom(v, cur), online)
	}
	return nil
}

func (a *App) WhoAmI(_ context.Context) error {
	sess := a.store.Snapshot()
	if sess.Token == "" {
		printlnFn("Not logged in")
		return nil
	}
	if sess.User == nil {
		printlnFn("Session pending (token present, user not resolved)")
		return nil
	}
	printlnFn(fmt.Sprintf("id:        %s", sess.User.ID))
	printlnFn(fmt.Sprintf("username:  %s", sess.User.Username))
	printlnFn(fmt.Sprintf("activated: %t", projections.IsActivated(sess)))
	if url, ok := projections.AvatarURL(sess); ok && url != "" {
		printlnFn(fmt.Sprintf("avatar:    %s", url))
	}
	if exp, ok := projections.TokenExpiry(sess.Token); ok {
		printlnFn(fmt.Sprintf("expires:   %s", exp.Local().Format("2006-01-02 15:04:05")))
	}
	return nil
}

// Toggle flips a menu toggle. The "sound" toggle also switches the bell.
func (a *App) Toggle(_ context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: toggle <name>")
		return nil
	}
	on := a.store.ToggleMenu(args[0])
	if args[0] == menuSound && a.bell != nil {
		a.bell.SetEnabled(on)
	}
	printlnFn(fmt.Sprintf("%s: %t", args[0], on))
	return nil
}

func (a *App) printPeers(peers []models.Peer, online func(string) bool) {
	if len(peers) == 0 {
		printlnFn("  (none)")
		return
	}
	for _, p := range peers {
		mark := " "
		if online(p.ID) {
			mark = "*"
		}
		name := p.Username
		if name == "" {
			name = "-"
		}
		printlnFn(fmt.Sprintf("%s %-24s %-20s %d conn", mark, p.ID, name, len(p.Connections)))
	}
}
