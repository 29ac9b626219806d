package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App implements it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Activate(ctx context.Context, args []string) error
	Reset(ctx context.Context) error
	Login(ctx context.Context) error
	Me(ctx context.Context) error
	UpdateUsername(ctx context.Context) error
	UpdatePassword(ctx context.Context) error
	Peers(ctx context.Context) error
	Get(ctx context.Context, args []string) error
	Online(ctx context.Context, args []string) error
	Room(ctx context.Context, args []string) error
	Visible(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Toggle(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

const (
	helpGuest    = "Available commands: register, activate, reset, login, me, peers, get, online, whoami, exit"
	helpLoggedIn = "Available commands: peers, get, online, room, visible, whoami, username, password, toggle, logout, exit"
)

// Root runs the REPL on stdin.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to peermirror (type 'help' for commands)")
	runREPL(ctx, a, func() string {
		a.refreshMode()
		return a.getStatus()
	}, bufio.NewScanner(os.Stdin))
}

// runREPL reads one command per line and dispatches it to a. It returns on
// EOF, "exit" or "quit", or when ctx is done. Command errors are reported
// and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("pm %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpGuest)
			}
		case "register":
			err = a.Register(ctx)
		case "activate":
			err = a.Activate(ctx, args)
		case "reset":
			err = a.Reset(ctx)
		case "login":
			err = a.Login(ctx)
		case "me":
			err = a.Me(ctx)
		case "username":
			err = a.UpdateUsername(ctx)
		case "password":
			err = a.UpdatePassword(ctx)
		case "p", "peers":
			err = a.Peers(ctx)
		case "get":
			err = a.Get(ctx, args)
		case "online":
			err = a.Online(ctx, args)
		case "room":
			err = a.Room(ctx, args)
		case "visible":
			err = a.Visible(ctx)
		case "whoami", "status":
			err = a.WhoAmI(ctx)
		case "toggle":
			err = a.Toggle(ctx, args)
		case "logout":
			err = a.Logout(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
		if err != nil {
			printlnFn("error:", err)
		}
	}
}
