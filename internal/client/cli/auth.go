package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/peermirror/internal/client/client"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// errFailed is returned by commands whose failure was already reported by
// the notification sink.
var errFailed = errors.New("command failed")

func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	resp := a.session.Register(ctx, client.Registration{Email: email, Username: username, Password: string(password)})
	if resp.HasError {
		return errFailed
	}
	printlnFn("Registered. Check your mail for the activation code.")
	return nil
}

// Activate takes the code as its argument or prompts for it.
func (a *App) Activate(ctx context.Context, args []string) error {
	code := ""
	if len(args) > 0 {
		code = args[0]
	} else {
		var err error
		if code, err = getSimpleText(a.reader, "Enter activation code", a.out); err != nil {
			return err
		}
	}
	if resp := a.session.Activate(ctx, client.Activation{Token: code}); resp.HasError {
		return errFailed
	}
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	resp := a.session.Reset(ctx, client.ResetRequest{Email: email})
	if resp.Result != nil {
		printlnFn("Reset requested.")
	}
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	resp := a.session.Login(ctx, client.Credentials{Email: email, Password: string(password)})
	if resp.HasError {
		return errFailed
	}
	printlnFn("Login successful")
	return nil
}

// Me re-reads the session user from the server using the persisted token.
func (a *App) Me(ctx context.Context) error {
	resp := a.session.Me(ctx)
	if resp.HasError {
		return errFailed
	}
	if resp.Result == nil {
		printlnFn("No saved session.")
		return nil
	}
	return a.WhoAmI(ctx)
}

func (a *App) UpdateUsername(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter new username", a.out)
	if err != nil {
		return err
	}
	if resp := a.session.UpdateUsername(ctx, client.UsernameChange{Username: username}); resp.HasError {
		return errFailed
	}
	printlnFn("Username updated")
	return nil
}

func (a *App) UpdatePassword(ctx context.Context) error {
	current, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(current)
	printlnFn("New password")
	next, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(next)

	resp := a.session.UpdatePassword(ctx, client.PasswordChange{Password: string(current), NewPassword: string(next)})
	if resp.HasError {
		return errFailed
	}
	printlnFn("Password updated")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out")
	return nil
}
