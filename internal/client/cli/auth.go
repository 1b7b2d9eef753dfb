package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for name, email, role and password and creates an
// account. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	role, err := getSimpleText(a.reader, "Enter role (Student or Instructor)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	u, err := a.api.Register(ctx, name, email, password, role)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (%s) as %s. You can log in now.\n", u.Name, u.Email, u.Role)
	return nil
}

// Login prompts for credentials and keeps the returned session in the
// API client.
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

	u, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.user = u
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", u.Email, u.Role)
	return nil
}

// Logout forgets the session token. Tokens cannot be revoked server-side,
// so this is purely local.
func (a *App) Logout() {
	a.api.Logout()
	a.user = nil
	fmt.Fprintln(a.out, "Logged out")
}

func (a *App) me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> %s id=%s\n", u.Name, u.Email, u.Role, u.ID)
	return nil
}
