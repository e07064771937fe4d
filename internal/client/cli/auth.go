package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password and creates a new account.
// A successful registration immediately logs the user in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	sess, err := a.authService.Register(ctx, username, password)
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	fmt.Printf("Welcome, %s!\n", sess.User.Username)
	return nil
}

// Login prompts for credentials and authenticates against the backend. The
// session is persisted, so reminders created offline before login stay under
// their own bucket while the account's collection becomes active.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	sess, err := a.authService.Login(ctx, username, password)
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	fmt.Printf("Logged in as %s\n", sess.User.Username)
	return nil
}

// Logout clears the persisted session. Local reminder data is kept.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		log.Printf("Logout failed: %s", err.Error())
		return err
	}
	fmt.Println("Logged out")
	return nil
}

// WhoAmI prints the active account, or "not logged in".
func (a *App) WhoAmI(ctx context.Context) error {
	sess := a.authService.CurrentSession(ctx)
	if !sess.Authenticated() {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Println(sess.User.Username)
	return nil
}
