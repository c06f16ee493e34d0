package cli

import (
	"context"
	"strings"

	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/common"
)

// getSimpleText, getPassword, getMultiline and getConfirmation are
// indirections used to facilitate testing. They point to interactive input
// helpers and can be swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getMultiline    = GetMultiline
	getConfirmation = GetConfirmation
)

// credentialsFor treats input containing "@" as an email and anything else
// as a phone number.
func credentialsFor(login string, password []byte) models.Credentials {
	if strings.Contains(login, "@") {
		return models.Credentials{Email: login, Password: password}
	}
	return models.Credentials{Phone: login, Password: password}
}

// Register prompts for an email or phone, a display name and a password,
// then creates the account and signs in with it.
func (a *App) Register(ctx context.Context) error {
	login, err := getSimpleText(a.reader, "Enter email or phone", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	creds := credentialsFor(login, password)
	creds.DisplayName = name
	if err := a.session.Register(ctx, creds); err != nil {
		return a.report(err)
	}

	a.printf("Welcome, %s! Your mailbox is %s\n", a.session.CurrentIdentity().Name(), a.session.CurrentIdentity().Nikmail)
	return nil
}

// Login prompts for credentials and signs in. The server's message is shown
// verbatim on rejection and any previous session is kept.
func (a *App) Login(ctx context.Context) error {
	login, err := getSimpleText(a.reader, "Enter email or phone", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, credentialsFor(login, password)); err != nil {
		return a.report(err)
	}

	a.println("Login successful. Hello,", a.session.CurrentIdentity().Name())
	return nil
}

// Logout ends the session. Local state is cleared even when the server
// cannot be told.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return a.report(err)
	}
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(_ context.Context) error {
	state := a.session.State()
	if state.Identity == nil {
		a.println("Not logged in.")
		return nil
	}

	id := state.Identity
	a.printf("%s <%s> [%s]\n", id.Name(), id.Nikmail, state.Phase)
	if id.Email != nil {
		a.println("email:", *id.Email)
	}
	if id.Phone != nil {
		a.println("phone:", *id.Phone)
	}
	return nil
}
