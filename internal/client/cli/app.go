// Package cli implements the sessiongate admin command line: account
// registration and the sign-in / verify / logout cycle against a running
// server.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/sessiongate/internal/client"
)

// ErrUsage is returned for unknown commands or missing arguments.
var ErrUsage = errors.New("usage")

const usage = `Commands:
  register [username]   create an account (asks for password and admin secret)
  login [username]      sign in and print the session token
  verify <token>        check a token and print its replacement
  logout <token>        end the session
`

// API is the part of the HTTP client the commands use.
type API interface {
	Register(ctx context.Context, username, password, adminSecret string) (string, error)
	SignIn(ctx context.Context, username, password string) (*client.Session, error)
	Verify(ctx context.Context, token string) (*client.Session, error)
	Logout(ctx context.Context, token string) error
}

type App struct {
	api    API
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(api API, in io.Reader, out io.Writer) *App {
	return &App{api: api, reader: bufio.NewReader(in), out: out}
}

// Run executes the command in args ("register", "login", ...).
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "verify":
		return a.verify(ctx, rest)
	case "logout":
		return a.logout(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprintf(a.out, "unknown command %q\n%s", cmd, usage)
		return ErrUsage
	}
}

func (a *App) username(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return GetSimpleText(a.reader, "Username", a.out)
}

func (a *App) token(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: token argument required", ErrUsage)
	}
	return args[0], nil
}

func (a *App) register(ctx context.Context, args []string) error {
	username, err := a.username(args)
	if err != nil {
		return err
	}
	password, err := GetSecret("Password", a.out)
	if err != nil {
		return err
	}
	adminSecret, err := GetSecret("Admin secret", a.out)
	if err != nil {
		return err
	}

	id, err := a.api.Register(ctx, username, password, adminSecret)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "registered %s (id=%s)\n", username, id)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	username, err := a.username(args)
	if err != nil {
		return err
	}
	password, err := GetSecret("Password", a.out)
	if err != nil {
		return err
	}

	s, err := a.api.SignIn(ctx, username, password)
	if err != nil {
		return err
	}
	a.printSession(s)
	return nil
}

func (a *App) verify(ctx context.Context, args []string) error {
	token, err := a.token(args)
	if err != nil {
		return err
	}

	s, err := a.api.Verify(ctx, token)
	if err != nil {
		return err
	}
	a.printSession(s)
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	token, err := a.token(args)
	if err != nil {
		return err
	}

	if err := a.api.Logout(ctx, token); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *App) printSession(s *client.Session) {
	fmt.Fprintf(a.out, "user:  %s (id=%s)\ntoken: %s\n", s.User.Username, s.User.ID, s.Token)
}
