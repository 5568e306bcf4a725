package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/sessiongate/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	calls []string
	err   error
}

func (f *fakeAPI) Register(_ context.Context, username, password, adminSecret string) (string, error) {
	f.calls = append(f.calls, "register "+username+" "+password+" "+adminSecret)
	return "u-1", f.err
}

func (f *fakeAPI) SignIn(_ context.Context, username, password string) (*client.Session, error) {
	f.calls = append(f.calls, "signin "+username+" "+password)
	if f.err != nil {
		return nil, f.err
	}
	return &client.Session{Token: "T1", User: client.User{ID: "u-1", Username: username}}, nil
}

func (f *fakeAPI) Verify(_ context.Context, token string) (*client.Session, error) {
	f.calls = append(f.calls, "verify "+token)
	if f.err != nil {
		return nil, f.err
	}
	return &client.Session{Token: "T2", User: client.User{ID: "u-1", Username: "alice"}}, nil
}

func (f *fakeAPI) Logout(_ context.Context, token string) error {
	f.calls = append(f.calls, "logout "+token)
	return f.err
}

// stubSecrets makes readPassword return the given answers in order.
func stubSecrets(t *testing.T, answers ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		a := answers[0]
		answers = answers[1:]
		return []byte(a), nil
	}
}

func TestRegister(t *testing.T) {
	stubSecrets(t, "pw", "adm")
	api := &fakeAPI{}
	var out bytes.Buffer

	err := NewApp(api, strings.NewReader(""), &out).Run(context.Background(), []string{"register", "alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"register alice pw adm"}, api.calls)
	assert.Contains(t, out.String(), "id=u-1")
}

func TestLogin_PromptsForUsername(t *testing.T) {
	stubSecrets(t, "pw")
	api := &fakeAPI{}
	var out bytes.Buffer

	err := NewApp(api, strings.NewReader("alice\n"), &out).Run(context.Background(), []string{"login"})
	require.NoError(t, err)
	assert.Equal(t, []string{"signin alice pw"}, api.calls)
	assert.Contains(t, out.String(), "token: T1")
}

func TestVerifyAndLogout(t *testing.T) {
	api := &fakeAPI{}
	var out bytes.Buffer
	app := NewApp(api, strings.NewReader(""), &out)

	require.NoError(t, app.Run(context.Background(), []string{"verify", "T1"}))
	require.NoError(t, app.Run(context.Background(), []string{"logout", "T2"}))

	assert.Equal(t, []string{"verify T1", "logout T2"}, api.calls)
	assert.Contains(t, out.String(), "token: T2")
	assert.Contains(t, out.String(), "logged out")
}

func TestUsageErrors(t *testing.T) {
	var out bytes.Buffer
	app := NewApp(&fakeAPI{}, strings.NewReader(""), &out)

	assert.ErrorIs(t, app.Run(context.Background(), nil), ErrUsage)
	assert.ErrorIs(t, app.Run(context.Background(), []string{"frobnicate"}), ErrUsage)
	assert.ErrorIs(t, app.Run(context.Background(), []string{"verify"}), ErrUsage)
	assert.ErrorIs(t, app.Run(context.Background(), []string{"logout"}), ErrUsage)
	assert.NoError(t, app.Run(context.Background(), []string{"help"}))
	assert.Contains(t, out.String(), "Commands:")
}

func TestAPIErrorPropagates(t *testing.T) {
	stubSecrets(t, "pw")
	boom := &client.APIError{Status: 401, Message: "invalid username or password"}
	api := &fakeAPI{err: boom}

	err := NewApp(api, strings.NewReader(""), &bytes.Buffer{}).Run(context.Background(), []string{"login", "alice"})
	assert.ErrorIs(t, err, boom)
}

func TestSecretReadFailure(t *testing.T) {
	stubSecrets(t)
	api := &fakeAPI{}

	err := NewApp(api, strings.NewReader(""), &bytes.Buffer{}).Run(context.Background(), []string{"register", "alice"})
	assert.Error(t, err)
	assert.Empty(t, api.calls)
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(bufioReader("  bob  \n"), "Username", &out)
	require.NoError(t, err)
	assert.Equal(t, "bob", got)
	assert.Equal(t, "Username: ", out.String())

	got, err = GetSimpleText(bufioReader("lastline"), "Username", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(bufioReader(""), "Username", &out)
	assert.Error(t, err)
}

func bufioReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
