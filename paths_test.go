package dicomweb

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	f := New(func(o *Options) {
		o.UserHomeDir = func() (string, error) { return "/home/u", nil }
		o.LookupEnv = envMap(map[string]string{"CERTDIR": "/etc/certs", "SUB": "nested", "EMPTY": ""})
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "home prefix", in: "~/certs/ca.pem", want: "/home/u/certs/ca.pem"},
		{name: "bare home", in: "~", want: "/home/u"},
		{name: "env var", in: "$CERTDIR/ca.pem", want: "/etc/certs/ca.pem"},
		{name: "braced env var", in: "${CERTDIR}/${SUB}/ca.pem", want: "/etc/certs/nested/ca.pem"},
		{name: "env var expanded before home", in: "~/$SUB/ca.pem", want: "/home/u/nested/ca.pem"},
		{name: "unset env var", in: "/opt/$MISSING/ca.pem", want: "/opt/$MISSING/ca.pem"},
		{name: "unset braced env var", in: "/opt/${MISSING}/ca.pem", want: "/opt/${MISSING}/ca.pem"},
		{name: "set empty env var", in: "/opt/$EMPTY/ca.pem", want: "/opt/ca.pem"},
		{name: "lone dollar", in: "/opt/$/ca.pem", want: "/opt/$/ca.pem"},
		{name: "absolute untouched", in: "/srv/ca.pem", want: "/srv/ca.pem"},
		{name: "cleaned", in: "/srv/../etc/./ca.pem", want: "/etc/ca.pem"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.expandPath(tc.in)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tc.want), got)
		})
	}
}

func TestExpandPath_HomeError(t *testing.T) {
	boom := errors.New("no home")
	f := New(func(o *Options) {
		o.UserHomeDir = func() (string, error) { return "", boom }
	})

	_, err := f.expandPath("~/ca.pem")
	assert.ErrorIs(t, err, boom)

	got, err := f.expandPath("/etc/ca.pem")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/etc/ca.pem"), got)
}

func TestExpandPath_NamedUser(t *testing.T) {
	current, err := user.Current()
	if err != nil || current.Username == "" || current.HomeDir == "" {
		t.Skip("current user not resolvable")
	}
	if _, err := user.Lookup(current.Username); err != nil {
		t.Skip("user lookup unsupported")
	}

	f := New()
	got, err := f.expandPath("~" + current.Username + "/ca.pem")
	require.NoError(t, err)

	want, err := filepath.Abs(filepath.Join(current.HomeDir, "ca.pem"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExpandPath_UnknownUserLeftAlone(t *testing.T) {
	f := New()
	got, err := f.expandPath("~nobody-such-user-4242/ca.pem")
	require.NoError(t, err)

	want, err := filepath.Abs(filepath.FromSlash("~nobody-such-user-4242/ca.pem"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExpandPath_HomeFollowsInjectedEnvironment(t *testing.T) {
	f := New(func(o *Options) {
		o.LookupEnv = envMap(map[string]string{"HOME": "/home/injected"})
	})

	tilde, err := f.expandPath("~/ca.pem")
	require.NoError(t, err)
	dollar, err := f.expandPath("$HOME/ca.pem")
	require.NoError(t, err)

	assert.Equal(t, filepath.FromSlash("/home/injected/ca.pem"), tilde)
	assert.Equal(t, tilde, dollar)
}

func TestExpandPath_HomeFallsBackWithoutHOME(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	f := New(func(o *Options) { o.LookupEnv = envMap(map[string]string{}) })

	got, err := f.expandPath("~/ca.pem")
	require.NoError(t, err)

	want, err := filepath.Abs(filepath.Join(home, "ca.pem"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
