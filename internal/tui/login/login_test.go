// ABOUTME: Tests for the login screen
// ABOUTME: Covers the redirect target and the outcome of a submitted form

package login

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/models"
	"github.com/materialhub/materialhub-cli/internal/tui/screen"
)

type fakeAuth struct {
	err error
	got models.LoginRequest
}

func (f *fakeAuth) Login(_ context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.AuthResponse{AccessToken: "tok", User: models.User{ID: 1, Username: req.Username}}, nil
}

type fakeSession struct {
	auth *models.AuthResponse
	err  error
}

func (f *fakeSession) SetAuth(_ context.Context, auth *models.AuthResponse) error {
	f.auth = auth
	return f.err
}

func TestTarget(t *testing.T) {
	tests := map[string]string{
		"":                 "/",
		"/upload":          "/upload",
		"/materials/3?x=1": "/materials/3?x=1",
		"https://evil":     "/",
		"//evil":           "/",
		"/login":           "/",
		"/login?redirect=": "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, Target(in), "Target(%q)", in)
	}
}

func TestSubmit_SuccessStoresSessionAndRedirects(t *testing.T) {
	auth, sess := &fakeAuth{}, &fakeSession{}
	l := New(context.Background(), auth, sess, "/upload")
	l.username, l.password = " alice ", "secret"

	msg := l.submit()()
	_, cmd := l.Update(msg)

	require.NotNil(t, sess.auth)
	assert.Equal(t, "tok", sess.auth.AccessToken)
	assert.Equal(t, models.LoginRequest{Username: "alice", Password: "secret"}, auth.got)
	require.NotNil(t, cmd)
	assert.Equal(t, screen.NavigateMsg{Path: "/upload"}, cmd())
}

func TestSubmit_BadCredentialsStayOnForm(t *testing.T) {
	auth := &fakeAuth{err: &client.APIError{StatusCode: 401}}
	sess := &fakeSession{}
	l := New(context.Background(), auth, sess, "")
	l.username, l.password = "alice", "wrong"

	l.Update(l.submit()())

	assert.Nil(t, sess.auth)
	assert.False(t, l.submitting)
	assert.Empty(t, l.password, "password is cleared for the retry")
	assert.Equal(t, "alice", l.username)
	assert.Contains(t, l.View(), "incorrect username or password")
}

func TestSubmit_StoreFailureIsReported(t *testing.T) {
	l := New(context.Background(), &fakeAuth{}, &fakeSession{err: errors.New("disk full")}, "")
	l.username, l.password = "alice", "pw"

	l.Update(l.submit()())

	assert.Contains(t, l.View(), "disk full")
	assert.False(t, l.submitting)
}

func TestEscGoesHome(t *testing.T) {
	l := New(context.Background(), &fakeAuth{}, &fakeSession{}, "")

	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screen.NavigateMsg{Path: "/home"}, cmd())
}

func TestViewMentionsRedirect(t *testing.T) {
	l := New(context.Background(), &fakeAuth{}, &fakeSession{}, "/admin")
	assert.Contains(t, l.View(), "continue to /admin")
}
