package tui

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/findyjobs/findy/pkg/client"
	"github.com/findyjobs/findy/pkg/domain"
)

func TestYouSignedOut(t *testing.T) {
	m := newYouModel(&Deps{})
	if !strings.Contains(m.View(), "findy login") {
		t.Errorf("expected login hint, got:\n%s", m.View())
	}
	if m.Init() != nil {
		t.Error("signed-out profile should not load")
	}
}

func TestYouShowsProfile(t *testing.T) {
	m := newYouModel(&Deps{Session: testSession(t, "USER")})
	m, _ = m.Update(meLoadedMsg{me: &domain.User{ID: 7, FirstName: "Ada", LastName: "Lovelace", Email: "dev@findy.io", JobTitle: "Engineer"}})

	view := m.View()
	for _, want := range []string{"Ada Lovelace", "Engineer", "USER"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in profile, got:\n%s", want, view)
		}
	}
}

func TestYouUnauthorizedEndsSession(t *testing.T) {
	sess := testSession(t, "USER")
	m := newYouModel(&Deps{Session: sess})

	m, cmd := m.Update(meLoadedMsg{err: &client.HTTPError{StatusCode: http.StatusUnauthorized, Message: "expired"}})
	if !m.expired {
		t.Error("expected expired after 401")
	}
	if sess.CurrentIdentity() != nil {
		t.Error("401 should log the session out")
	}
	if !strings.Contains(m.View(), "findy login") {
		t.Errorf("expected re-login prompt, got:\n%s", m.View())
	}
	if cmd == nil || !strings.Contains(string(cmd().(statusMsg)), "session expired") {
		t.Error("expected session expired status")
	}
}

func TestYouOtherErrorKeepsSession(t *testing.T) {
	sess := testSession(t, "USER")
	m := newYouModel(&Deps{Session: sess})
	m, _ = m.Update(meLoadedMsg{err: errors.New("dial tcp: refused")})
	if m.expired || sess.CurrentIdentity() == nil {
		t.Error("a network error must not end the session")
	}
	if !strings.Contains(m.View(), "could not load profile") {
		t.Errorf("expected error text, got:\n%s", m.View())
	}
}

func TestYouLogoutKey(t *testing.T) {
	sess := testSession(t, "USER")
	m := newYouModel(&Deps{Session: sess})
	_, cmd := m.Update(key("L"))
	if sess.CurrentIdentity() != nil {
		t.Error("L should sign out")
	}
	if cmd == nil || cmd() != statusMsg("signed out") {
		t.Error("expected signed out status")
	}
}
