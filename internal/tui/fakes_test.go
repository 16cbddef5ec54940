package tui

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/findyjobs/findy/internal/interaction"
	"github.com/findyjobs/findy/internal/session"
	"github.com/findyjobs/findy/pkg/domain"
)

// stubRemote is an in-memory collection that answers without a list.
type stubRemote struct {
	mu      sync.Mutex
	members []int64
	err     error
	gate    chan struct{}
}

func (r *stubRemote) Fetch(context.Context, string) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.members), nil
}

func (r *stubRemote) Add(_ context.Context, _ string, id int64) ([]int64, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.members = append(r.members, id)
	return nil, nil
}

func (r *stubRemote) Remove(_ context.Context, _ string, id int64) ([]int64, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.members = slices.DeleteFunc(r.members, func(m int64) bool { return m == id })
	return nil, nil
}

// readyStore returns a store loaded from r for subject "7".
func readyStore(t *testing.T, kind interaction.Kind, r *stubRemote) *interaction.Store {
	t.Helper()
	s := interaction.New(kind, r)
	s.SetIdentity(&session.Identity{Subject: "7", Email: "dev@findy.io"})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady() error: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// testSession returns a session signed in with the given roles.
func testSession(t *testing.T, roles ...string) *session.Store {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"id": 7, "email": "dev@findy.io", "roles": roles})
	if err != nil {
		t.Fatal(err)
	}
	tok := "h." + base64.RawURLEncoding.EncodeToString(payload) + ".s"
	sess, err := session.Open(session.NewMemoryTokenStore(tok), nil)
	if err != nil {
		t.Fatalf("session.Open() error: %v", err)
	}
	if sess.CurrentIdentity() == nil {
		t.Fatal("test token did not decode")
	}
	return sess
}

func testJobs() []domain.Job {
	return []domain.Job{
		{ID: 1, Title: "Go Backend Engineer", Company: "Acme", Location: "Bangalore", Type: "Full-time", Salary: "8-12", ExperienceLevel: "Mid Level"},
		{ID: 2, Title: "Frontend Contractor", Company: "Globex", Location: "Remote", Type: "Contract", Salary: "4-8"},
		{ID: 3, Title: "Staff SRE", Company: "Initech", Location: "Pune", Type: "Full-time", Salary: "12 LPA+", ExperienceLevel: "Senior Level", Featured: true},
	}
}
