package interaction

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/findyjobs/findy/internal/session"
	"github.com/findyjobs/findy/pkg/domain"
)

var errBoom = errors.New("boom")

type fakeRemote struct {
	mu         sync.Mutex
	members    []int64
	fetchErr   error
	fetchCalls int
	fetchGate  chan struct{}

	result    []int64
	mutateErr error
	gate      chan struct{}
	adds      []int64
	removes   []int64
}

func (f *fakeRemote) Fetch(ctx context.Context, _ string) ([]int64, error) {
	f.mu.Lock()
	f.fetchCalls++
	gate := f.fetchGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return slices.Clone(f.members), nil
}

func (f *fakeRemote) mutate(list *[]int64, jobID int64) ([]int64, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	*list = append(*list, jobID)
	return f.result, f.mutateErr
}

func (f *fakeRemote) Add(_ context.Context, _ string, jobID int64) ([]int64, error) {
	return f.mutate(&f.adds, jobID)
}

func (f *fakeRemote) Remove(_ context.Context, _ string, jobID int64) ([]int64, error) {
	return f.mutate(&f.removes, jobID)
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

type fakeDetails struct {
	jobs map[int64]domain.Job
	err  error
}

func (d fakeDetails) Job(_ context.Context, id int64) (domain.Job, error) {
	if d.err != nil {
		return domain.Job{}, d.err
	}
	j, ok := d.jobs[id]
	if !ok {
		return domain.Job{}, errBoom
	}
	return j, nil
}

func (d fakeDetails) Jobs(_ context.Context, ids []int64) ([]domain.Job, error) {
	if d.err != nil {
		return nil, d.err
	}
	var out []domain.Job
	for _, id := range ids {
		if j, ok := d.jobs[id]; ok {
			out = append(out, j)
		}
	}
	return out, nil
}

func catalog(ids ...int64) map[int64]domain.Job {
	m := make(map[int64]domain.Job, len(ids))
	for _, id := range ids {
		m[id] = domain.Job{ID: id, Title: "job"}
	}
	return m
}

// readyStore returns a store loaded for subject "7".
func readyStore(t *testing.T, r *fakeRemote, opts ...Option) *Store {
	t.Helper()
	s := New(KindSaved, r, opts...)
	s.SetIdentity(&session.Identity{Subject: "7"})
	s.wg.Wait()
	if s.State() != StateReady {
		t.Fatalf("State() = %v, want ready", s.State())
	}
	return s
}

func TestLoad(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{members: []int64{3, 1}}
	s := readyStore(t, r, WithDetails(fakeDetails{jobs: catalog(1, 3)}))
	defer s.Close()

	sn := s.Snapshot()
	if !slices.Equal(sn.Members, []int64{1, 3}) {
		t.Errorf("Members = %v, want [1 3]", sn.Members)
	}
	if len(sn.Details) != 2 {
		t.Errorf("Details = %d, want 2", len(sn.Details))
	}
	if sn.Subject != "7" {
		t.Errorf("Subject = %q, want 7", sn.Subject)
	}
}

func TestLoad_FailureIsReadyAndEmpty(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{members: []int64{1}, fetchErr: errBoom}
	s := readyStore(t, r)
	defer s.Close()

	if n := s.Snapshot().Len(); n != 0 {
		t.Errorf("members = %d, want 0", n)
	}
	if err := s.Refresh(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("Refresh() error = %v, want errBoom", err)
	}
}

func TestLogout_EmptiesWithoutNetwork(t *testing.T) {
	defer goleak.VerifyNone(t)

	tok := "h.eyJzdWIiOiJhQGIuaW8iLCJyb2xlcyI6WyJVU0VSIl19.s" // {"sub":"a@b.io","roles":["USER"]}
	sess, err := session.Open(session.NewMemoryTokenStore(tok), nil)
	if err != nil {
		t.Fatalf("session.Open() error: %v", err)
	}

	r := &fakeRemote{members: []int64{5, 6}}
	s := New(KindSaved, r)
	defer s.Close()
	detach := s.Attach(sess)
	defer detach()
	s.wg.Wait()

	if !s.Contains(5) {
		t.Fatal("expected membership loaded after attach")
	}
	before := r.calls()

	if err := sess.Logout(); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if sess.CurrentIdentity() != nil {
		t.Error("CurrentIdentity() after Logout() should be nil")
	}
	if s.State() != StateEmpty {
		t.Errorf("State() = %v, want empty", s.State())
	}
	if s.Snapshot().Len() != 0 {
		t.Error("membership should be cleared on logout")
	}
	if r.calls() != before {
		t.Errorf("fetch calls = %d, want %d", r.calls(), before)
	}
}

func TestToggle_AddFailureRollsBack(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{members: []int64{1}, mutateErr: errBoom}
	s := readyStore(t, r, WithDetails(fakeDetails{jobs: catalog(1, 42)}))
	defer s.Close()

	txn, err := s.Toggle(context.Background(), 42)
	if !errors.Is(err, errBoom) {
		t.Fatalf("Toggle() error = %v, want errBoom", err)
	}
	if txn.State() != TxnRolledBack {
		t.Errorf("State() = %v, want rolled_back", txn.State())
	}
	sn := s.Snapshot()
	if !slices.Equal(sn.Members, []int64{1}) {
		t.Errorf("Members = %v, want [1]", sn.Members)
	}
	if len(sn.Details) != 1 || sn.Details[0].ID != 1 {
		t.Errorf("Details = %v, want only job 1", sn.Details)
	}
	if s.Pending(42) {
		t.Error("job 42 still pending after rollback")
	}
}

func TestToggle_RemoveFailureRestoresDetail(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{members: []int64{42}, mutateErr: errBoom}
	s := readyStore(t, r, WithDetails(fakeDetails{jobs: catalog(42)}))
	defer s.Close()

	if _, err := s.Toggle(context.Background(), 42); err == nil {
		t.Fatal("Toggle() error = nil, want failure")
	}
	sn := s.Snapshot()
	if !sn.Contains(42) {
		t.Error("42 should be restored")
	}
	if len(sn.Details) != 1 || sn.Details[0].ID != 42 {
		t.Errorf("Details = %v, want job 42 restored", sn.Details)
	}
}

func TestToggle_ServerListWins(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{members: []int64{42, 8}, result: []int64{1, 2, 3}}
	s := readyStore(t, r, WithDetails(fakeDetails{jobs: catalog(1, 2, 3, 8, 42)}))
	defer s.Close()

	txn, err := s.Toggle(context.Background(), 42)
	if err != nil {
		t.Fatalf("Toggle() error: %v", err)
	}
	if txn.State() != TxnConfirmed {
		t.Errorf("State() = %v, want confirmed", txn.State())
	}
	sn := s.Snapshot()
	if !slices.Equal(sn.Members, []int64{1, 2, 3}) {
		t.Errorf("Members = %v, want [1 2 3]", sn.Members)
	}
	got := make([]int64, 0, len(sn.Details))
	for _, j := range sn.Details {
		got = append(got, j.ID)
	}
	if !slices.Equal(got, []int64{1, 2, 3}) {
		t.Errorf("Details = %v, want [1 2 3]", got)
	}
	if len(r.removes) != 1 || r.removes[0] != 42 {
		t.Errorf("removes = %v, want [42]", r.removes)
	}
}

func TestToggle_NoListKeepsOptimistic(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{}
	s := readyStore(t, r, WithDetails(fakeDetails{jobs: catalog(9)}))
	defer s.Close()

	if _, err := s.Toggle(context.Background(), 9); err != nil {
		t.Fatalf("Toggle() error: %v", err)
	}
	sn := s.Snapshot()
	if !sn.Contains(9) {
		t.Error("9 should be a member")
	}
	if len(sn.Details) != 1 {
		t.Error("detail for 9 should be fetched and cached")
	}
}

func TestBegin_OptimisticVisible(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{gate: make(chan struct{})}
	s := readyStore(t, r)
	defer s.Close()

	var notified int
	cancel := s.Subscribe(func() { notified++ })
	defer cancel()

	txn, err := s.Begin(42, nil)
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if !s.Contains(42) || !s.Pending(42) {
		t.Error("42 should be an optimistic, pending member")
	}
	if txn.State() != TxnPending {
		t.Errorf("State() = %v, want pending", txn.State())
	}
	if notified == 0 {
		t.Error("listeners not notified of optimistic change")
	}

	done := make(chan error, 1)
	go func() { done <- txn.Commit(context.Background()) }()
	close(r.gate)
	if err := <-done; err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if err := txn.Commit(context.Background()); err == nil {
		t.Error("second Commit() should fail")
	}
}

func TestBegin_SameJobRejected(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{}
	s := readyStore(t, r)
	defer s.Close()

	first, err := s.Begin(42, nil)
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if _, err := s.Begin(42, nil); !errors.Is(err, ErrToggleInFlight) {
		t.Errorf("second Begin(42) error = %v, want ErrToggleInFlight", err)
	}
	other, err := s.Begin(43, nil)
	if err != nil {
		t.Fatalf("Begin(43) error: %v", err)
	}

	if err := first.Commit(context.Background()); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if err := other.Commit(context.Background()); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if _, err := s.Begin(42, nil); err != nil {
		t.Errorf("Begin(42) after commit error = %v", err)
	}
}

func TestCommit_StaleIdentityDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{members: []int64{5}, result: []int64{100}}
	s := readyStore(t, r)
	defer s.Close()

	txn, err := s.Begin(42, nil)
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}

	s.SetIdentity(&session.Identity{Subject: "8"})
	s.wg.Wait()

	if err := txn.Commit(context.Background()); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if txn.State() != TxnDiscarded {
		t.Errorf("State() = %v, want discarded", txn.State())
	}
	sn := s.Snapshot()
	if sn.Subject != "8" || !slices.Equal(sn.Members, []int64{5}) {
		t.Errorf("snapshot = %+v, want subject 8 with [5]", sn)
	}
}

func TestRefresh_KeepsPendingChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{members: []int64{5}}
	s := readyStore(t, r)
	defer s.Close()

	add, err := s.Begin(42, nil)
	if err != nil {
		t.Fatalf("Begin(42) error: %v", err)
	}
	remove, err := s.Begin(5, nil)
	if err != nil {
		t.Fatalf("Begin(5) error: %v", err)
	}

	r.mu.Lock()
	r.members = []int64{5, 7}
	r.mu.Unlock()
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got := s.Snapshot().Members; !slices.Equal(got, []int64{7, 42}) {
		t.Errorf("Members after refresh = %v, want [7 42]", got)
	}

	if err := add.Commit(context.Background()); err != nil {
		t.Fatalf("Commit(42) error: %v", err)
	}
	if err := remove.Commit(context.Background()); err != nil {
		t.Fatalf("Commit(5) error: %v", err)
	}
	if got := s.Snapshot().Members; !slices.Equal(got, []int64{7, 42}) {
		t.Errorf("Members after commit = %v, want [7 42]", got)
	}
}

func TestRefresh_ReturnsFetchError(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{members: []int64{5}}
	s := readyStore(t, r)
	defer s.Close()

	r.mu.Lock()
	r.fetchErr = errBoom
	r.mu.Unlock()
	if err := s.Refresh(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("Refresh() error = %v, want errBoom", err)
	}
}

func TestStaleLoadDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{members: []int64{1}, fetchGate: make(chan struct{})}
	s := New(KindSaved, r)
	defer s.Close()

	s.SetIdentity(&session.Identity{Subject: "7"})
	if s.State() != StateLoading {
		t.Fatalf("State() = %v, want loading", s.State())
	}
	if _, err := s.Begin(1, nil); !errors.Is(err, ErrNotReady) {
		t.Errorf("Begin() while loading error = %v, want ErrNotReady", err)
	}

	s.SetIdentity(nil)
	s.wg.Wait()
	if s.State() != StateEmpty || s.Snapshot().Len() != 0 {
		t.Errorf("cancelled load should leave the store empty, got %+v", s.Snapshot())
	}
}

func TestBegin_NoIdentity(t *testing.T) {
	s := New(KindSaved, &fakeRemote{})
	defer s.Close()
	if _, err := s.Begin(1, nil); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("Begin() error = %v, want ErrNoIdentity", err)
	}
	if err := s.Refresh(context.Background()); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("Refresh() error = %v, want ErrNoIdentity", err)
	}
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
	members  int
}

func (c *countingRecorder) ObserveToggle(_, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[string]int{}
	}
	c.outcomes[outcome]++
}

func (c *countingRecorder) SetMembers(_ string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.members = n
}

func TestRecorder(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &countingRecorder{}
	r := &fakeRemote{members: []int64{1, 2}}
	s := readyStore(t, r, WithRecorder(rec))
	defer s.Close()

	if _, err := s.Toggle(context.Background(), 3); err != nil {
		t.Fatalf("Toggle() error: %v", err)
	}
	r.mutateErr = errBoom
	_, _ = s.Toggle(context.Background(), 1)

	if rec.outcomes["confirmed"] != 1 || rec.outcomes["rolled_back"] != 1 {
		t.Errorf("outcomes = %v", rec.outcomes)
	}
	if rec.members != 3 {
		t.Errorf("members gauge = %d, want 3", rec.members)
	}
}

func TestWaitReady(t *testing.T) {
	defer goleak.VerifyNone(t)

	gate := make(chan struct{})
	r := &fakeRemote{members: []int64{9}, fetchGate: gate}
	s := New(KindSaved, r)
	defer s.Close()

	if err := s.WaitReady(context.Background()); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("WaitReady() before identity = %v, want ErrNoIdentity", err)
	}

	s.SetIdentity(&session.Identity{Subject: "7"})
	done := make(chan error, 1)
	go func() { done <- s.WaitReady(context.Background()) }()
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("WaitReady() error: %v", err)
	}
	if !s.Contains(9) {
		t.Error("expected job 9 after WaitReady")
	}
}

func TestWaitReady_ContextCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRemote{fetchGate: make(chan struct{})}
	s := New(KindSaved, r)
	defer s.Close()
	s.SetIdentity(&session.Identity{Subject: "7"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.WaitReady(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("WaitReady() = %v, want context.Canceled", err)
	}
}
