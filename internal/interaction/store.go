// Package interaction tracks which jobs the current user has saved or applied
// to, keeping a local membership set in step with the API through optimistic
// updates.
package interaction

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/findyjobs/findy/internal/session"
	"github.com/findyjobs/findy/pkg/domain"
)

var (
	// ErrNotReady is returned when the membership has not finished loading.
	ErrNotReady = errors.New("interaction: membership not loaded")
	// ErrNoIdentity is returned when nobody is logged in.
	ErrNoIdentity = errors.New("interaction: no identity")
	// ErrToggleInFlight is returned when a change for the same job is still pending.
	ErrToggleInFlight = errors.New("interaction: change already in flight for job")
	// ErrUnsupported is returned by remotes that cannot perform an operation.
	ErrUnsupported = errors.New("interaction: operation not supported by remote")
)

// Kind names a membership collection.
type Kind string

const (
	KindSaved   Kind = "saved"
	KindApplied Kind = "applied"
)

// State is the load state of a Store.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Remote is the API collection a Store mirrors. Add and Remove return the
// full membership after the change when the server sends one, nil otherwise.
type Remote interface {
	Fetch(ctx context.Context, subject string) ([]int64, error)
	Add(ctx context.Context, subject string, jobID int64) ([]int64, error)
	Remove(ctx context.Context, subject string, jobID int64) ([]int64, error)
}

// DetailSource loads full job records for the details cache.
type DetailSource interface {
	Job(ctx context.Context, id int64) (domain.Job, error)
	Jobs(ctx context.Context, ids []int64) ([]domain.Job, error)
}

// Recorder receives toggle outcomes and membership sizes.
type Recorder interface {
	ObserveToggle(kind, outcome string)
	SetMembers(kind string, n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveToggle(string, string) {}
func (nopRecorder) SetMembers(string, int)       {}

// Option configures a Store.
type Option func(*Store)

// WithDetails keeps a cache of full job records alongside the ids.
func WithDetails(d DetailSource) Option {
	return func(s *Store) { s.details = d }
}

// WithLogger sets the logger for rollback and load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder reports outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.rec = r }
}

// Store is one membership collection for the current identity. It is safe for
// concurrent use.
type Store struct {
	kind    Kind
	remote  Remote
	details DetailSource
	logger  *slog.Logger
	rec     Recorder

	mu        sync.Mutex
	state     State
	subject   string
	gen       uint64
	members   map[int64]struct{}
	cache     map[int64]domain.Job
	inflight  map[int64]struct{}
	loadStop  context.CancelFunc
	listeners map[int]func()
	order     []int
	nextID    int
	closed    bool

	wg sync.WaitGroup
}

// New returns an empty store for kind backed by remote.
func New(kind Kind, remote Remote, opts ...Option) *Store {
	s := &Store{
		kind:      kind,
		remote:    remote,
		logger:    slog.New(slog.DiscardHandler),
		rec:       nopRecorder{},
		members:   make(map[int64]struct{}),
		cache:     make(map[int64]domain.Job),
		inflight:  make(map[int64]struct{}),
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("collection", string(kind))
	return s
}

// Kind returns the collection this store mirrors.
func (s *Store) Kind() Kind { return s.kind }

// Attach follows sess: the store loads for the current identity now and on
// every later login, and empties on logout. The returned func detaches.
func (s *Store) Attach(sess *session.Store) (detach func()) {
	cancel := sess.Subscribe(s.SetIdentity)
	s.SetIdentity(sess.CurrentIdentity())
	return cancel
}

// SetIdentity switches the store to id. A nil identity empties the store
// before returning, without any network call. Otherwise the store enters
// Loading and fetches in the background. Results from an earlier identity
// are discarded.
func (s *Store) SetIdentity(id *session.Identity) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	if s.loadStop != nil {
		s.loadStop()
		s.loadStop = nil
	}
	clear(s.members)
	clear(s.cache)
	clear(s.inflight)

	if id == nil {
		s.state = StateEmpty
		s.subject = ""
		s.mu.Unlock()
		s.rec.SetMembers(string(s.kind), 0)
		s.notify()
		return
	}

	s.state = StateLoading
	s.subject = id.Subject
	gen, subject := s.gen, s.subject
	ctx, cancel := context.WithCancel(context.Background())
	s.loadStop = cancel
	s.wg.Add(1)
	s.mu.Unlock()
	s.notify()

	go func() {
		defer s.wg.Done()
		defer cancel()
		s.load(ctx, gen, subject)
	}()
}

// Refresh re-fetches the membership for the current identity and waits for
// the result.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.subject == "" {
		s.mu.Unlock()
		return ErrNoIdentity
	}
	gen, subject := s.gen, s.subject
	s.mu.Unlock()
	return s.load(ctx, gen, subject)
}

// load fetches membership for subject and installs it if gen is still
// current. A failed fetch leaves the store Ready and empty.
func (s *Store) load(ctx context.Context, gen uint64, subject string) error {
	ids, err := s.remote.Fetch(ctx, subject)
	if err != nil {
		s.logger.Warn("load membership failed", "subject", subject, "error", err)
		ids = nil
	}

	var jobs []domain.Job
	if err == nil && s.details != nil && len(ids) > 0 {
		var derr error
		jobs, derr = s.details.Jobs(ctx, ids)
		if derr != nil {
			s.logger.Warn("load job details failed", "subject", subject, "error", derr)
		}
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return nil
	}
	// Jobs with a change in flight keep their optimistic state until the
	// change settles.
	for id := range s.members {
		if _, busy := s.inflight[id]; !busy {
			delete(s.members, id)
		}
	}
	for id := range s.cache {
		if _, busy := s.inflight[id]; !busy {
			delete(s.cache, id)
		}
	}
	for _, id := range ids {
		if _, busy := s.inflight[id]; !busy {
			s.members[id] = struct{}{}
		}
	}
	s.fillCache(jobs)
	s.state = StateReady
	n := len(s.members)
	s.mu.Unlock()

	s.rec.SetMembers(string(s.kind), n)
	s.notify()
	return err
}

// fillCache stores jobs that are members. Caller holds mu.
func (s *Store) fillCache(jobs []domain.Job) {
	if s.details == nil {
		return
	}
	for _, j := range jobs {
		if _, ok := s.members[j.ID]; ok {
			s.cache[j.ID] = j
		}
	}
}

// WaitReady blocks until the store has loaded for the current identity.
// It returns ErrNoIdentity when the store is empty.
func (s *Store) WaitReady(ctx context.Context) error {
	changed := make(chan struct{}, 1)
	cancel := s.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	for {
		switch s.State() {
		case StateReady:
			return nil
		case StateEmpty:
			return ErrNoIdentity
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// State returns the load state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Contains reports whether jobID is currently a member, including optimistic
// changes not yet confirmed.
func (s *Store) Contains(jobID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[jobID]
	return ok
}

// Pending reports whether a change for jobID is awaiting the server.
func (s *Store) Pending(jobID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[jobID]
	return ok
}

// Snapshot is a point-in-time copy of a store.
type Snapshot struct {
	State   State
	Subject string
	Members []int64      // ascending
	Details []domain.Job // cached records for members, ascending by id
}

// Contains reports whether jobID is in the snapshot.
func (sn Snapshot) Contains(jobID int64) bool {
	_, ok := slices.BinarySearch(sn.Members, jobID)
	return ok
}

// Len returns the number of members.
func (sn Snapshot) Len() int { return len(sn.Members) }

// Snapshot copies the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn := Snapshot{
		State:   s.state,
		Subject: s.subject,
		Members: make([]int64, 0, len(s.members)),
	}
	for id := range s.members {
		sn.Members = append(sn.Members, id)
	}
	slices.Sort(sn.Members)
	if s.details != nil {
		sn.Details = make([]domain.Job, 0, len(s.cache))
		for _, id := range sn.Members {
			if j, ok := s.cache[id]; ok {
				sn.Details = append(sn.Details, j)
			}
		}
	}
	return sn
}

// Subscribe registers fn to run after every change. Listeners run
// synchronously, possibly on a background goroutine.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			if i := slices.Index(s.order, id); i >= 0 {
				s.order = slices.Delete(s.order, i, i+1)
			}
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close stops background loads and waits for them to finish.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	if s.loadStop != nil {
		s.loadStop()
		s.loadStop = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// ready returns the current subject if the store accepts changes. Caller
// holds mu.
func (s *Store) ready() (string, error) {
	switch {
	case s.subject == "":
		return "", ErrNoIdentity
	case s.state != StateReady:
		return "", ErrNotReady
	}
	return s.subject, nil
}
