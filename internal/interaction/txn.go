package interaction

import (
	"context"
	"fmt"
	"sync"

	"github.com/findyjobs/findy/pkg/domain"
)

// TxnState is the lifecycle of an optimistic change.
type TxnState int

const (
	// TxnPending: applied locally, not yet sent or answered.
	TxnPending TxnState = iota
	// TxnConfirmed: the server accepted the change.
	TxnConfirmed
	// TxnRolledBack: the server or network failed and the local change was undone.
	TxnRolledBack
	// TxnDiscarded: the identity changed before the answer arrived.
	TxnDiscarded
)

func (t TxnState) String() string {
	switch t {
	case TxnPending:
		return "pending"
	case TxnConfirmed:
		return "confirmed"
	case TxnRolledBack:
		return "rolled_back"
	case TxnDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Txn is one optimistic membership flip for a job.
type Txn struct {
	JobID     int64
	WasMember bool

	store   *Store
	subject string
	gen     uint64

	// removed holds the cached record dropped by the flip, restored on rollback.
	removed *domain.Job
	// inserted is set when the flip added a record to the cache.
	inserted bool

	mu    sync.Mutex
	state TxnState
	err   error
}

// State returns the transaction's current state.
func (t *Txn) State() TxnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the failure that caused a rollback, if any.
func (t *Txn) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Txn) finish(state TxnState, err error) {
	t.mu.Lock()
	t.state = state
	t.err = err
	t.mu.Unlock()
}

// Begin flips jobID's membership locally and returns the pending transaction.
// detail, when given, is cached immediately for an add; otherwise Commit
// fetches it. A second Begin for the same job fails with ErrToggleInFlight
// until the first one commits.
func (s *Store) Begin(jobID int64, detail *domain.Job) (*Txn, error) {
	s.mu.Lock()
	subject, err := s.ready()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if _, busy := s.inflight[jobID]; busy {
		s.mu.Unlock()
		return nil, ErrToggleInFlight
	}

	_, was := s.members[jobID]
	txn := &Txn{JobID: jobID, WasMember: was, store: s, subject: subject, gen: s.gen}
	if was {
		delete(s.members, jobID)
		if j, ok := s.cache[jobID]; ok {
			txn.removed = &j
			delete(s.cache, jobID)
		}
	} else {
		s.members[jobID] = struct{}{}
		if s.details != nil && detail != nil {
			s.cache[jobID] = *detail
			txn.inserted = true
		}
	}
	s.inflight[jobID] = struct{}{}
	s.mu.Unlock()

	s.notify()
	return txn, nil
}

// Commit sends the change and settles the transaction. When the server
// returns the full membership it replaces the local set. On failure the local
// flip is undone exactly and the error is returned. An answer that arrives
// after the identity changed is dropped.
func (t *Txn) Commit(ctx context.Context) error {
	if t.State() != TxnPending {
		return fmt.Errorf("interaction: transaction already %s", t.State())
	}
	s := t.store

	if !t.WasMember && !t.inserted && s.details != nil {
		t.cacheDetail(ctx)
	}

	var (
		ids []int64
		err error
	)
	if t.WasMember {
		ids, err = s.remote.Remove(ctx, t.subject, t.JobID)
	} else {
		ids, err = s.remote.Add(ctx, t.subject, t.JobID)
	}

	if err != nil {
		if t.rollback() {
			s.logger.Warn("toggle rolled back", "job_id", t.JobID, "was_member", t.WasMember, "error", err)
			s.rec.ObserveToggle(string(s.kind), TxnRolledBack.String())
			t.finish(TxnRolledBack, err)
			s.notify()
			return fmt.Errorf("interaction.Commit: %w", err)
		}
		t.discard()
		return nil
	}

	if !t.confirm(ctx, ids) {
		t.discard()
		return nil
	}
	s.rec.ObserveToggle(string(s.kind), TxnConfirmed.String())
	t.finish(TxnConfirmed, nil)
	s.notify()
	return nil
}

func (t *Txn) discard() {
	t.store.logger.Debug("stale toggle result discarded", "job_id", t.JobID)
	t.store.rec.ObserveToggle(string(t.store.kind), TxnDiscarded.String())
	t.finish(TxnDiscarded, nil)
}

// cacheDetail fetches the record for an added job. Failure only leaves the
// cache without it.
func (t *Txn) cacheDetail(ctx context.Context) {
	s := t.store
	job, err := s.details.Job(ctx, t.JobID)
	if err != nil {
		s.logger.Debug("fetch job detail failed", "job_id", t.JobID, "error", err)
		return
	}
	s.mu.Lock()
	if t.gen == s.gen {
		if _, member := s.members[t.JobID]; member {
			s.cache[t.JobID] = job
			t.inserted = true
		}
	}
	s.mu.Unlock()
	s.notify()
}

// rollback undoes the flip. It reports false when the identity has changed.
func (t *Txn) rollback() bool {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.gen != s.gen {
		return false
	}
	delete(s.inflight, t.JobID)
	if t.WasMember {
		s.members[t.JobID] = struct{}{}
		if t.removed != nil {
			s.cache[t.JobID] = *t.removed
		}
	} else {
		delete(s.members, t.JobID)
		delete(s.cache, t.JobID)
	}
	return true
}

// confirm installs the server's membership list, if any. It reports false
// when the identity has changed.
func (t *Txn) confirm(ctx context.Context, ids []int64) bool {
	s := t.store
	s.mu.Lock()
	if t.gen != s.gen {
		s.mu.Unlock()
		return false
	}
	delete(s.inflight, t.JobID)
	if ids == nil {
		n := len(s.members)
		s.mu.Unlock()
		s.rec.SetMembers(string(s.kind), n)
		return true
	}

	clear(s.members)
	for _, id := range ids {
		s.members[id] = struct{}{}
	}
	var missing []int64
	if s.details != nil {
		for id := range s.cache {
			if _, ok := s.members[id]; !ok {
				delete(s.cache, id)
			}
		}
		for _, id := range ids {
			if _, ok := s.cache[id]; !ok {
				missing = append(missing, id)
			}
		}
	}
	n := len(s.members)
	s.mu.Unlock()
	s.rec.SetMembers(string(s.kind), n)

	if len(missing) > 0 {
		jobs, err := s.details.Jobs(ctx, missing)
		if err != nil {
			s.logger.Debug("fill job details failed", "error", err)
			return true
		}
		s.mu.Lock()
		if t.gen == s.gen {
			s.fillCache(jobs)
		}
		s.mu.Unlock()
	}
	return true
}

// Toggle flips jobID's membership and waits for the server. The returned
// transaction reports how it settled.
func (s *Store) Toggle(ctx context.Context, jobID int64) (*Txn, error) {
	txn, err := s.Begin(jobID, nil)
	if err != nil {
		return nil, err
	}
	return txn, txn.Commit(ctx)
}
