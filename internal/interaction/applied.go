package interaction

import (
	"context"
	"fmt"
)

// Apply adds jobID only after the server accepts it. Applying to a job that
// is already a member is a no-op.
func (s *Store) Apply(ctx context.Context, jobID int64) error {
	s.mu.Lock()
	subject, err := s.ready()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := s.members[jobID]; ok {
		s.mu.Unlock()
		return nil
	}
	if _, busy := s.inflight[jobID]; busy {
		s.mu.Unlock()
		return ErrToggleInFlight
	}
	s.inflight[jobID] = struct{}{}
	gen := s.gen
	s.mu.Unlock()
	s.notify()

	ids, err := s.remote.Add(ctx, subject, jobID)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.rec.ObserveToggle(string(s.kind), TxnDiscarded.String())
		if err != nil {
			return fmt.Errorf("interaction.Apply: %w", err)
		}
		return nil
	}
	delete(s.inflight, jobID)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("apply failed", "job_id", jobID, "error", err)
		s.rec.ObserveToggle(string(s.kind), TxnRolledBack.String())
		s.notify()
		return fmt.Errorf("interaction.Apply: %w", err)
	}
	if ids != nil {
		clear(s.members)
		for _, id := range ids {
			s.members[id] = struct{}{}
		}
	}
	s.members[jobID] = struct{}{}
	n := len(s.members)
	s.mu.Unlock()

	s.rec.ObserveToggle(string(s.kind), TxnConfirmed.String())
	s.rec.SetMembers(string(s.kind), n)
	s.notify()
	return nil
}

// Withdraw removes jobID from the local set only; the server keeps its
// record. It reports whether jobID was a member.
func (s *Store) Withdraw(jobID int64) bool {
	s.mu.Lock()
	if _, busy := s.inflight[jobID]; busy {
		s.mu.Unlock()
		return false
	}
	_, ok := s.members[jobID]
	delete(s.members, jobID)
	delete(s.cache, jobID)
	n := len(s.members)
	s.mu.Unlock()

	if ok {
		s.logger.Info("withdrawn locally", "job_id", jobID)
		s.rec.SetMembers(string(s.kind), n)
		s.notify()
	}
	return ok
}
