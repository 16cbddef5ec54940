package interaction

import (
	"context"
	"log/slog"

	"github.com/findyjobs/findy/internal/session"
	"github.com/findyjobs/findy/pkg/client"
	"github.com/findyjobs/findy/pkg/domain"
)

// SavedAPI is the part of the API client behind the saved collection.
type SavedAPI interface {
	SavedJobs(ctx context.Context, userID string) ([]int64, error)
	SaveJob(ctx context.Context, userID string, jobID int64) ([]int64, error)
	UnsaveJob(ctx context.Context, userID string, jobID int64) ([]int64, error)
}

// AppliedAPI is the part of the API client behind the applied collection.
type AppliedAPI interface {
	AppliedJobs(ctx context.Context, userID string) ([]int64, error)
	ApplyJob(ctx context.Context, userID string, jobID int64) error
}

// JobAPI loads job records.
type JobAPI interface {
	GetJob(ctx context.Context, id int64) (*domain.Job, error)
	JobsByIDs(ctx context.Context, ids []int64) ([]domain.Job, error)
}

type savedRemote struct{ api SavedAPI }

// NewSavedRemote adapts api to Remote.
func NewSavedRemote(api SavedAPI) Remote { return savedRemote{api} }

func (r savedRemote) Fetch(ctx context.Context, subject string) ([]int64, error) {
	return r.api.SavedJobs(ctx, subject)
}

func (r savedRemote) Add(ctx context.Context, subject string, jobID int64) ([]int64, error) {
	return r.api.SaveJob(ctx, subject, jobID)
}

func (r savedRemote) Remove(ctx context.Context, subject string, jobID int64) ([]int64, error) {
	return r.api.UnsaveJob(ctx, subject, jobID)
}

type appliedRemote struct{ api AppliedAPI }

// NewAppliedRemote adapts api to Remote. The API has no way to delete an
// application, so Remove fails with ErrUnsupported.
func NewAppliedRemote(api AppliedAPI) Remote { return appliedRemote{api} }

func (r appliedRemote) Fetch(ctx context.Context, subject string) ([]int64, error) {
	return r.api.AppliedJobs(ctx, subject)
}

func (r appliedRemote) Add(ctx context.Context, subject string, jobID int64) ([]int64, error) {
	return nil, r.api.ApplyJob(ctx, subject, jobID)
}

func (appliedRemote) Remove(context.Context, string, int64) ([]int64, error) {
	return nil, ErrUnsupported
}

type jobDetails struct{ api JobAPI }

// NewJobDetails adapts api to DetailSource.
func NewJobDetails(api JobAPI) DetailSource { return jobDetails{api} }

func (d jobDetails) Job(ctx context.Context, id int64) (domain.Job, error) {
	j, err := d.api.GetJob(ctx, id)
	if err != nil {
		return domain.Job{}, err
	}
	return *j, nil
}

func (d jobDetails) Jobs(ctx context.Context, ids []int64) ([]domain.Job, error) {
	return d.api.JobsByIDs(ctx, ids)
}

// Stores bundles the saved and applied collections of one session.
type Stores struct {
	Saved   *Store
	Applied *Store

	detach []func()
}

// Open builds both collections over c and attaches them to sess.
func Open(sess *session.Store, c *client.Client, logger *slog.Logger, rec Recorder) *Stores {
	opts := []Option{WithLogger(logger)}
	if rec != nil {
		opts = append(opts, WithRecorder(rec))
	}
	saved := New(KindSaved, NewSavedRemote(c), append(opts, WithDetails(NewJobDetails(c)))...)
	applied := New(KindApplied, NewAppliedRemote(c), opts...)
	return &Stores{
		Saved:   saved,
		Applied: applied,
		detach:  []func(){saved.Attach(sess), applied.Attach(sess)},
	}
}

// Close detaches from the session and waits for background loads.
func (st *Stores) Close() {
	for _, d := range st.detach {
		d()
	}
	st.Saved.Close()
	st.Applied.Close()
}
