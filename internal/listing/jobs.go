package listing

import (
	"strings"

	"github.com/findyjobs/findy/pkg/domain"
)

// JobCriteria selects jobs. Zero-valued fields match everything.
type JobCriteria struct {
	Search          string // case-insensitive, against title, company and description
	Location        string // case-insensitive substring
	Type            string // exact
	ExperienceLevel string // exact
	Salary          string // one of SalaryBuckets, or any parseable range
}

// IsZero reports whether c filters nothing.
func (c JobCriteria) IsZero() bool {
	return c == JobCriteria{}
}

// Matches reports whether job satisfies every criterion.
func (c JobCriteria) Matches(job domain.Job) bool {
	if q := strings.TrimSpace(c.Search); q != "" {
		if !containsFold(job.Title, q) && !containsFold(job.Company, q) && !containsFold(job.Description, q) {
			return false
		}
	}
	if loc := strings.TrimSpace(c.Location); loc != "" && !containsFold(job.Location, loc) {
		return false
	}
	if c.Type != "" && job.Type != c.Type {
		return false
	}
	if c.ExperienceLevel != "" && job.ExperienceLevel != c.ExperienceLevel {
		return false
	}
	return SalaryMatches(job.Salary, c.Salary)
}

// FilterJobs returns the jobs matching c in their original order.
func FilterJobs(jobs []domain.Job, c JobCriteria) []domain.Job {
	out := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if c.Matches(j) {
			out = append(out, j)
		}
	}
	return out
}

// Membership answers whether a job id belongs to a collection.
type Membership interface {
	Contains(jobID int64) bool
}

// Row is a job annotated with the current user's saved and applied flags.
type Row struct {
	domain.Job
	Saved   bool `json:"saved"`
	Applied bool `json:"applied"`
}

// Annotate pairs each job with its membership flags. Nil memberships count
// as empty.
func Annotate(jobs []domain.Job, saved, applied Membership) []Row {
	rows := make([]Row, len(jobs))
	for i, j := range jobs {
		rows[i] = Row{
			Job:     j,
			Saved:   saved != nil && saved.Contains(j.ID),
			Applied: applied != nil && applied.Contains(j.ID),
		}
	}
	return rows
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
