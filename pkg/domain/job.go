package domain

// Job is a job listing as served by the Findy API.
type Job struct {
	ID                  int64    `json:"id"`
	Title               string   `json:"title"`
	Company             string   `json:"company"`
	Location            string   `json:"location"`
	Type                string   `json:"type"`
	Salary              string   `json:"salary,omitempty"` // free text: "8-12", "$120k - $160k", "8 LPA - 12 LPA"
	Posted              string   `json:"posted,omitempty"` // free-text recency, e.g. "2 days ago"
	PostedAt            string   `json:"postedAt,omitempty"`
	Skills              []string `json:"skills,omitempty"`
	Description         string   `json:"description,omitempty"`
	Requirements        string   `json:"requirements,omitempty"`
	Benefits            string   `json:"benefits,omitempty"`
	ExperienceLevel     string   `json:"experienceLevel,omitempty"`
	Featured            bool     `json:"featured,omitempty"`
	Urgent              bool     `json:"urgent,omitempty"`
	Remote              bool     `json:"remote,omitempty"`
	ApplicationEmail    string   `json:"applicationEmail,omitempty"`
	ApplicationDeadline string   `json:"applicationDeadline,omitempty"`
	AcceptApplications  bool     `json:"acceptApplications,omitempty"`
}

// Job types offered by the posting form.
var JobTypes = []string{
	"Full-time",
	"Part-time",
	"Contract",
	"Remote",
}

// Experience levels offered by the search filters.
var ExperienceLevels = []string{
	"Entry Level",
	"Mid Level",
	"Senior Level",
	"Executive",
}

var jobTypeSet = func() map[string]bool {
	m := make(map[string]bool, len(JobTypes))
	for _, t := range JobTypes {
		m[t] = true
	}
	return m
}()

// ValidJobType returns true if t is one of JobTypes (exact match).
func ValidJobType(t string) bool {
	return jobTypeSet[t]
}

// Posting returns the recency label to show for a job, preferring the
// free-text Posted field over the raw timestamp.
func (j Job) Posting() string {
	if j.Posted != "" {
		return j.Posted
	}
	return j.PostedAt
}
