package domain

// Candidate is a job seeker profile listed on the talent board.
type Candidate struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	Location        string   `json:"location"`
	ExperienceLevel string   `json:"experienceLevel,omitempty"`
	Experience      string   `json:"experience,omitempty"` // free text, e.g. "7 years"
	Rate            string   `json:"rate,omitempty"`       // free text, e.g. "$50-70/hr"
	Rating          float64  `json:"rating,omitempty"`
	Description     string   `json:"description,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Available       bool     `json:"available"`
	CreatedAt       string   `json:"createdAt,omitempty"`
}
