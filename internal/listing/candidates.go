package listing

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/findyjobs/findy/pkg/domain"
)

// SortOption orders the talent board.
type SortOption string

const (
	SortNone       SortOption = ""
	SortRating     SortOption = "rating"     // highest rating first
	SortRateLow    SortOption = "rate-low"   // lowest minimum rate first
	SortRateHigh   SortOption = "rate-high"  // highest maximum rate first
	SortExperience SortOption = "experience" // most years first
)

// SortOptions lists the orderings offered in the UI.
var SortOptions = []SortOption{SortRating, SortRateLow, SortRateHigh, SortExperience}

// ParseSortOption validates s.
func ParseSortOption(s string) (SortOption, bool) {
	opt := SortOption(s)
	if opt == SortNone || slices.Contains(SortOptions, opt) {
		return opt, true
	}
	return SortNone, false
}

// SortCandidates returns a sorted copy of cands. The sort is stable and
// candidates whose key cannot be parsed go last in their original order.
// An unknown option returns the input order.
func SortCandidates(cands []domain.Candidate, opt SortOption) []domain.Candidate {
	out := slices.Clone(cands)
	switch opt {
	case SortRating:
		slices.SortStableFunc(out, func(a, b domain.Candidate) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	case SortRateLow:
		slices.SortStableFunc(out, byKey(func(c domain.Candidate) (int64, bool) {
			r, ok := ParseSalaryRange(c.Rate, UnitPlain)
			return r.Min, ok
		}, false))
	case SortRateHigh:
		slices.SortStableFunc(out, byKey(func(c domain.Candidate) (int64, bool) {
			r, ok := ParseSalaryRange(c.Rate, UnitPlain)
			return r.Max, ok
		}, true))
	case SortExperience:
		slices.SortStableFunc(out, byKey(func(c domain.Candidate) (int64, bool) {
			n, ok := ParseYears(c.Experience)
			return int64(n), ok
		}, true))
	}
	return out
}

func byKey(key func(domain.Candidate) (int64, bool), desc bool) func(a, b domain.Candidate) int {
	return func(a, b domain.Candidate) int {
		ka, okA := key(a)
		kb, okB := key(b)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		case desc:
			return cmp.Compare(kb, ka)
		default:
			return cmp.Compare(ka, kb)
		}
	}
}

var yearsRe = regexp.MustCompile(`\d+`)

// ParseYears reads the leading integer from free text such as "7 years" or
// "10+ yrs".
func ParseYears(s string) (int, bool) {
	m := yearsRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CandidateCriteria selects candidates. Zero-valued fields match everything.
type CandidateCriteria struct {
	Search          string // name, title, description or any skill
	Location        string
	ExperienceLevel string
	AvailableOnly   bool
}

// FilterCandidates returns the candidates matching c in their original order.
func FilterCandidates(cands []domain.Candidate, c CandidateCriteria) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(cands))
	for _, cand := range cands {
		if c.matches(cand) {
			out = append(out, cand)
		}
	}
	return out
}

func (c CandidateCriteria) matches(cand domain.Candidate) bool {
	if q := strings.TrimSpace(c.Search); q != "" {
		hit := containsFold(cand.Name, q) || containsFold(cand.Title, q) || containsFold(cand.Description, q)
		for _, s := range cand.Skills {
			if hit {
				break
			}
			hit = containsFold(s, q)
		}
		if !hit {
			return false
		}
	}
	if loc := strings.TrimSpace(c.Location); loc != "" && !containsFold(cand.Location, loc) {
		return false
	}
	if c.ExperienceLevel != "" && cand.ExperienceLevel != c.ExperienceLevel {
		return false
	}
	if c.AvailableOnly && !cand.Available {
		return false
	}
	return true
}
