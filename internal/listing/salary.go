// Package listing filters, sorts and annotates job and candidate lists for
// display. Every function is pure: it never mutates its inputs and the same
// arguments always give the same result.
package listing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Scale factors for salary figures.
const (
	UnitPlain    int64 = 1
	UnitThousand int64 = 1_000
	UnitLPA      int64 = 100_000 // lakhs per annum

	// UnitAuto scales unitless figures by size: below 100 they are LPA,
	// below 100000 thousands, and anything larger is plain currency.
	UnitAuto int64 = 0
)

// Open is the Max of a range with no upper bound, such as "12 LPA+".
const Open int64 = math.MaxInt64

// Salary buckets offered by the job search filter.
var SalaryBuckets = []string{
	"0 LPA - 4 LPA",
	"4 LPA - 8 LPA",
	"8 LPA - 12 LPA",
	"12 LPA+",
}

// Range is a closed interval of currency units.
type Range struct {
	Min int64
	Max int64
}

// Overlaps reports whether r and o share at least one value.
func (r Range) Overlaps(o Range) bool {
	return r.Max >= o.Min && r.Min <= o.Max
}

const (
	numPat  = `(\d+(?:\.\d+)?)`
	unitPat = `\s*(lpa|lakhs?|l|k)?`
)

var (
	rangeRe  = regexp.MustCompile(`(?i)` + numPat + unitPat + `\s*(?:-|–|to)\s*\D{0,3}?` + numPat + unitPat)
	plusRe   = regexp.MustCompile(`(?i)` + numPat + unitPat + `\s*\+`)
	singleRe = regexp.MustCompile(`(?i)` + numPat + unitPat)
)

// ParseSalaryRange extracts a salary range from free text. It understands
// "X - Y" with an optional k/K suffix (thousands), "N LPA - M LPA" (lakhs),
// open-ended "N+" and a single figure. A unit written on one side applies to
// both; figures with no unit at all are scaled by bareUnit. Currency symbols,
// thousands separators and trailing qualifiers like "/hr" are ignored.
func ParseSalaryRange(s string, bareUnit int64) (Range, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if m := rangeRe.FindStringSubmatch(s); m != nil {
		unit := pickUnit(m[2], m[4], autoUnit(bareUnit, m[1], m[3]))
		lo, ok1 := scale(m[1], unitOr(m[2], unit))
		hi, ok2 := scale(m[3], unitOr(m[4], unit))
		if !ok1 || !ok2 {
			return Range{}, false
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return Range{Min: lo, Max: hi}, true
	}
	if m := plusRe.FindStringSubmatch(s); m != nil {
		lo, ok := scale(m[1], unitOr(m[2], autoUnit(bareUnit, m[1])))
		if !ok {
			return Range{}, false
		}
		return Range{Min: lo, Max: Open}, true
	}
	if m := singleRe.FindStringSubmatch(s); m != nil {
		v, ok := scale(m[1], unitOr(m[2], autoUnit(bareUnit, m[1])))
		if !ok {
			return Range{}, false
		}
		return Range{Min: v, Max: v}, true
	}
	return Range{}, false
}

// SalaryMatches reports whether a listing's salary falls in bucket. An empty
// or unparseable bucket filters nothing; a listing whose salary cannot be
// parsed never matches a real bucket. Unitless listing figures follow
// UnitAuto, the same reading FormatSalaryLPA displays.
func SalaryMatches(listing, bucket string) bool {
	if strings.TrimSpace(bucket) == "" {
		return true
	}
	want, ok := ParseSalaryRange(bucket, UnitLPA)
	if !ok {
		return true
	}
	got, ok := ParseSalaryRange(listing, UnitAuto)
	if !ok {
		return false
	}
	return got.Overlaps(want)
}

// FormatSalaryLPA renders a salary range in lakhs, reading unitless figures
// as UnitAuto: "8-12" and "800-1200" both become "8 LPA - 12 LPA". Text that
// is not a range is returned as is.
func FormatSalaryLPA(s string) string {
	if !rangeRe.MatchString(strings.ReplaceAll(s, ",", "")) {
		return s
	}
	r, ok := ParseSalaryRange(s, UnitAuto)
	if !ok {
		return s
	}
	return fmt.Sprintf("%s LPA - %s LPA", lakhs(r.Min), lakhs(r.Max))
}

func lakhs(v int64) string {
	return trimFloat(math.Round(float64(v)/float64(UnitLPA)*100) / 100)
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func unitScale(u string) (int64, bool) {
	switch strings.ToLower(u) {
	case "k":
		return UnitThousand, true
	case "l", "lpa", "lakh", "lakhs":
		return UnitLPA, true
	}
	return 0, false
}

// autoUnit resolves UnitAuto from the largest of figs.
func autoUnit(bare int64, figs ...string) int64 {
	if bare != UnitAuto {
		return bare
	}
	var top float64
	for _, f := range figs {
		if v, err := strconv.ParseFloat(f, 64); err == nil && v > top {
			top = v
		}
	}
	switch {
	case top < 100:
		return UnitLPA
	case top < 100_000:
		return UnitThousand
	}
	return UnitPlain
}

func pickUnit(a, b string, bare int64) int64 {
	if v, ok := unitScale(b); ok {
		return v
	}
	if v, ok := unitScale(a); ok {
		return v
	}
	return bare
}

func unitOr(u string, fallback int64) int64 {
	if v, ok := unitScale(u); ok {
		return v
	}
	return fallback
}

func scale(num string, unit int64) (int64, bool) {
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	v := f * float64(unit)
	if v >= math.MaxInt64 {
		return 0, false
	}
	return int64(math.Round(v)), true
}
