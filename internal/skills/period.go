package skills

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// YearMonth is a calendar month. Day-of-month information from raw
// duration strings is discarded at parse time.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Index maps the month onto a linear scale so that interval
// arithmetic is plain integer arithmetic.
func (ym YearMonth) Index() int {
	return ym.Year*12 + int(ym.Month) - 1
}

func (ym YearMonth) Before(other YearMonth) bool {
	return ym.Index() < other.Index()
}

func (ym YearMonth) AddMonths(n int) YearMonth {
	idx := ym.Index() + n
	return YearMonth{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

func (ym YearMonth) String() string {
	return ym.Month.String()[:3] + " " + strconv.Itoa(ym.Year)
}

// MonthOf truncates a wall-clock time to its calendar month.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Period is a resolved employment period at month granularity.
// Open marks periods whose end came from the processing-time
// reference ("present"); the end is re-resolved on every run rather
// than frozen into stored data.
type Period struct {
	Start YearMonth
	End   YearMonth
	Open  bool
}

// Months is the inclusive calendar length: Jan 2020 - Jan 2020 is one
// month, not zero.
func (p Period) Months() int {
	return p.End.Index() - p.Start.Index() + 1
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	fourDigitYearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	slashMonthRe    = regexp.MustCompile(`^(\d{1,2})/((?:19|20)\d{2})$`)
	isoMonthRe      = regexp.MustCompile(`^((?:19|20)\d{2})-(\d{1,2})$`)
	bareYearRe      = regexp.MustCompile(`^((?:19|20)\d{2})$`)
	relativeRe      = regexp.MustCompile(`(?i)^(\d{1,3})\s*(years?|yrs?|months?|mos?)$`)
	rangeSplitRe    = regexp.MustCompile(`(?i)\s+(?:-|–|—|to|until)\s+`)
)

// ParsePeriod converts a free-form duration string into a Period.
// Malformed input is a normal outcome and reported with ok = false,
// never an error. The matchers run in priority order: explicit date
// ranges first, relative "N years"/"N months" forms last. Open-ended
// ends ("present", "current", "now") resolve against the injected
// reference time so that every computation is replayable.
func ParsePeriod(raw string, now time.Time) (Period, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Period{}, false
	}
	ref := MonthOf(now)

	if start, end, ok := splitRange(s); ok {
		return parseRange(start, end, ref)
	}

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Period{}, false
		}
		months := n
		if strings.HasPrefix(strings.ToLower(m[2]), "y") {
			months = n * 12
		}
		return Period{Start: ref.AddMonths(-months), End: ref, Open: true}, true
	}

	return Period{}, false
}

// splitRange separates "start - end" style strings. Tight hyphens
// ("2019-2021") only count as a range delimiter when both halves
// carry their own four-digit year, which keeps ISO endpoints like
// "2020-01" intact.
func splitRange(s string) (string, string, bool) {
	if loc := rangeSplitRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[:loc[0]]), strings.TrimSpace(s[loc[1]:]), true
	}
	if idx := strings.Index(s, "-"); idx > 0 {
		left, right := strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
		if fourDigitYearRe.MatchString(left) &&
			(fourDigitYearRe.MatchString(right) || isOpenEnded(right)) {
			return left, right, true
		}
	}
	return "", "", false
}

func parseRange(startTok, endTok string, ref YearMonth) (Period, bool) {
	start, startOpen, ok := parseEndpoint(startTok, ref)
	if !ok || startOpen {
		return Period{}, false
	}
	end, endOpen, ok := parseEndpoint(endTok, ref)
	if !ok {
		return Period{}, false
	}
	if end.Before(start) {
		// Reversed ranges are treated as malformed rather than
		// silently swapped.
		return Period{}, false
	}
	return Period{Start: start, End: end, Open: endOpen}, true
}

// parseEndpoint resolves one side of a range. Recognized forms:
// "Jan 2020" / "January 2020", "2020", "06/2020", "2020-06", the
// open-ended keywords, and as a last resort any day-precision date
// that dateparse understands, provided a four-digit year is present.
// Two-digit years and yearless month names stay unparseable.
func parseEndpoint(tok string, ref YearMonth) (ym YearMonth, open bool, ok bool) {
	t := strings.TrimSpace(strings.Trim(tok, ".,"))
	if t == "" {
		return YearMonth{}, false, false
	}
	if isOpenEnded(t) {
		return ref, true, true
	}

	lower := strings.ToLower(t)
	if fields := strings.Fields(lower); len(fields) == 2 {
		if month, found := monthNames[strings.Trim(fields[0], ".")]; found {
			if m := bareYearRe.FindStringSubmatch(fields[1]); m != nil {
				year, _ := strconv.Atoi(m[1])
				return YearMonth{Year: year, Month: month}, false, true
			}
			return YearMonth{}, false, false
		}
	}
	if m := bareYearRe.FindStringSubmatch(t); m != nil {
		year, _ := strconv.Atoi(m[1])
		return YearMonth{Year: year, Month: time.January}, false, true
	}
	if m := slashMonthRe.FindStringSubmatch(t); m != nil {
		return numericYearMonth(m[2], m[1])
	}
	if m := isoMonthRe.FindStringSubmatch(t); m != nil {
		return numericYearMonth(m[1], m[2])
	}

	if !fourDigitYearRe.MatchString(t) {
		return YearMonth{}, false, false
	}
	parsed, err := dateparse.ParseAny(t)
	if err != nil {
		return YearMonth{}, false, false
	}
	return MonthOf(parsed), false, true
}

func numericYearMonth(yearStr, monthStr string) (YearMonth, bool, bool) {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	if month < 1 || month > 12 {
		return YearMonth{}, false, false
	}
	return YearMonth{Year: year, Month: time.Month(month)}, false, true
}

func isOpenEnded(tok string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.Trim(tok, "."))) {
	case "present", "current", "now", "ongoing", "today":
		return true
	}
	return false
}
