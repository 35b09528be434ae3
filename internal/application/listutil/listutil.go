package listutil

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PageParams carries limit/offset pagination parsed from a request.
type PageParams struct {
	Limit  int
	Offset int
}

// SortParams carries sorting parameters parsed from a request.
type SortParams struct {
	Sort string // column name, empty when not recognised
	Desc bool
}

// DateRange is a half-open interval on created_at. Nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Window is a stats reporting window.
type Window struct {
	Name     string
	Duration time.Duration // zero means all time
}

// Limits for the two list endpoints.
const (
	MemberDefaultLimit = 25
	MemberMaxLimit     = 50
	AdminDefaultLimit  = 50
	AdminMaxLimit      = 100
)

var (
	ErrInvalidDate   = errors.New("dates must be YYYY-MM-DD or RFC3339")
	ErrInvalidWindow = errors.New("window must be one of: 7d, 30d, all")
	ErrInvalidOrder  = errors.New("order must be asc or desc")
)

// Windows are the supported stats windows, keyed by their query value.
var Windows = map[string]Window{
	"7d":  {Name: "7d", Duration: 7 * 24 * time.Hour},
	"30d": {Name: "30d", Duration: 30 * 24 * time.Hour},
	"all": {Name: "all"},
}

// DefaultWindow is used when the window parameter is absent.
const DefaultWindow = "30d"

// ClampLimit parses raw as a row limit.
// PRE: 1 <= def <= maxLimit
// POST: returns def for missing or unparseable input, otherwise raw clamped to [1, maxLimit]
func ClampLimit(raw string, def, maxLimit int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	if n < 1 {
		return 1
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// ParsePageParams extracts limit and offset from URL query values.
// PRE: none
// POST: Limit in [1, maxLimit]; Offset >= 0
func ParsePageParams(q url.Values, def, maxLimit int) PageParams {
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return PageParams{Limit: ClampLimit(q.Get("limit"), def, maxLimit), Offset: offset}
}

// ParseSortParams extracts sort and order from URL query values.
// Sort falls back to "" for columns outside allowed; order defaults to desc.
func ParseSortParams(q url.Values, allowedColumns []string) (SortParams, error) {
	sort := q.Get("sort")
	if !isAllowedColumn(sort, allowedColumns) {
		sort = ""
	}
	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
		return SortParams{Sort: sort, Desc: true}, nil
	case "asc":
		return SortParams{Sort: sort}, nil
	}
	return SortParams{}, ErrInvalidOrder
}

// ParseDate accepts a calendar date or an RFC3339 timestamp.
// The second return reports whether raw was a bare date.
func ParseDate(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, ErrInvalidDate
}

// ParseDateRange reads from/to. A bare `to` date includes that whole day.
// POST: To, when set, is exclusive
func ParseDateRange(q url.Values) (DateRange, error) {
	var r DateRange
	if raw := q.Get("from"); raw != "" {
		t, _, err := ParseDate(raw)
		if err != nil {
			return DateRange{}, err
		}
		r.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, dateOnly, err := ParseDate(raw)
		if err != nil {
			return DateRange{}, err
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		r.To = &t
	}
	return r, nil
}

// ParseWindow resolves a stats window name. Empty selects DefaultWindow.
func ParseWindow(raw string) (Window, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		raw = DefaultWindow
	}
	w, ok := Windows[raw]
	if !ok {
		return Window{}, ErrInvalidWindow
	}
	return w, nil
}

// Since returns the window's lower bound, or the zero time for "all".
func (w Window) Since(now time.Time) time.Time {
	if w.Duration == 0 {
		return time.Time{}
	}
	return now.Add(-w.Duration)
}

// ParseBool reads a query flag. Only "true" and "1" are true.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true
	}
	return false
}

func isAllowedColumn(col string, allowed []string) bool {
	for _, a := range allowed {
		if col == a {
			return true
		}
	}
	return false
}
