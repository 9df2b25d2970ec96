package helpers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	EventsFolder = "events"
	dateOnly     = "2006-01-02"
)

func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

// TrimID strips whitespace and stray quotes that clients sometimes wrap ids in.
func TrimID(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'")
}

func RemoveDuplicates(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// NormalizeList trims every entry, drops empty ones and removes duplicates,
// keeping first-seen order.
func NormalizeList(items []string) []string {
	trimmed := make([]string, 0, len(items))
	for _, item := range items {
		if v := StringTrim(item); v != "" {
			trimmed = append(trimmed, v)
		}
	}
	return RemoveDuplicates(trimmed)
}

// ParseDateParam accepts RFC 3339 timestamps or plain YYYY-MM-DD dates (UTC
// midnight). endOfDay moves a plain date to its last millisecond so the
// range stays inclusive.
func ParseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	raw = StringTrim(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}

// ParsePageParams reads 1-based page and limit query values. Empty values
// fall back to page 1 and defaultLimit; limit is capped at maxLimit.
func ParsePageParams(pageRaw, limitRaw string, defaultLimit, maxLimit int) (int, int, error) {
	page, limit := 1, defaultLimit
	if v := StringTrim(pageRaw); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
		page = n
	}
	if v := StringTrim(limitRaw); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("limit must be a positive integer")
		}
		limit = n
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	// (page-1)*limit becomes the query skip and must not overflow.
	if page-1 > math.MaxInt/limit {
		return 0, 0, fmt.Errorf("page is out of range")
	}
	return page, limit, nil
}
