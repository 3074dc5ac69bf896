package recurrence

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

var weekdayTokens = map[string]time.Weekday{
	"su": time.Sunday, "sun": time.Sunday, "sunday": time.Sunday,
	"mo": time.Monday, "mon": time.Monday, "monday": time.Monday,
	"tu": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"we": time.Wednesday, "wed": time.Wednesday, "wednesday": time.Wednesday,
	"th": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fr": time.Friday, "fri": time.Friday, "friday": time.Friday,
	"sa": time.Saturday, "sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekdays reads a weekday set from a JSON array (names or 0-6
// numbers) or a comma separated list. Unrecognized tokens are dropped.
// The result is sorted and free of duplicates.
func ParseWeekdays(raw string) []time.Weekday {
	seen := make(map[time.Weekday]bool)
	for _, tok := range splitTokens(raw) {
		if wd, ok := weekdayTokens[strings.ToLower(tok)]; ok {
			seen[wd] = true
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil && n >= 0 && n <= 6 {
			seen[time.Weekday(n)] = true
		}
	}

	days := make([]time.Weekday, 0, len(seen))
	for wd := range seen {
		days = append(days, wd)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// ParseMonthDays reads a day-of-month set from a JSON array or a comma
// separated list. Non-numeric tokens and values outside 1..31 are dropped.
func ParseMonthDays(raw string) []int {
	var days []int
	for _, tok := range splitTokens(raw) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		days = append(days, n)
	}
	return NormalizeMonthDays(days)
}

// NormalizeMonthDays filters to 1..31, sorts and removes duplicates.
func NormalizeMonthDays(days []int) []int {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 1 || d > 31 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// FormatWeekdays encodes a weekday set as the JSON array stored in the
// days_of_week column.
func FormatWeekdays(days []time.Weekday) string {
	names := make([]string, 0, len(days))
	for _, wd := range days {
		names = append(names, strings.ToLower(wd.String()[:3]))
	}
	data, _ := json.Marshal(names)
	return string(data)
}

// FormatMonthDays encodes a day-of-month set as a JSON array.
func FormatMonthDays(days []int) string {
	if days == nil {
		days = []int{}
	}
	data, _ := json.Marshal(days)
	return string(data)
}

// splitTokens accepts either a JSON array of strings/numbers or a plain
// comma separated list.
func splitTokens(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var items []any
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil
		}
		tokens := make([]string, 0, len(items))
		for _, item := range items {
			switch v := item.(type) {
			case string:
				tokens = append(tokens, strings.TrimSpace(v))
			case float64:
				if v == float64(int(v)) {
					tokens = append(tokens, strconv.Itoa(int(v)))
				}
			}
		}
		return tokens
	}

	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
