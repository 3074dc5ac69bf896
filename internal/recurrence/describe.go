package recurrence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

// Describe renders a recurrence rule for display.
func Describe(rule *models.Recurrence) string {
	if rule == nil || !rule.Enabled {
		return "once"
	}

	interval := rule.EffectiveInterval()
	var b strings.Builder
	switch rule.Frequency {
	case models.FrequencyDaily:
		b.WriteString(every(interval, "day"))
	case models.FrequencyWeekly:
		b.WriteString(every(interval, "week"))
		if len(rule.DaysOfWeek) > 0 {
			names := make([]string, 0, len(rule.DaysOfWeek))
			for _, wd := range rule.DaysOfWeek {
				names = append(names, wd.String()[:3])
			}
			b.WriteString(" on " + strings.Join(names, ","))
		}
	case models.FrequencyMonthly:
		b.WriteString(every(interval, "month"))
		if len(rule.DaysOfMonth) > 0 {
			nums := make([]string, 0, len(rule.DaysOfMonth))
			for _, d := range rule.DaysOfMonth {
				nums = append(nums, strconv.Itoa(d))
			}
			b.WriteString(" on day " + strings.Join(nums, ","))
		}
	case models.FrequencyYearly:
		b.WriteString(every(interval, "year"))
	default:
		return "unknown"
	}

	if rule.EndDate != nil {
		b.WriteString(" until " + rule.EndDate.Format(constants.DateFormat))
	}
	if rule.Merge {
		b.WriteString(" (streak)")
	}
	return b.String()
}

func every(n int, unit string) string {
	if n == 1 {
		return "every " + unit
	}
	return fmt.Sprintf("every %d %ss", n, unit)
}
