package habits

import "github.com/julianstephens/cadence/internal/models"

// Progress summarizes completion of a task's planned days.
type Progress struct {
	Completed int  `json:"completed"`
	Total     int  `json:"total"`
	Percent   int  `json:"percent"`
	TodayDone bool `json:"today_done"`
}

// ComputeProgress counts the planned occurrence days of task that are
// marked. In merge mode the span is one cycle: Total is 1 and Completed is
// 1 only when every planned day is marked, so Percent is 0 or 100.
func (s *Store) ComputeProgress(task models.Task, rule *models.Recurrence) Progress {
	rec := s.read(RecordID(task))

	planned := make(map[string]struct{})
	var order []string
	for _, occ := range occurrences(task, rule) {
		day := s.dayKey(occ.StartAt)
		if _, ok := planned[day]; ok {
			continue
		}
		planned[day] = struct{}{}
		order = append(order, day)
	}

	completed := 0
	for _, day := range order {
		if rec.has(day) {
			completed++
		}
	}

	p := Progress{
		Completed: completed,
		Total:     len(order),
		TodayDone: rec.has(s.dayKey(s.now())),
	}

	if rule != nil && rule.Merge {
		p.Total = 1
		p.Completed = 0
		if len(order) > 0 && completed == len(order) {
			p.Completed = 1
		}
	}

	if p.Total > 0 {
		p.Percent = p.Completed * 100 / p.Total
	}
	return p
}
