// Package streak derives continuous-completion streaks from checklist history.
// Everything here is recomputed from raw history; cached counters on the
// user row are never read back.
package streak

import (
	"sort"

	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/utils"
)

// Compute walks history from the most recent date backwards. A date counts
// when it is exactly `count` days before today and its checklist is complete;
// the first date that fails either test ends the streak.
func Compute(history models.History, today string) int {
	count := 0
	for _, date := range history.Dates() {
		diff, err := utils.DaysBetween(today, date)
		if err != nil || diff != count {
			break
		}
		if !history[date].IsComplete() {
			break
		}
		count++
	}
	return count
}

// Longest returns the longest run of consecutive complete days anywhere in history
func Longest(history models.History) int {
	dates := history.Dates()
	sort.Strings(dates)

	best, run := 0, 0
	prev := ""
	for _, date := range dates {
		if !history[date].IsComplete() {
			run, prev = 0, ""
			continue
		}
		if prev != "" {
			if diff, err := utils.DaysBetween(date, prev); err == nil && diff == 1 {
				run++
			} else {
				run = 1
			}
		} else {
			run = 1
		}
		prev = date
		if run > best {
			best = run
		}
	}
	return best
}

// CompletedDays counts the days whose checklist is complete
func CompletedDays(history models.History) int {
	n := 0
	for _, inst := range history {
		if inst.IsComplete() {
			n++
		}
	}
	return n
}

// LastCompleted returns the most recent complete date, or "" if none
func LastCompleted(history models.History) string {
	for _, date := range history.Dates() {
		if history[date].IsComplete() {
			return date
		}
	}
	return ""
}

// Summarize computes item totals and the completion rate for one checklist
func Summarize(inst models.DailyInstance) models.DayStatistics {
	total, checked := inst.Counts()
	rate := 1.0
	if total > 0 {
		rate = float64(checked) / float64(total)
	}
	return models.DayStatistics{
		Date:           inst.Date,
		ItemsTotal:     total,
		ItemsChecked:   checked,
		CompletionRate: rate,
		Completed:      inst.IsComplete(),
	}
}

// Mirror builds the denormalized summary written to the user row.
// previousLongest keeps the best streak ever seen even if older history
// is no longer loaded.
func Mirror(history models.History, today string, previousLongest int) models.StreakMirror {
	current := Compute(history, today)
	longest := max(previousLongest, current, Longest(history))
	return models.StreakMirror{
		StreakDays:        current,
		LongestStreak:     longest,
		LastChecklistDate: LastCompleted(history),
		TotalChecklists:   CompletedDays(history),
	}
}
