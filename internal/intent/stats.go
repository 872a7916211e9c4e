package intent

import (
	"math"
	"sort"
	"time"
)

// Counters are the persisted, independently monotonic parts of Stats.
// Everything else in Stats is derived from the intent collection.
type Counters struct {
	TotalIntents     int   `json:"totalIntents"`
	CompletedIntents int   `json:"completedIntents"`
	SkippedTabs      int   `json:"skippedTabs"`
	InstallDate      int64 `json:"installDate"`
}

// Stats is the aggregate view over the intent collection.
type Stats struct {
	TotalIntents      int   `json:"totalIntents"`
	CompletedIntents  int   `json:"completedIntents"`
	ActiveIntents     int   `json:"activeIntents"`
	SkippedTabs       int   `json:"skippedTabs"`
	InstallDate       int64 `json:"installDate"`
	TodayIntents      int   `json:"todayIntents"`
	TodayCompleted    int   `json:"todayCompleted"`
	ProductivityScore int   `json:"productivityScore"`
	Streak            int   `json:"streak"`
	AvgCompletionMs   int64 `json:"avgCompletionMs"`
}

// ComputeStats derives Stats from the full intent collection plus the
// persisted counters. It is a pure function of its arguments: callable at
// any time, no side effects. TotalIntents and CompletedIntents come from the
// collection itself, not the counters, so the two can be compared.
func ComputeStats(intents []Intent, c Counters, now time.Time) Stats {
	st := Stats{
		TotalIntents: len(intents),
		SkippedTabs:  c.SkippedTabs,
		InstallDate:  c.InstallDate,
	}

	today := dayOf(now.UnixMilli(), now.Location())
	var completionSum int64

	for _, in := range intents {
		completed := in.Status == StatusCompleted
		if completed {
			st.CompletedIntents++
			if in.CompletedAt != nil {
				completionSum += *in.CompletedAt - in.CreatedAt
			}
		} else {
			st.ActiveIntents++
		}

		if dayOf(in.CreatedAt, now.Location()) == today {
			st.TodayIntents++
			if completed {
				st.TodayCompleted++
			}
		}
	}

	if st.CompletedIntents > 0 {
		st.AvgCompletionMs = completionSum / int64(st.CompletedIntents)
	}
	if st.TodayIntents > 0 {
		st.ProductivityScore = int(math.Round(float64(st.TodayCompleted) / float64(st.TodayIntents) * 100))
	}
	st.Streak = computeStreak(intents, now)

	return st
}

// computeStreak counts consecutive days ending today that each have at
// least one completed intent.
func computeStreak(intents []Intent, now time.Time) int {
	seen := make(map[string]bool)
	days := make([]string, 0)
	for _, in := range intents {
		if in.Status != StatusCompleted || in.CompletedAt == nil {
			continue
		}
		d := dayOf(*in.CompletedAt, now.Location())
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	streak := 0
	for i, d := range days {
		want := dayOf(now.AddDate(0, 0, -i).UnixMilli(), now.Location())
		if d != want {
			break
		}
		streak++
	}
	return streak
}

// dayOf buckets a Unix-millisecond timestamp into a calendar day string.
func dayOf(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format("2006-01-02")
}
