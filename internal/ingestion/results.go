package ingestion

import (
	"strconv"
	"strings"
	"time"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/espn"
)

// startTimeLayouts covers the feed's date spellings; it usually drops the
// seconds.
var startTimeLayouts = []string{
	"2006-01-02T15:04Z07:00",
	time.RFC3339,
}

// FlattenScoreboard turns one scoreboard pull into result records, one per
// game. Events without an id are dropped.
func FlattenScoreboard(scoreboardDate, league string, pulledAt time.Time, scoreboard *espn.Scoreboard) []*domain.ResultRecord {
	var records []*domain.ResultRecord
	for _, ev := range scoreboard.Events {
		if ev.ID == "" {
			continue
		}

		// The competition carries the matchup; its date is more precise
		// than the event's.
		var comp espn.Competition
		if len(ev.Competitions) > 0 {
			comp = ev.Competitions[0]
		}
		start := comp.Date
		if start == "" {
			start = ev.Date
		}

		record := &domain.ResultRecord{
			ScoreboardDate: scoreboardDate,
			ResultEventID:  ev.ID,
			League:         league,
			PulledAt:       pulledAt,
			StartAt:        parseStartTime(start),
		}

		for _, c := range comp.Competitors {
			team := c.Team.DisplayName
			if team == "" {
				team = c.Team.Name
			}
			score := parseScore(c.Score)

			switch c.HomeAway {
			case "home":
				record.HomeTeam, record.HomeScore = team, score
			case "away":
				record.AwayTeam, record.AwayScore = team, score
			}
		}

		record.Completed, record.Status = bucketStatus(ev.Status.Type)
		records = append(records, record)
	}
	return records
}

// bucketStatus reduces the feed's status taxonomy to the three the pipeline
// stores. The feed is inconsistent about the completed flag, so "post" state
// and a "Final" detail text both count.
func bucketStatus(st espn.StatusType) (bool, string) {
	detail := st.ShortDetail
	if detail == "" {
		detail = st.Detail
	}
	if detail == "" {
		detail = st.Description
	}

	completed := st.Completed || st.State == "post"
	if !completed && strings.Contains(strings.ToLower(detail), "final") {
		completed = true
	}

	switch {
	case completed:
		return true, domain.StatusFinal
	case st.State == "in":
		return false, domain.StatusInProgress
	default:
		return false, domain.StatusScheduled
	}
}

func parseStartTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// parseScore coerces the feed's string score. Anything non-numeric means no
// score yet.
func parseScore(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
