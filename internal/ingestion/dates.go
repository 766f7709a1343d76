package ingestion

import "time"

// scoreboardDateLayout is the feed's date parameter format.
const scoreboardDateLayout = "20060102"

// DateRange lists the scoreboard dates for a days-long backfill ending at
// end, inclusive, oldest first.
func DateRange(end time.Time, days int) []string {
	if days < 1 {
		return nil
	}
	dates := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		dates = append(dates, end.AddDate(0, 0, -i).Format(scoreboardDateLayout))
	}
	return dates
}
