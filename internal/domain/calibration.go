package domain

// CalibrationBucket aggregates favorite-side implied probability against the
// realized favorite win rate over one probability range. Corresponds to
// calibration_buckets table in PostgreSQL; fully rebuilt each run, empty
// buckets omitted.
type CalibrationBucket struct {
	Label           string  // "0.50-0.55"
	Low             float64 // inclusive
	High            float64 // exclusive, except the final bucket which is closed
	Games           int
	FavoriteWinRate float64 // realized
	AvgImplied      float64 // expected
	Diff            float64 // FavoriteWinRate - AvgImplied
}
