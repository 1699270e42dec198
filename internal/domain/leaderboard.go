package domain

// LeaderboardEntry - строка рейтинга по доходу в час
type LeaderboardEntry struct {
	Rank              int64  `json:"rank" db:"rank"`
	UserID            int64  `json:"user_id" db:"user_id"`
	FirstName         string `json:"first_name" db:"first_name"`
	IncomeRatePerHour int64  `json:"income_rate_per_hour" db:"income_rate_per_hour"`
}
