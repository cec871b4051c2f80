package models

type LeaderboardItem struct {
	Username  string  `json:"username"`
	AccountID int64   `json:"account_id"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank,omitempty"`
}

type LeaderboardResponse struct {
	Leaderboard  []*LeaderboardItem `json:"leaderboard"`
	Me           *LeaderboardItem   `json:"me"`
	Participants int64              `json:"participants"`
}
