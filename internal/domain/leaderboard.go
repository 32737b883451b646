package domain

import "time"

type LeaderboardEntry struct {
	Rank          int
	PlayerName    string
	FinalFIScore  float64
	BalanceScore  float64
	Age           int
	EducationPath EducationPath
	CompletedAt   time.Time
}
