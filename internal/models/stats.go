package models

// HeatmapCell is one calendar day of the completion heatmap.
type HeatmapCell struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// StreakSummary holds consecutive-day runs. MaxStreak >= CurrentStreak.
type StreakSummary struct {
	CurrentStreak int `json:"current_streak"`
	MaxStreak     int `json:"max_streak"`
}

// MonthlyRate compares completions this month against habits x elapsed days.
type MonthlyRate struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Rate      int `json:"rate"`
}

// ChartPoint is one labelled bucket of summed focus minutes.
type ChartPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}
