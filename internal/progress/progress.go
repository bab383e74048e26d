// Package progress maps a streak onto goal progress and the dragon's
// evolution stage.
package progress

import (
	"math"

	"github.com/julianstephens/dragonlog/internal/constants"
)

// StageInfo describes one dragon evolution stage
type StageInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Stages is the dragon evolution catalogue, earliest first
var Stages = [constants.StageCount]StageInfo{
	{Title: "Glowing egg", Description: "The egg rocks gently. Keep your checklist going.", Icon: "🥚"},
	{Title: "Signs of hatching", Description: "Cracks are showing. Something is about to emerge.", Icon: "💫"},
	{Title: "Baby dragon", Description: "A tiny dragon has hatched and follows you around.", Icon: "🐲"},
	{Title: "Grown dragon", Description: "Your dragon spreads its wings. Goal in sight.", Icon: "🐉"},
}

// Projection is the progress view of a streak
type Projection struct {
	Streak   int       `json:"streak"`
	GoalDays int       `json:"goal_days"`
	Ratio    float64   `json:"ratio"`
	Stage    int       `json:"stage"`
	Info     StageInfo `json:"info"`
}

// Ratio returns streak/goalDays clamped to [0, 1]; 0 when goalDays <= 0
func Ratio(streak, goalDays int) float64 {
	if goalDays <= 0 || streak <= 0 {
		return 0
	}
	return math.Min(float64(streak)/float64(goalDays), 1)
}

// Stage maps a ratio onto one of stageCount evenly spaced stages
func Stage(ratio float64, stageCount int) int {
	if stageCount <= 0 || math.IsNaN(ratio) || ratio <= 0 {
		return 0
	}
	if ratio >= 1 {
		return stageCount - 1
	}
	return int(math.Floor(ratio * float64(stageCount)))
}

// Project computes ratio and stage for a streak against a goal
func Project(streak, goalDays int) Projection {
	ratio := Ratio(streak, goalDays)
	stage := Stage(ratio, constants.StageCount)
	return Projection{
		Streak:   streak,
		GoalDays: goalDays,
		Ratio:    ratio,
		Stage:    stage,
		Info:     Stages[stage],
	}
}

// DaysRemaining returns how many more streak days reach the goal
func (p Projection) DaysRemaining() int {
	return max(p.GoalDays-p.Streak, 0)
}
