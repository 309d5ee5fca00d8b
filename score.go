package main

import "strings"

// Classification thresholds. Empirically chosen; kept as named constants so
// they can be tuned without touching the scoring logic.
const (
	highPriorityThreshold   = 8
	mediumPriorityThreshold = 5
)

var stateWeights = map[string]int{
	"in progress": 5,
	"active":      4,
	"new":         3,
	"committed":   3,
	"to do":       2,
	"done":        1,
	"closed":      1,
}

var typeWeights = map[string]int{
	"bug":                  3,
	"task":                 2,
	"product backlog item": 2,
	"epic":                 1,
}

// severityWeights is scanned in order; TFS severity labels look like
// "1 - Critical", so matching is by containment on the lowercased label.
var severityWeights = []struct {
	label  string
	weight int
}{
	{"critical", 4},
	{"high", 3},
	{"medium", 2},
	{"low", 1},
}

var highUrgencyKeywords = []string{"showstopper", "critical", "urgent", "blocker", "production", "down", "crash"}
var mediumUrgencyKeywords = []string{"error", "exception", "fail", "broken", "issue"}

const (
	highKeywordBonus   = 3
	mediumKeywordBonus = 2
)

// ScoreWorkItem computes the additive priority score and its classification.
// Unknown or missing fields contribute zero.
func ScoreWorkItem(item WorkItem) (int, PriorityLevel) {
	score := 0

	score += stateWeights[strings.ToLower(item.State)]
	score += typeWeights[strings.ToLower(item.Type)]

	if item.Priority > 0 {
		if contribution := 5 - item.Priority; contribution > 0 {
			score += contribution
		}
	}

	if item.Severity != "" {
		score += severityWeight(item.Severity)
	}

	text := strings.ToLower(item.Title + " " + item.Description)
	switch {
	case containsAny(text, highUrgencyKeywords):
		score += highKeywordBonus
	case containsAny(text, mediumUrgencyKeywords):
		score += mediumKeywordBonus
	}

	return score, classifyScore(score)
}

func classifyScore(score int) PriorityLevel {
	switch {
	case score >= highPriorityThreshold:
		return PriorityHigh
	case score >= mediumPriorityThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func severityWeight(severity string) int {
	normalized := strings.ToLower(severity)
	for _, sw := range severityWeights {
		if strings.Contains(normalized, sw.label) {
			return sw.weight
		}
	}
	return 0
}

// containsAny is substring containment, matching the backend's free-form
// text conventions ("down" also hits "download"; that is accepted behavior).
func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
