package main

import (
	"fmt"
	"strings"
)

const (
	maxKeyPoints        = 5
	keyPointFallbackLen = 200
	noDescriptionText   = "No description provided"
)

type actionKey struct {
	Type  string
	State string
}

var actionRecommendations = map[actionKey]string{
	{"Bug", "New"}:          "Investigate and reproduce the issue",
	{"Bug", "Active"}:       "Continue debugging and provide status updates",
	{"Bug", "In Progress"}:  "Focus on completing the fix",
	{"Task", "To Do"}:       "Schedule work and move to Active",
	{"Task", "Active"}:      "Continue work and provide status updates",
	{"Task", "In Progress"}: "Focus on completing current tasks",
}

// AnalyzeContent derives the qualitative analysis for a work item. Like
// scoring, it is total: missing fields degrade to fixed fallbacks.
func AnalyzeContent(item WorkItem) Analysis {
	return Analysis{
		Summary:   fmt.Sprintf("%s: %s", item.Type, item.Title),
		KeyPoints: extractKeyPoints(item.Description),
		Action:    actionRecommendation(item.Type, item.State),
		Impact:    assessImpact(item.Type, item.Title, item.Description),
	}
}

// extractKeyPoints collects bullet and numbered-list lines from the
// description, up to maxKeyPoints of them. With no list structure it falls
// back to a truncated prefix of the description.
func extractKeyPoints(description string) string {
	if description == "" {
		return noDescriptionText
	}

	var keyLines []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if isListLine(line) {
			keyLines = append(keyLines, line)
			if len(keyLines) == maxKeyPoints {
				break
			}
		}
	}
	if len(keyLines) > 0 {
		return strings.Join(keyLines, "\n")
	}

	if len(description) > keyPointFallbackLen {
		return description[:keyPointFallbackLen] + "..."
	}
	return description + "..."
}

func isListLine(line string) bool {
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•") {
		return true
	}
	for i := 1; i <= 9; i++ {
		if strings.HasPrefix(line, fmt.Sprintf("%d.", i)) {
			return true
		}
	}
	return false
}

func actionRecommendation(workType, state string) string {
	if action, ok := actionRecommendations[actionKey{workType, state}]; ok {
		return action
	}
	return fmt.Sprintf("Continue work on %s", strings.ToLower(workType))
}

func assessImpact(workType, title, description string) string {
	text := strings.ToLower(title + " " + description)

	if strings.EqualFold(workType, "bug") {
		switch {
		case containsAny(text, []string{"crash", "error", "exception", "fail"}):
			return "High - Potential system stability impact"
		case containsAny(text, []string{"ui", "display", "visual"}):
			return "Medium - User experience impact"
		default:
			return "Low to Medium - Functional impact"
		}
	}

	if containsAny(text, []string{"performance", "security", "data"}) {
		return "High - Core system impact"
	}
	return "Medium - Feature/functionality impact"
}
