package main

import (
	"fmt"
	"strings"
)

// Context window around an id match in the AI report text.
const (
	reconcileLinesBefore = 5
	reconcileLinesAfter  = 10
)

// levelKeywords is scanned in priority order: the first level keyword found
// anywhere in the window wins, HIGH before MEDIUM before LOW.
var levelKeywords = []PriorityLevel{PriorityHigh, PriorityMedium, PriorityLow}

// ReconcileWithAssessment merges a free-text AI report with the deterministic
// results. This is a best-effort textual heuristic, not a parser: the report
// may omit items, reorder them, or carry no structure at all, and every item
// still comes back with a final level. It never fails.
func ReconcileWithAssessment(items []AnalyzedItem, reportText string) []ReconciledItem {
	lines := strings.Split(reportText, "\n")

	reconciled := make([]ReconciledItem, 0, len(items))
	for _, it := range items {
		rec := ReconciledItem{
			Item:             it.Item,
			FinalLevel:       it.Level,
			Provenance:       ProvenanceTraditional,
			TraditionalScore: it.Score,
			TraditionalLevel: it.Level,
		}
		if level, ok := assessedLevel(lines, it.Item.ID); ok {
			rec.FinalLevel = level
			rec.Provenance = ProvenanceAI
		}
		reconciled = append(reconciled, rec)
	}
	return reconciled
}

// assessedLevel locates the item id in the report and scans the surrounding
// lines for a priority level keyword.
func assessedLevel(lines []string, id int) (PriorityLevel, bool) {
	match := -1
	for i, line := range lines {
		if lineMentionsID(line, id) {
			match = i
			break
		}
	}
	if match < 0 {
		return "", false
	}

	start := match - reconcileLinesBefore
	if start < 0 {
		start = 0
	}
	end := match + reconcileLinesAfter + 1
	if end > len(lines) {
		end = len(lines)
	}
	window := strings.ToUpper(strings.Join(lines[start:end], "\n"))

	for _, level := range levelKeywords {
		if strings.Contains(window, string(level)) {
			return level, true
		}
	}
	return "", false
}

// lineMentionsID accepts the id forms an assessment plausibly uses: "#id",
// "ID: id", or the bare number. The bare-substring check subsumes the
// prefixed forms; false positives are tolerated by contract.
func lineMentionsID(line string, id int) bool {
	return strings.Contains(line, fmt.Sprintf("%d", id))
}
