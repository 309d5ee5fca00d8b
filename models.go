package main

import "time"

// PriorityLevel is the three-way classification derived from a numeric score.
type PriorityLevel string

const (
	PriorityHigh   PriorityLevel = "HIGH"
	PriorityMedium PriorityLevel = "MEDIUM"
	PriorityLow    PriorityLevel = "LOW"
)

// Provenance records where an item's final priority level came from.
type Provenance string

const (
	ProvenanceTraditional Provenance = "TRADITIONAL"
	ProvenanceAI          Provenance = "AI"
)

// WorkItem is one TFS work item as fetched from the backend. Immutable after
// fetch; nothing downstream writes to it.
type WorkItem struct {
	ID          int
	Title       string
	Description string
	Type        string // "Bug", "Task", "Product Backlog Item", ...
	State       string // "New", "Active", "Closed", ...
	Priority    int    // backend priority field, lower = more urgent; 0 = unset
	Severity    string // "1 - Critical" .. "4 - Low", or empty
	AssignedTo  string
	Tags        []string
	CreatedDate time.Time
	ChangedDate time.Time
}

// Analysis is the deterministic content analysis for one work item.
type Analysis struct {
	Summary   string
	KeyPoints string
	Action    string
	Impact    string
}

// AnalyzedItem bundles a work item with its score, level, and analysis.
type AnalyzedItem struct {
	Item     WorkItem
	Score    int
	Level    PriorityLevel
	Analysis Analysis
}

// ReconciledItem is produced only when an AI assessment was obtained. The
// traditional score and level are always carried along for display and as
// the fallback.
type ReconciledItem struct {
	Item             WorkItem
	FinalLevel       PriorityLevel
	Provenance       Provenance
	TraditionalScore int
	TraditionalLevel PriorityLevel
}

// ReportContext carries run-level metadata into the renderers.
type ReportContext struct {
	Days        int
	GeneratedAt time.Time

	// AIFailure is the one-line reason when an AI pass was attempted and
	// failed; empty otherwise. Renderers surface it, never hide it.
	AIFailure string

	// Reconciled maps work item id to its reconciliation result. Nil when
	// no AI reconciliation ran.
	Reconciled map[int]ReconciledItem
}

// DisplayLevel returns the level to show for an item: the reconciled final
// level when reconciliation ran, the traditional level otherwise.
func (c ReportContext) DisplayLevel(it AnalyzedItem) PriorityLevel {
	if rec, ok := c.Reconciled[it.Item.ID]; ok {
		return rec.FinalLevel
	}
	return it.Level
}
