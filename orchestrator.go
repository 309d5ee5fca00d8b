package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"time"
)

// RunOptions are the per-invocation knobs of one analysis run.
type RunOptions struct {
	Days   int
	Output OutputChannel
	UseAI  bool
}

// Analyzer sequences one run: fetch, score and analyze, optional AI
// reconciliation with fallback, render, deliver, record.
type Analyzer struct {
	cfg    Config
	source WorkItemSource
	ai     AIAssessmentClient
	db     *sql.DB // optional run-history store
	now    func() time.Time
}

func NewAnalyzer(cfg Config, source WorkItemSource, ai AIAssessmentClient, db *sql.DB) *Analyzer {
	return &Analyzer{cfg: cfg, source: source, ai: ai, db: db, now: time.Now}
}

// Run executes the pipeline. Only fetch and sink failures are returned as
// errors; scoring and analysis are total, and an AI failure degrades to the
// traditional report with the reason annotated.
func (a *Analyzer) Run(ctx context.Context, opts RunOptions) error {
	if opts.Days < 1 {
		opts.Days = 1
	}
	now := a.now()
	since := now.AddDate(0, 0, -opts.Days)

	items, err := a.source.Fetch(ctx, since)
	if err != nil {
		return fmt.Errorf("retrieving work items: %w", err)
	}
	if len(items) == 0 {
		log.Printf("analysis run days=%d: no work items found", opts.Days)
		fmt.Println("No work items found for the specified criteria.")
		a.record(AnalysisRun{RunAt: now, Days: opts.Days, Output: string(opts.Output)})
		return nil
	}
	log.Printf("analysis run days=%d items=%d output=%s ai=%t", opts.Days, len(items), opts.Output, opts.UseAI)

	analyzed := scoreAndAnalyze(items)

	reportCtx := ReportContext{Days: opts.Days, GeneratedAt: now}
	if opts.UseAI && a.ai != nil {
		reportText, aiErr := a.ai.Assess(ctx, items, opts.Days)
		if aiErr != nil {
			// Fallback path: the reason travels into the report, the run continues.
			reportCtx.AIFailure = aiErr.Error()
			log.Printf("ai assessment failed (falling back to traditional analysis): %v", aiErr)
		} else {
			reportCtx.Reconciled = reconciledByID(ReconcileWithAssessment(analyzed, reportText))
		}
	}

	out, err := Render(analyzed, opts.Output, reportCtx)
	if err != nil {
		return err
	}
	if _, err := DeliverReport(a.cfg, out); err != nil {
		return err
	}

	run := AnalysisRun{
		RunAt:     now,
		Days:      opts.Days,
		Output:    string(opts.Output),
		ItemCount: len(analyzed),
		AIUsed:    opts.UseAI,
		AIFailure: reportCtx.AIFailure,
	}
	for _, it := range analyzed {
		switch reportCtx.DisplayLevel(it) {
		case PriorityHigh:
			run.HighCount++
		case PriorityMedium:
			run.MediumCount++
		default:
			run.LowCount++
		}
	}
	a.record(run)
	return nil
}

// scoreAndAnalyze runs the deterministic passes over every item and sorts
// descending by score. The traditional score is always computed, AI or not;
// it is the sort key and the fallback. Ties break on ascending id so output
// order is stable.
func scoreAndAnalyze(items []WorkItem) []AnalyzedItem {
	analyzed := make([]AnalyzedItem, 0, len(items))
	for _, item := range items {
		score, level := ScoreWorkItem(item)
		analyzed = append(analyzed, AnalyzedItem{
			Item:     item,
			Score:    score,
			Level:    level,
			Analysis: AnalyzeContent(item),
		})
	}
	sort.SliceStable(analyzed, func(i, j int) bool {
		if analyzed[i].Score != analyzed[j].Score {
			return analyzed[i].Score > analyzed[j].Score
		}
		return analyzed[i].Item.ID < analyzed[j].Item.ID
	})
	return analyzed
}

func reconciledByID(recs []ReconciledItem) map[int]ReconciledItem {
	byID := make(map[int]ReconciledItem, len(recs))
	for _, rec := range recs {
		byID[rec.Item.ID] = rec
	}
	return byID
}

func (a *Analyzer) record(run AnalysisRun) {
	if a.db == nil {
		return
	}
	if err := RecordRun(a.db, run); err != nil {
		log.Printf("recording analysis run: %v", err)
	}
}
