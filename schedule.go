package main

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// RunOnSchedule runs the analysis repeatedly on a standard 5-field cron
// expression (minute hour day-of-month month day-of-week).
// Examples: "0 8 * * *" (daily 8am), "0 8 * * 1-5" (weekdays 8am).
// Blocks forever; each run's errors are logged, never fatal to the loop.
func RunOnSchedule(schedule string, run func() error) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid schedule '%s': %w", schedule, err)
	}

	log.Printf("analysis scheduled (cron: %s)", schedule)
	for {
		now := time.Now()
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next analysis at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		time.Sleep(wait)

		if err := run(); err != nil {
			log.Printf("Scheduled analysis error: %v", err)
		}
	}
}
