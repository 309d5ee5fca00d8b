package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

const appVersion = "2.0.0"

var (
	cfgFile    string
	outputFlag string
	claudeFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "tfs-analyzer [days]",
	Short: "Analyze your TFS work items and rank them by priority",
	Long: `Fetches your TFS work items (assigned or @mentioned), computes a priority
ranking and action recommendations, optionally runs a Claude-assisted
assessment, and renders the result to console, HTML, text, email draft,
browser, or Slack.`,
	Version: appVersion,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days := 1
		if len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil || parsed < 1 {
				return fmt.Errorf("days must be a positive integer, got '%s'", args[0])
			}
			days = parsed
		}

		cfg, err := LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		output := OutputChannel(cfg.DefaultOutput)
		if outputFlag != "" {
			output = OutputChannel(outputFlag)
		}

		analyzer := NewAnalyzer(cfg, NewTFSSource(cfg), NewAIAssessmentClient(cfg), openHistoryDB(cfg))
		return analyzer.Run(context.Background(), RunOptions{
			Days:   days,
			Output: output,
			UseAI:  claudeFlag,
		})
	},
}

var testAuthCmd = &cobra.Command{
	Use:   "test-auth",
	Short: "Verify TFS credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if err := TestTFSAuth(cfg); err != nil {
			return err
		}
		fmt.Println("Authentication successful.")
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		db, err := InitDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening history db %s: %w", cfg.DBPath, err)
		}
		defer db.Close()

		runs, err := RecentRuns(db, historyLimit)
		if err != nil {
			return fmt.Errorf("reading run history: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No recorded runs.")
			return nil
		}
		for _, run := range runs {
			line := fmt.Sprintf("%s  days=%d output=%s items=%d (H:%d M:%d L:%d)",
				run.RunAt.Format("2006-01-02 15:04"), run.Days, run.Output,
				run.ItemCount, run.HighCount, run.MediumCount, run.LowCount)
			if run.AIUsed {
				if run.AIFailure != "" {
					line += " ai=failed (" + run.AIFailure + ")"
				} else {
					line += " ai=ok"
				}
			}
			fmt.Println(line)
		}
		return nil
	},
}

var watchSchedule string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the analysis on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		schedule := watchSchedule
		if schedule == "" {
			schedule = cfg.AnalysisSchedule
		}
		if schedule == "" {
			return fmt.Errorf("no schedule: pass --schedule or set analysis_schedule in the config")
		}

		output := OutputChannel(cfg.DefaultOutput)
		if outputFlag != "" {
			output = OutputChannel(outputFlag)
		}

		analyzer := NewAnalyzer(cfg, NewTFSSource(cfg), NewAIAssessmentClient(cfg), openHistoryDB(cfg))
		return RunOnSchedule(schedule, func() error {
			return analyzer.Run(context.Background(), RunOptions{
				Days:   1,
				Output: output,
				UseAI:  claudeFlag,
			})
		})
	},
}

// openHistoryDB opens the run-history store. History is best-effort: a
// failure disables recording but never blocks the analysis.
func openHistoryDB(cfg Config) *sql.DB {
	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Printf("run history disabled: %v", err)
		return nil
	}
	return db
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/tfs-analyzer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFlag, "output", "", "output method: console, browser, html, text, email, slack")
	rootCmd.PersistentFlags().BoolVar(&claudeFlag, "claude", false, "run a Claude-assisted priority assessment")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of runs to list")
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "5-field cron expression (overrides analysis_schedule)")

	rootCmd.AddCommand(testAuthCmd, historyCmd, watchCmd)
}
