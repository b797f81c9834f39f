package cmd

import (
	"context"
	"fmt"

	"github.com/saurav/teachback/internal/app"
	"github.com/saurav/teachback/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "teachback",
	Short: "Learn by teaching an AI student",
	Long:  "Teachback — terminal app where you explain a topic to an AI student, get graded on the explanation, and track what you actually retain.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TEACHBACK_DB env var)")

	rootCmd.AddCommand(teachCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then TEACHBACK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openApp opens the store and restores learner state from the latest
// snapshot. The caller owns closing the returned store.
func openApp(ctx context.Context, cmd *cobra.Command) (*store.Store, *app.App, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	a, err := app.Load(ctx, st)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("load learner state: %w", err)
	}
	return st, a, nil
}
