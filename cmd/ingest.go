package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/saurav/teachback/internal/knowledge"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fold an externally assessed session into the knowledge graph",
	Long: `Apply a session outcome produced outside the app, either from a JSON
file (--file) or from flags. Mastered concepts gain mastery, gaps are
recorded as known unknowns, and everything enters the review rotation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		now := time.Now()

		outcome, err := outcomeFromFlags(cmd, now)
		if err != nil {
			return err
		}
		if err := outcome.Validate(); err != nil {
			return fmt.Errorf("invalid outcome: %w", err)
		}

		st, a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := a.Graph.ApplyOutcome(outcome, now); err != nil {
			return fmt.Errorf("apply outcome: %w", err)
		}
		for _, label := range outcome.Mastered {
			a.Scheduler.Track(knowledge.Slugify(label), now)
		}
		for _, label := range outcome.Gaps {
			a.Scheduler.Track(knowledge.Slugify(label), now)
		}
		if err := a.SaveSnapshot(ctx); err != nil {
			return err
		}

		fmt.Printf("Ingested %q (score %d): %d mastered, %d gaps.\n",
			outcome.Title, outcome.Score, len(outcome.Mastered), len(outcome.Gaps))
		for _, label := range outcome.Mastered {
			n := a.Graph.Node(knowledge.Slugify(label))
			if n != nil {
				fmt.Printf("  %-32s %3.0f%%\n", n.Label, n.Mastery*100)
			}
		}
		return nil
	},
}

// outcomeFromFlags builds the outcome from --file when given, from
// individual flags otherwise.
func outcomeFromFlags(cmd *cobra.Command, now time.Time) (*knowledge.Outcome, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read outcome file: %w", err)
		}
		var outcome knowledge.Outcome
		if err := json.Unmarshal(data, &outcome); err != nil {
			return nil, fmt.Errorf("parse outcome file: %w", err)
		}
		if outcome.ID == "" {
			outcome.ID = uuid.NewString()
		}
		if outcome.Date.IsZero() {
			outcome.Date = now
		}
		return &outcome, nil
	}

	topic, _ := cmd.Flags().GetString("topic")
	score, _ := cmd.Flags().GetInt("score")
	mastered, _ := cmd.Flags().GetStringSlice("mastered")
	gaps, _ := cmd.Flags().GetStringSlice("gaps")
	domain, _ := cmd.Flags().GetString("domain")

	if topic == "" {
		return nil, fmt.Errorf("either --file or --topic is required")
	}

	return &knowledge.Outcome{
		ID:       uuid.NewString(),
		Date:     now,
		Title:    topic,
		Domain:   knowledge.InferDomain(topic, domain),
		Score:    score,
		Mastered: mastered,
		Gaps:     gaps,
	}, nil
}

func init() {
	ingestCmd.Flags().String("file", "", "Path to a JSON outcome file")
	ingestCmd.Flags().String("topic", "", "Session topic")
	ingestCmd.Flags().Int("score", 0, "Session score (0-100)")
	ingestCmd.Flags().StringSlice("mastered", nil, "Concepts explained correctly")
	ingestCmd.Flags().StringSlice("gaps", nil, "Concepts with gaps")
	ingestCmd.Flags().String("domain", "", "Domain override (inferred when empty)")
}
