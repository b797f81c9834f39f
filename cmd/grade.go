package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saurav/teachback/internal/extract"
	"github.com/saurav/teachback/internal/grading"
	"github.com/spf13/cobra"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <topic>",
	Short: "Grade a session from manually supplied criterion scores",
	Long: `Run the full scoring pipeline without an LLM: you supply the five
criterion scores (1-5) and the concept lists yourself. Useful for sessions
held away from the app (a whiteboard session, a study group).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.TrimSpace(strings.Join(args, " "))

		in := grading.Input{Mode: "explain"}
		in.Completeness, _ = cmd.Flags().GetInt("completeness")
		in.Depth, _ = cmd.Flags().GetInt("depth")
		in.Clarity, _ = cmd.Flags().GetInt("clarity")
		in.StructuralCoherence, _ = cmd.Flags().GetInt("coherence")
		in.PedagogicalInsight, _ = cmd.Flags().GetInt("insight")
		if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
			in.Mode = mode
		}
		mastered, _ := cmd.Flags().GetStringSlice("mastered")
		gaps, _ := cmd.Flags().GetStringSlice("gaps")

		ctx := cmd.Context()
		st, a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		t := &extract.Transcript{
			SessionID: uuid.NewString(),
			Topic:     topic,
		}
		report, err := a.FinishManual(ctx, t, in, mastered, gaps, time.Now())
		if err != nil {
			return err
		}

		g := report.Grade
		fmt.Printf("Grade: %s  (aggregate %.2f, score %d/100)\n", g.Grade, g.WeightedAggregate, g.LegacyScore)
		if !g.ConjunctivePass {
			fmt.Println("Conjunctive pass failed: a criterion fell below the minimum floor.")
		}

		for _, r := range report.RatingResults {
			sign := "+"
			if r.Delta < 0 {
				sign = ""
			}
			fmt.Printf("  %-22s %4d → %4d (%s%d)\n", r.Dimension, r.Before, r.After, sign, r.Delta)
		}

		for _, b := range report.NewBadges {
			fmt.Printf("Badge unlocked: %s %s\n", b.Tier.Icon(), b.Title)
		}
		if len(report.Recommendations) > 0 {
			fmt.Println("Next up:")
			for _, r := range report.Recommendations {
				fmt.Printf("  %s — %s\n", r.Label, r.Reason)
			}
		}
		return nil
	},
}

func init() {
	gradeCmd.Flags().Int("completeness", 3, "Completeness score (1-5)")
	gradeCmd.Flags().Int("depth", 3, "Depth score (1-5)")
	gradeCmd.Flags().Int("clarity", 3, "Clarity score (1-5)")
	gradeCmd.Flags().Int("coherence", 3, "Structural coherence score (1-5)")
	gradeCmd.Flags().Int("insight", 3, "Pedagogical insight score (1-5)")
	gradeCmd.Flags().String("mode", "explain", "Session mode: explain or drill")
	gradeCmd.Flags().StringSlice("mastered", nil, "Concepts explained correctly")
	gradeCmd.Flags().StringSlice("gaps", nil, "Concepts with gaps")
}
