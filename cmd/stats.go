package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/saurav/teachback/internal/achievements"
	"github.com/saurav/teachback/internal/ui/components"
	"github.com/spf13/cobra"
)

const statsBarWidth = 30

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		now := time.Now()
		stats, err := a.UserStats(ctx, now)
		if err != nil {
			return fmt.Errorf("assemble stats: %w", err)
		}
		gstats := a.Graph.StatsAt(now)

		if stats.ConceptsTracked == 0 {
			fmt.Println("No sessions yet. Start with: teachback teach <topic>")
			return nil
		}

		fmt.Println("Overview")
		fmt.Println(strings.Repeat("─", 48))
		fmt.Printf("Sessions completed   %d\n", stats.SessionsCompleted)
		fmt.Printf("Concepts tracked     %d (%d mastered)\n", stats.ConceptsTracked, stats.ConceptsMastered)
		fmt.Printf("Domains touched      %d\n", stats.DomainsTouched)
		fmt.Printf("Reviews completed    %d\n", stats.ReviewsCompleted)
		fmt.Printf("Peak rating          %d\n", stats.PeakRating)
		fmt.Printf("Average mastery      %.0f%%\n", stats.AverageMastery*100)
		fmt.Printf("Velocity             %+.1f%%\n", gstats.Velocity*100)
		fmt.Printf("Retention            %.0f%%\n", stats.Retention*100)

		if len(gstats.Domains) > 0 {
			fmt.Println()
			fmt.Println("Domains")
			fmt.Println(strings.Repeat("─", 48))
			names := make([]string, 0, len(gstats.Domains))
			for name := range gstats.Domains {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				d := gstats.Domains[name]
				bar := components.NewMasteryBar(
					fmt.Sprintf("%s (%d)", name, d.Concepts),
					d.AverageMastery, true, statsBarWidth)
				fmt.Println(bar.View())
			}
		}

		fmt.Println()
		fmt.Println("Concepts")
		fmt.Println(strings.Repeat("─", 48))
		for _, n := range a.Graph.SortedNodes() {
			bar := components.NewMasteryBar(n.Label, n.EffectiveMastery(now), true, statsBarWidth)
			fmt.Println(bar.View())
		}

		badgeIDs, err := st.EventRepo().BadgeIDs(ctx)
		if err != nil {
			return fmt.Errorf("load badges: %w", err)
		}
		if len(badgeIDs) > 0 {
			fmt.Println()
			fmt.Println("Badges")
			fmt.Println(strings.Repeat("─", 48))
			for _, id := range badgeIDs {
				r := achievements.RuleByID(id)
				if r == nil {
					continue
				}
				fmt.Printf("%s %s — %s\n", r.Tier.Icon(), r.Title, r.Description)
			}
		}

		return nil
	},
}
