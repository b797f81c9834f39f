package cmd

import (
	"fmt"
	"time"

	"github.com/saurav/teachback/internal/recommend"
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest what to teach next",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		st, a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		recs := recommend.Next(a.Graph, time.Now(), limit)
		if len(recs) == 0 {
			fmt.Println("No recommendations yet. Teach something first: teachback teach <topic>")
			return nil
		}

		for i, r := range recs {
			marker := " "
			if r.Priority == recommend.PriorityHigh {
				marker = "!"
			}
			fmt.Printf("%d. %s %s\n   %s\n", i+1, marker, r.Label, r.Reason)
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().IntP("limit", "n", recommend.DefaultLimit, "Maximum number of suggestions")
}
