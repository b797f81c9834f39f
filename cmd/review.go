package cmd

import (
	"fmt"
	"time"

	"github.com/saurav/teachback/internal/screens/review"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run today's spaced-repetition reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if len(a.Scheduler.DueReviews(time.Now())) == 0 {
			fmt.Println("Nothing due. Come back tomorrow.")
			return nil
		}

		return review.Run(a)
	},
}
