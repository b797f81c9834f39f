package cmd

import (
	"fmt"
	"strings"

	"github.com/saurav/teachback/internal/extract"
	"github.com/saurav/teachback/internal/llm"
	"github.com/saurav/teachback/internal/screens/teach"
	"github.com/spf13/cobra"
)

var teachCmd = &cobra.Command{
	Use:   "teach <topic>",
	Short: "Start a teaching session on a topic",
	Long: `Start an interactive session where you explain the topic to an AI
student. The student asks questions, pushes back where your explanation is
thin, and at the end your explanation is graded across five criteria.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.TrimSpace(strings.Join(args, " "))
		if topic == "" {
			return fmt.Errorf("topic must not be empty")
		}
		mode, _ := cmd.Flags().GetString("mode")
		turns, _ := cmd.Flags().GetInt("turns")

		ctx := cmd.Context()
		st, a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		// Teaching sessions need the AI student; there is no offline mode.
		provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
		if err != nil {
			return fmt.Errorf("LLM provider required for teaching sessions: %w", err)
		}
		a.Extractor = extract.NewService(provider, extract.DefaultConfig())

		return teach.Run(a, topic, mode, turns)
	},
}

func init() {
	teachCmd.Flags().String("mode", "explain", "Session mode: explain or drill")
	teachCmd.Flags().Int("turns", 10, "Maximum number of teaching turns")
}
