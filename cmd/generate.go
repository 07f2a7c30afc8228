package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagOwner     string
	flagQuestions int
)

var generateCmd = &cobra.Command{
	Use:   "generate <youtube-url>",
	Short: "Generate a quiz for one video and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  generateRun,
}

func init() {
	generateCmd.Flags().StringVarP(&flagOwner, "owner", "o", "", "Username that will own the quiz (required)")
	generateCmd.Flags().IntVarP(&flagQuestions, "questions", "n", 0, "Number of questions (default: config num_questions)")
	_ = generateCmd.MarkFlagRequired("owner")
}

func generateRun(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	owner, err := a.authService.GetUserByUsername(flagOwner)
	if err != nil {
		return fmt.Errorf("owner %q: %w", flagOwner, err)
	}

	quiz, err := a.pipeline(cfg).CreateQuizFromYouTube(cmd.Context(), args[0], owner.ID, flagQuestions)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(quiz)
}
