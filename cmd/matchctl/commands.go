package main

import (
	"github.com/spf13/cobra"
)

// Actual version can be specified in build command.
var version = "unknown"

var (
	userID   uint64
	targetID uint64
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("%s version: %s\n", app, version)
	},
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List today's candidates for a user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return invoke(cmd, "GetPotentialMatches", map[string]any{"user_id": userID})
	},
}

var likeCmd = &cobra.Command{
	Use:   "like",
	Short: "Like a candidate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return invoke(cmd, "Like", map[string]any{"user_id": userID, "target_id": targetID})
	},
}

var dislikeCmd = &cobra.Command{
	Use:   "dislike",
	Short: "Skip a candidate or withdraw a like",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return invoke(cmd, "Dislike", map[string]any{"user_id": userID, "target_id": targetID})
	},
}

var (
	pageToken string
	pageSize  int
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List accepted matches, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return invoke(cmd, "ListAcceptedMatches", map[string]any{
			"user_id":    userID,
			"page_token": pageToken,
			"limit":      pageSize,
		})
	},
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show today's view quota",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return invoke(cmd, "GetDailyQuotaStatus", map[string]any{"user_id": userID})
	},
}

var achievementCmd = &cobra.Command{
	Use:   "achievement",
	Short: "Show experience points and level",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return invoke(cmd, "GetAchievement", map[string]any{"user_id": userID})
	},
}

var (
	passed  bool
	content string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record interview feedback about a matched partner",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return invoke(cmd, "RecordInterviewFeedback", map[string]any{
			"user_id":    userID,
			"partner_id": targetID,
			"passed":     passed,
			"content":    content,
		})
	},
}

var amount int

var grantCmd = &cobra.Command{
	Use:   "grant-bonus",
	Short: "Grant bonus views to a user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return invoke(cmd, "GrantBonus", map[string]any{"user_id": userID, "amount": amount})
	},
}

func init() {
	for _, c := range []*cobra.Command{candidatesCmd, likeCmd, dislikeCmd, matchesCmd, quotaCmd, achievementCmd, feedbackCmd, grantCmd} {
		c.Flags().Uint64VarP(&userID, "user", "u", 0, "acting user id")
		_ = c.MarkFlagRequired("user")
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{likeCmd, dislikeCmd, feedbackCmd} {
		c.Flags().Uint64VarP(&targetID, "target", "t", 0, "target user id")
		_ = c.MarkFlagRequired("target")
	}

	matchesCmd.Flags().StringVar(&pageToken, "page-token", "", "token from the previous page")
	matchesCmd.Flags().IntVar(&pageSize, "limit", 0, "page size (server default when 0)")

	feedbackCmd.Flags().BoolVar(&passed, "passed", false, "the interview went well")
	feedbackCmd.Flags().StringVar(&content, "content", "", "free-form notes")

	grantCmd.Flags().IntVarP(&amount, "amount", "n", 1, "views to grant")

	rootCmd.AddCommand(versionCmd, seedCmd)
}
