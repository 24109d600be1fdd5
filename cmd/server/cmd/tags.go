package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage the tag vocabulary",
	Long: `Manage the tags events may carry. Staff requests that add a tag outside
the vocabulary are rejected; removing a tag here leaves events that already
carry it unchanged.`,
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the vocabulary",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(cmd *cobra.Command, a *app, args []string) error {
		tags, err := a.events.Vocabulary(cmd.Context())
		if err != nil {
			return err
		}
		for _, tag := range tags {
			fmt.Fprintln(cmd.OutOrStdout(), tag)
		}
		return nil
	}),
}

var tagsAddCmd = &cobra.Command{
	Use:   "add TAG",
	Short: "Add a tag to the vocabulary",
	Args:  cobra.MinimumNArgs(1),
	RunE: runWithApp(func(cmd *cobra.Command, a *app, args []string) error {
		tag := strings.Join(args, " ")
		if err := a.events.AddVocabularyTag(cmd.Context(), tag); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tag %q added\n", strings.TrimSpace(tag))
		return nil
	}),
}

var tagsRemoveCmd = &cobra.Command{
	Use:   "remove TAG",
	Short: "Remove a tag from the vocabulary",
	Args:  cobra.MinimumNArgs(1),
	RunE: runWithApp(func(cmd *cobra.Command, a *app, args []string) error {
		tag := strings.TrimSpace(strings.Join(args, " "))
		removed, err := a.events.RemoveVocabularyTag(cmd.Context(), tag)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("tag %q is not in the vocabulary", tag)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tag %q removed\n", tag)
		return nil
	}),
}

func init() {
	tagsCmd.AddCommand(tagsListCmd)
	tagsCmd.AddCommand(tagsAddCmd)
	tagsCmd.AddCommand(tagsRemoveCmd)
}
