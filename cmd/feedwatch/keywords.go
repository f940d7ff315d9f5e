package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maine/feedwatch/internal/keywords"
)

func keywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage keyword text (phrase:weight, -exclude)",
	}
	cmd.AddCommand(keywordsShowCmd(), keywordsSetCmd(), keywordsImportCmd(), keywordsClearCmd())
	return cmd
}

func keywordsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the keyword text and how it is parsed",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			prefs, err := a.store.Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			spec := keywords.Parse(prefs.Keywords)
			if !spec.HasCriteria() && len(spec.Exclude) == 0 {
				fmt.Fprintln(out, "No keywords set.")
				return nil
			}
			for _, term := range spec.Include {
				fmt.Fprintf(out, "+ %-30s weight %d\n", term.Phrase, term.Weight)
			}
			for _, term := range spec.Exclude {
				fmt.Fprintf(out, "- %s\n", term)
			}
			return nil
		}),
	}
}

func keywordsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <line>...",
		Short: "Replace the keyword text; each argument is one line",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			return saveKeywords(cmd, a, strings.Join(args, "\n"))
		}),
	}
}

func keywordsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Append keywords from a text file (commas become new lines)",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read keyword file: %w", err)
			}
			prefs, err := a.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			return saveKeywords(cmd, a, keywords.MergeUpload(prefs.Keywords, string(data)))
		}),
	}
}

func keywordsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all keywords",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			return saveKeywords(cmd, a, "")
		}),
	}
}

func saveKeywords(cmd *cobra.Command, a *appEnv, text string) error {
	ctx := cmd.Context()
	prefs, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	prefs.Keywords = text
	if err := a.store.Save(ctx, prefs); err != nil {
		return err
	}

	spec := keywords.Parse(text)
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d include and %d exclude term(s).\n", len(spec.Include), len(spec.Exclude))
	return nil
}
