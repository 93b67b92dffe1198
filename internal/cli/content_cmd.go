package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taiwoajasa245/verse-courier/internal/search"
	"github.com/taiwoajasa245/verse-courier/internal/server"
)

const defaultSearchLimit = 15

func newSearchCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank passages by keyword overlap",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, app, strings.Join(args, " "), limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultSearchLimit, "Maximum number of results")
	return cmd
}

func runSearch(cmd *cobra.Command, app *App, query string, limit int) error {
	ix, _, err := server.LoadContent(app.Config)
	if err != nil {
		return err
	}
	results := search.NewEngine(ix).Search(query, limit)
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No matching passages.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "[%d] %s  %s\n", r.Score, r.Ref, r.Text)
	}
	return nil
}

func newTopicsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List curated topics and their keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cat, err := server.LoadContent(app.Config)
			if err != nil {
				return err
			}
			keywords := map[string][]string{}
			for _, kw := range cat.Keywords() {
				keywords[kw.Topic] = append(keywords[kw.Topic], kw.Keyword)
			}
			out := cmd.OutOrStdout()
			for _, label := range cat.Topics() {
				fmt.Fprintf(out, "%s (%d)", label, len(cat.Refs(label)))
				if kws := keywords[label]; len(kws) > 0 {
					fmt.Fprintf(out, "  keywords: %s", strings.Join(kws, ", "))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate corpus and topic files",
		Long:  "Loads the corpus and topic configuration and reports curated refs missing from the corpus.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, cat, err := server.LoadContent(app.Config)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d passages, %d topics, %d keywords\n", ix.Len(), len(cat.Topics()), len(cat.Keywords()))

			missing := cat.Unresolved(ix)
			if len(missing) == 0 {
				fmt.Fprintln(out, "All topic refs resolve.")
				return nil
			}
			labels := make([]string, 0, len(missing))
			for label := range missing {
				labels = append(labels, label)
			}
			slices.Sort(labels)
			total := 0
			for _, label := range labels {
				for _, ref := range missing[label] {
					fmt.Fprintf(out, "%s: missing %s\n", label, ref)
					total++
				}
			}
			return fmt.Errorf("%d topic refs missing from corpus", total)
		},
	}
}
