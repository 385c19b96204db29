// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/optoscholar/internal/citation"
	"github.com/pdiddy/optoscholar/internal/session"
	"github.com/pdiddy/optoscholar/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search the journal-restricted PubMed index",
	Long: `Search runs one query against PubMed, restricted to the configured journal
list, and prints one page of results. Saved articles are marked with *.

A spelling suggestion is shown for first-page searches when the index offers
one. The page strip shows the current page in brackets; the last page is
shown in parentheses when it is too far away to jump to.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	q, err := queryFromFlags(cmd, args)
	if err != nil {
		return err
	}
	cfg, err := config()
	if err != nil {
		return err
	}
	if journals, _ := cmd.Flags().GetStringSlice("journal"); len(journals) > 0 {
		cfg.Gateway.Journals = journals
	}
	if size, _ := cmd.Flags().GetInt("page-size"); size > 0 {
		cfg.Gateway.PageSize = size
	}

	ctx := cmd.Context()
	store, closeStore, err := openLibrary(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	gw := newGateway(cfg)
	coord := session.New(gw, session.Options{
		PageSize: gw.PageSize(),
		Saved:    store.Contains,
		Logger:   logger,
		Metrics:  metrics,
	})

	err = coord.Submit(ctx, q)
	coord.Wait()
	st := coord.Snapshot()
	out := cmd.OutOrStdout()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput && err == nil {
		return writeJSON(out, types.SearchResultPage{
			TotalCount: st.TotalCount,
			IDs:        articleIDs(st.Items),
			Items:      st.Items,
			Query:      st.Query,
		})
	}

	if st.Status == session.Failed {
		fmt.Fprintln(os.Stderr, st.Message)
		return err
	}
	if err != nil {
		return err
	}

	styleName, _ := cmd.Flags().GetString("style")
	if styleName != "" {
		style, err := citation.ParseStyle(styleName)
		if err != nil {
			return err
		}
		formatCitations(out, st.Items, style)
		return nil
	}

	formatState(out, st, coord.PageSize(), coord.Saved)
	return nil
}

// queryFromFlags builds the query for the search and browse commands.
func queryFromFlags(cmd *cobra.Command, args []string) (types.SearchQuery, error) {
	q := types.NewQuery(strings.Join(args, " "))

	page, _ := cmd.Flags().GetInt("page")
	q = q.WithPage(page)

	sortName, _ := cmd.Flags().GetString("sort")
	switch sortName {
	case "", "relevance":
	case "date":
		q.Sort = types.SortPubDate
	default:
		return q, fmt.Errorf("unsupported sort %q: use relevance or date", sortName)
	}

	since, _ := cmd.Flags().GetString("since")
	d, err := parseSince(since)
	if err != nil {
		return q, err
	}
	q.Date = d

	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	if from != 0 || to != 0 {
		if from == 0 || to == 0 {
			return q, errors.New("--from and --to must be given together")
		}
		q.Date = types.DateCustom
		q.Range = types.YearRange{Start: from, End: to}
	}

	q = q.Normalize()
	return q, q.Validate()
}

func parseSince(s string) (types.DateFilter, error) {
	switch s {
	case "", "any":
		return types.DateAny, nil
	case "1y":
		return types.DatePastYear, nil
	case "5y":
		return types.DatePast5Year, nil
	}
	return "", fmt.Errorf("unsupported --since %q: use any, 1y, or 5y", s)
}

func articleIDs(articles []types.ArticleRecord) []string {
	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	return ids
}

// addQueryFlags registers the query flags shared by search and browse.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 1, "result page (1-based)")
	cmd.Flags().String("sort", "relevance", "sort order: relevance or date")
	cmd.Flags().String("since", "any", "publication date filter: any, 1y, or 5y")
	cmd.Flags().Int("from", 0, "custom range start year (requires --to)")
	cmd.Flags().Int("to", 0, "custom range end year (requires --from)")
	cmd.Flags().Int("page-size", 0, "results per page (0 = configured default)")
	cmd.Flags().StringSlice("journal", nil, "restrict to this journal (repeatable; overrides the configured list)")
}

func init() {
	addQueryFlags(searchCmd)
	searchCmd.Flags().Bool("json", false, "output the result page as JSON")
	searchCmd.Flags().String("style", "", "print citations instead of a table: ama, apa, or mla")

	rootCmd.AddCommand(searchCmd)
}
