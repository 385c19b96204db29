// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/optoscholar/internal/citation"
	"github.com/pdiddy/optoscholar/internal/library"
	"github.com/pdiddy/optoscholar/internal/session"
	"github.com/pdiddy/optoscholar/pkg/types"
)

var browseCmd = &cobra.Command{
	Use:   "browse [term]",
	Short: "Page through results interactively",
	Long: `Browse keeps one search session open and reads commands from stdin:

  n, p            next or previous page
  <page>          jump to a page
  last            jump to the last page (only when within 10 pages)
  s <row>         save or unsave the article on that row
  c <row> [style] print a citation for the row (ama, apa, mla)
  / <term>        new search
  sort <order>    relevance or date
  since <range>   any, 1y, or 5y
  range <from> <to>  custom publication year range
  yes             accept the spelling suggestion
  d               dismiss the spelling suggestion
  r               retry the current search
  q               quit`,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
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
	b := &browser{
		coord: session.New(gw, session.Options{
			PageSize: gw.PageSize(),
			Saved:    store.Contains,
			Logger:   logger,
			Metrics:  metrics,
		}),
		store: store,
		out:   cmd.OutOrStdout(),
	}

	if len(args) > 0 {
		q, err := queryFromFlags(cmd, args)
		if err != nil {
			return err
		}
		b.submit(ctx, q)
	}
	return b.loop(ctx, cmd.InOrStdin())
}

// browser is the interactive front end over one coordinator.
type browser struct {
	coord *session.Coordinator
	store *library.Store
	out   io.Writer
}

func (b *browser) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(b.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(b.out)
			return scanner.Err()
		}
		if quit := b.handle(ctx, strings.TrimSpace(scanner.Text())); quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// handle runs one command line and reports whether the user quit.
func (b *browser) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	st := b.coord.Snapshot()

	switch cmd {
	case "":
	case "q", "quit", "exit":
		return true
	case "n":
		b.page(ctx, st.Query.Page+1)
	case "p":
		b.page(ctx, st.Query.Page-1)
	case "last":
		if !st.LastPageEnabled() {
			fmt.Fprintln(b.out, "The last page is more than 10 pages away.")
			return false
		}
		b.page(ctx, st.TotalPages)
	case "/":
		b.submit(ctx, st.Query.WithTerm(arg))
	case "sort":
		switch arg {
		case "relevance":
			b.submit(ctx, st.Query.WithSort(types.SortRelevance))
		case "date":
			b.submit(ctx, st.Query.WithSort(types.SortPubDate))
		default:
			fmt.Fprintln(b.out, "sort: use relevance or date")
		}
	case "since":
		d, err := parseSince(arg)
		if err != nil {
			fmt.Fprintln(b.out, err)
			return false
		}
		b.submit(ctx, st.Query.WithDateFilter(d))
	case "range":
		from, to, ok := parseRange(arg)
		if !ok {
			fmt.Fprintln(b.out, "range: give two years, e.g. range 2015 2020")
			return false
		}
		b.submit(ctx, st.Query.WithRange(from, to))
	case "yes":
		if st.Suggestion == "" {
			fmt.Fprintln(b.out, "No suggestion.")
			return false
		}
		b.submit(ctx, st.Query.WithTerm(st.Suggestion))
	case "d":
		b.coord.DismissSuggestion()
		b.render()
	case "r":
		b.submit(ctx, st.Query)
	case "s":
		a, ok := b.row(st, arg)
		if !ok {
			return false
		}
		if b.store.Toggle(a) {
			fmt.Fprintf(b.out, "Saved %s.\n", a.ID)
		} else {
			fmt.Fprintf(b.out, "Removed %s.\n", a.ID)
		}
	case "c":
		rowArg, styleArg, _ := strings.Cut(arg, " ")
		a, ok := b.row(st, rowArg)
		if !ok {
			return false
		}
		style := citation.AMA
		if styleArg != "" {
			s, err := citation.ParseStyle(styleArg)
			if err != nil {
				fmt.Fprintln(b.out, err)
				return false
			}
			style = s
		}
		fmt.Fprintln(b.out, citation.Format(a, style))
	default:
		n, err := strconv.Atoi(cmd)
		if err != nil {
			fmt.Fprintf(b.out, "Unknown command %q.\n", cmd)
			return false
		}
		b.page(ctx, n)
	}
	return false
}

func (b *browser) submit(ctx context.Context, q types.SearchQuery) {
	err := b.coord.Submit(ctx, q)
	if errors.Is(err, session.ErrEmptyTerm) {
		fmt.Fprintln(b.out, "Enter a search term.")
		return
	}
	if err != nil && !errors.Is(err, session.ErrSuperseded) && b.coord.Snapshot().Status != session.Failed {
		fmt.Fprintln(b.out, err)
		return
	}
	b.coord.Wait()
	b.render()
}

func (b *browser) page(ctx context.Context, n int) {
	err := b.coord.ChangePage(ctx, n)
	switch {
	case errors.Is(err, session.ErrEmptyTerm):
		fmt.Fprintln(b.out, "Enter a search term.")
		return
	case errors.Is(err, session.ErrPageOutOfRange):
		fmt.Fprintf(b.out, "No page %d.\n", n)
		return
	}
	b.coord.Wait()
	b.render()
}

func (b *browser) render() {
	formatState(b.out, b.coord.Snapshot(), b.coord.PageSize(), b.coord.Saved)
}

// row resolves a 1-based row number on the current page.
func (b *browser) row(st session.State, arg string) (types.ArticleRecord, bool) {
	first := session.Offset(st.Query.Page, b.coord.PageSize()) + 1
	n, err := strconv.Atoi(arg)
	if err != nil || n < first || n >= first+len(st.Items) {
		fmt.Fprintf(b.out, "No row %q on this page.\n", arg)
		return types.ArticleRecord{}, false
	}
	return st.Items[n-first], true
}

func parseRange(arg string) (int, int, bool) {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return 0, 0, false
	}
	from, err1 := strconv.Atoi(fields[0])
	to, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || from <= 0 || to < from {
		return 0, 0, false
	}
	return from, to, true
}

func init() {
	addQueryFlags(browseCmd)
	rootCmd.AddCommand(browseCmd)
}
