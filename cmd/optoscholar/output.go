// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/optoscholar/internal/citation"
	"github.com/pdiddy/optoscholar/internal/session"
	"github.com/pdiddy/optoscholar/pkg/types"
)

// formatArticleTable writes one row per article. saved marks library
// members with a star; a nil saved marks nothing.
func formatArticleTable(w io.Writer, articles []types.ArticleRecord, firstRow int, saved func(string) bool) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-1s  %-10s  %-50s  %-22s  %-22s  %s\n",
		"#", "", "ID", "Title", "Authors", "Journal", "Date")
	fmt.Fprintln(w, strings.Repeat("-", 126))

	for i, a := range articles {
		mark := " "
		if saved != nil && saved(a.ID) {
			mark = "*"
		}
		fmt.Fprintf(w, "%-4d  %-1s  %-10s  %-50s  %-22s  %-22s  %s\n",
			firstRow+i, mark, a.ID,
			truncate(a.Title, 50),
			truncate(formatAuthors(a.AuthorNames()), 22),
			truncate(a.Source, 22),
			a.PubDate)
	}
}

// formatState writes the session outcome: the failure message, or the
// results with their count, the spelling banner, and the page strip.
func formatState(w io.Writer, st session.State, pageSize int, saved func(string) bool) {
	switch st.Status {
	case session.Failed:
		fmt.Fprintln(w, st.Message)
		return
	case session.Ready:
	default:
		return
	}

	if st.Suggestion != "" {
		fmt.Fprintf(w, "Did you mean: %s?\n\n", st.Suggestion)
	}

	formatArticleTable(w, st.Items, session.Offset(st.Query.Page, pageSize)+1, saved)

	fmt.Fprintf(w, "\n%d results", st.TotalCount)
	if st.TotalPages > 0 {
		fmt.Fprintf(w, ", page %d of %d", st.Query.Page, st.TotalPages)
	}
	fmt.Fprintln(w)
	if strip := pageStrip(st.Query.Page, st.TotalPages); strip != "" {
		fmt.Fprintln(w, strip)
	}
}

// pageStrip renders session.Controls as text: "[n]" is the current page,
// "(n)" a disabled page, "…" a gap.
func pageStrip(current, totalPages int) string {
	controls := session.Controls(current, totalPages)
	if controls == nil {
		return ""
	}
	parts := make([]string, 0, len(controls))
	for _, c := range controls {
		switch {
		case c.Ellipsis:
			parts = append(parts, "…")
		case c.Current:
			parts = append(parts, "["+strconv.Itoa(c.Page)+"]")
		case !c.Enabled:
			parts = append(parts, "("+strconv.Itoa(c.Page)+")")
		default:
			parts = append(parts, strconv.Itoa(c.Page))
		}
	}
	return strings.Join(parts, " ")
}

func formatCitations(w io.Writer, articles []types.ArticleRecord, style citation.Style) {
	for i, a := range articles {
		fmt.Fprintf(w, "%d. %s\n", i+1, citation.Format(a, style))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatAuthors(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + ", " + names[1]
	}
	return names[0] + " et al."
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
