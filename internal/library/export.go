// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/optoscholar/internal/citation"
	"github.com/pdiddy/optoscholar/pkg/types"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatCSL  Format = "csl"
)

// CSVHeader is the header row of a CSV export.
var CSVHeader = []string{"Title", "Authors", "Journal", "Publication Date", "DOI", "Article ID"}

// Export writes articles to w in format f.
func Export(w io.Writer, articles []types.ArticleRecord, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, articles)
	case FormatJSON:
		return WriteJSON(w, articles)
	case FormatCSL:
		return citation.WriteCSL(articles, w)
	}
	return fmt.Errorf("unknown export format %q (want csv, json, or csl)", f)
}

// WriteCSV writes one row per article under CSVHeader. Every data field is
// wrapped in double quotes with embedded quotes doubled, and authors are
// joined with "; ".
func WriteCSV(w io.Writer, articles []types.ArticleRecord) error {
	lines := make([]string, 0, len(articles)+1)
	lines = append(lines, strings.Join(CSVHeader, ","))
	for _, a := range articles {
		fields := []string{
			a.Title,
			strings.Join(a.AuthorNames(), "; "),
			a.Journal(),
			a.PubDate,
			a.DOI,
			a.ID,
		}
		for i, f := range fields {
			fields[i] = quoteCSV(f)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteJSON writes articles in the persisted library shape, indented.
func WriteJSON(w io.Writer, articles []types.ArticleRecord) error {
	if articles == nil {
		articles = []types.ArticleRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(articles)
}
