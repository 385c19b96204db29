// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation renders article records as reference strings in the AMA,
// APA, and MLA styles, and as CSL-YAML for reference managers.
package citation

import (
	"fmt"
	"strings"

	"github.com/pdiddy/optoscholar/pkg/types"
)

// Style selects a citation format.
type Style string

const (
	AMA Style = "AMA"
	APA Style = "APA"
	MLA Style = "MLA"
)

// UnknownAuthor stands in for an empty author list.
const UnknownAuthor = "Unknown Author"

// Styles lists the supported styles in display order.
var Styles = []Style{AMA, APA, MLA}

// ParseStyle accepts a style name in any case.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToUpper(strings.TrimSpace(s))) {
	case AMA:
		return AMA, nil
	case APA:
		return APA, nil
	case MLA:
		return MLA, nil
	}
	return "", fmt.Errorf("unknown citation style %q (want ama, apa, or mla)", s)
}

// Format renders a as a single-line citation in style s. An unknown style
// falls back to AMA.
func Format(a types.ArticleRecord, s Style) string {
	title := strings.TrimSuffix(strings.TrimSpace(a.Title), ".")
	journal := a.Journal()

	var text string
	switch s {
	case APA:
		text = fmt.Sprintf("%s. (%s). %s. %s, %s(%s), %s.",
			narrativeAuthors(a.Authors), Year(a.PubDate), title, journal, a.Volume, a.Issue, a.Pages)
	case MLA:
		text = fmt.Sprintf("%s. \"%s.\" %s %s.%s (%s): %s.",
			narrativeAuthors(a.Authors), title, journal, a.Volume, a.Issue, Year(a.PubDate), a.Pages)
	default:
		text = fmt.Sprintf("%s. %s. %s. %s;%s(%s):%s.",
			allAuthors(a.Authors), title, journal, a.PubDate, a.Volume, a.Issue, a.Pages)
		if a.DOI != "" {
			text += " doi:" + a.DOI
		}
	}

	text = strings.ReplaceAll(text, "*", "")
	return strings.TrimRight(text, " ")
}

// Year returns the leading whitespace-delimited token of a publication date,
// or "n.d." when there is none.
func Year(pubdate string) string {
	if f := strings.Fields(pubdate); len(f) > 0 {
		return f[0]
	}
	return "n.d."
}

func narrativeAuthors(authors []types.Author) string {
	switch len(authors) {
	case 0:
		return UnknownAuthor
	case 1:
		return nameOrUnknown(authors[0].Name)
	default:
		return nameOrUnknown(authors[0].Name) + " et al"
	}
}

func allAuthors(authors []types.Author) string {
	if len(authors) == 0 {
		return UnknownAuthor
	}
	names := make([]string, 0, len(authors))
	for _, au := range authors {
		names = append(names, au.Name)
	}
	return strings.Join(names, ", ")
}

func nameOrUnknown(name string) string {
	if strings.TrimSpace(name) == "" {
		return UnknownAuthor
	}
	return name
}
