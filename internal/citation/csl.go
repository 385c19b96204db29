// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/optoscholar/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	JournalAbbrev  string    `yaml:"container-title-short,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	PMID           string    `yaml:"PMID,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes articles as a CSL-YAML list to w.
func WriteCSL(articles []types.ArticleRecord, w io.Writer) error {
	items := make([]CSLItem, len(articles))
	for i, a := range articles {
		items[i] = ToCSLItem(a)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// ToCSLItem converts an article record to a CSL journal article.
func ToCSLItem(a types.ArticleRecord) CSLItem {
	item := CSLItem{
		ID:             "pmid" + a.ID,
		Type:           "article-journal",
		Title:          strings.TrimSuffix(strings.TrimSpace(a.Title), "."),
		ContainerTitle: a.Journal(),
		Volume:         a.Volume,
		Issue:          a.Issue,
		Page:           a.Pages,
		DOI:            a.DOI,
		PMID:           a.ID,
	}
	if a.FullJournalName != "" && a.Source != "" && a.Source != a.FullJournalName {
		item.JournalAbbrev = a.Source
	}

	for _, au := range a.Authors {
		if n := parseAuthorName(au); n != (CSLName{}) {
			item.Author = append(item.Author, n)
		}
	}

	if parts := dateParts(a.PubDate); len(parts) > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{parts}}
	}
	return item
}

// parseAuthorName splits an index author name into CSL family/given parts.
// Index names put the family name first and the initials last ("Smith JA"),
// so the split is on the last space: everything before is family, the last
// token is given. Single-token names and collective names use the literal
// field.
func parseAuthorName(au types.Author) CSLName {
	name := strings.TrimSpace(au.Name)
	if name == "" {
		return CSLName{}
	}
	if au.AuthType == "CollectiveName" {
		return CSLName{Literal: name}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Family: name[:idx],
		Given:  name[idx+1:],
	}
}

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// dateParts reads "2023 Jan 5", "2023 Jan", or "2023" into CSL date parts.
// Anything without a leading numeric year yields nil.
func dateParts(pubdate string) []int {
	f := strings.Fields(pubdate)
	if len(f) == 0 {
		return nil
	}
	year, err := strconv.Atoi(f[0])
	if err != nil {
		return nil
	}
	parts := []int{year}
	if len(f) < 2 {
		return parts
	}
	m, ok := months[strings.ToLower(f[1])]
	if !ok {
		return parts
	}
	parts = append(parts, m)
	if len(f) >= 3 {
		if d, err := strconv.Atoi(f[2]); err == nil && d >= 1 && d <= 31 {
			parts = append(parts, d)
		}
	}
	return parts
}
