// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the gateway, the
// search session, the library store, and the CLI.
package types

// Author is one entry in an article's author list.
type Author struct {
	// Name is the display name as returned by the index (e.g. "Smith J").
	Name string `json:"name" yaml:"name"`

	// AuthType is the index's author classification (e.g. "Author",
	// "CollectiveName"). Optional.
	AuthType string `json:"authtype,omitempty" yaml:"authtype,omitempty"`
}

// ArticleRecord is one bibliographic entry. ID is the only identity key;
// every other field is display metadata and may be empty.
//
// The JSON field names match the summary payload of the remote index so
// that libraries persisted by earlier clients decode unchanged.
type ArticleRecord struct {
	// ID is the PubMed UID.
	ID string `json:"uid" yaml:"uid"`

	Title string `json:"title" yaml:"title"`

	// Authors lists authors in publication order.
	Authors []Author `json:"authors" yaml:"authors"`

	// PubDate is free text such as "2023 Jan 5" or "2021".
	PubDate string `json:"pubdate" yaml:"pubdate"`

	// Source is the abbreviated journal name.
	Source string `json:"source" yaml:"source"`

	FullJournalName string `json:"fulljournalname,omitempty" yaml:"fulljournalname,omitempty"`
	Volume          string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue           string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages           string `json:"pages,omitempty" yaml:"pages,omitempty"`
	EPubDate        string `json:"epubdate,omitempty" yaml:"epubdate,omitempty"`
	DocType         string `json:"doctype,omitempty" yaml:"doctype,omitempty"`
	DOI             string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// Journal returns the full journal name, falling back to the abbreviation.
func (a ArticleRecord) Journal() string {
	if a.FullJournalName != "" {
		return a.FullJournalName
	}
	return a.Source
}

// AuthorNames returns the author display names in order.
func (a ArticleRecord) AuthorNames() []string {
	names := make([]string, 0, len(a.Authors))
	for _, au := range a.Authors {
		names = append(names, au.Name)
	}
	return names
}
