// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// SortOrder selects the ordering of search results.
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortPubDate   SortOrder = "pub_date"
)

// DateFilter restricts results by publication date.
type DateFilter string

const (
	DateAny       DateFilter = "all"
	DatePastYear  DateFilter = "1year"
	DatePast5Year DateFilter = "5years"
	DateCustom    DateFilter = "custom"
)

// YearRange is an inclusive range of calendar years. The zero value means
// "no range".
type YearRange struct {
	Start int `json:"start_year" yaml:"start_year"`
	End   int `json:"end_year" yaml:"end_year"`
}

// IsZero reports whether the range is unset.
func (r YearRange) IsZero() bool {
	return r.Start == 0 && r.End == 0
}

// SearchQuery is the current search intent. It is comparable with ==, which
// the session relies on to detect stale responses.
type SearchQuery struct {
	// Term is the user's search text. Empty means no active query.
	Term string `json:"term" yaml:"term"`

	// Page is 1-based.
	Page int `json:"page" yaml:"page"`

	Sort SortOrder  `json:"sort" yaml:"sort"`
	Date DateFilter `json:"date_filter" yaml:"date_filter"`

	// Range is set iff Date is DateCustom.
	Range YearRange `json:"range,omitempty" yaml:"range,omitempty"`
}

// NewQuery returns a page-1 relevance query with no date filter.
func NewQuery(term string) SearchQuery {
	return SearchQuery{Term: term, Page: 1, Sort: SortRelevance, Date: DateAny}
}

// Normalize fills defaults, clamps Page to at least 1 and drops Range unless
// the date filter is custom.
func (q SearchQuery) Normalize() SearchQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Sort == "" {
		q.Sort = SortRelevance
	}
	if q.Date == "" {
		q.Date = DateAny
	}
	if q.Date != DateCustom {
		q.Range = YearRange{}
	}
	return q
}

// Validate checks the enum values and the custom range requirement.
func (q SearchQuery) Validate() error {
	switch q.Sort {
	case SortRelevance, SortPubDate, "":
	default:
		return fmt.Errorf("unknown sort order %q", q.Sort)
	}
	switch q.Date {
	case DateAny, DatePastYear, DatePast5Year, "":
	case DateCustom:
		if q.Range.Start <= 0 || q.Range.End <= 0 {
			return fmt.Errorf("custom date filter requires start and end years")
		}
		if q.Range.Start > q.Range.End {
			return fmt.Errorf("start year %d is after end year %d", q.Range.Start, q.Range.End)
		}
	default:
		return fmt.Errorf("unknown date filter %q", q.Date)
	}
	return nil
}

// SameFilters reports whether q and o differ at most in Page.
func (q SearchQuery) SameFilters(o SearchQuery) bool {
	q.Page, o.Page = 0, 0
	return q == o
}

// WithTerm returns q with a new term and Page reset to 1.
func (q SearchQuery) WithTerm(term string) SearchQuery {
	q.Term = term
	q.Page = 1
	return q
}

// WithSort returns q with a new sort order and Page reset to 1.
func (q SearchQuery) WithSort(s SortOrder) SearchQuery {
	q.Sort = s
	q.Page = 1
	return q
}

// WithDateFilter returns q with a new date filter and Page reset to 1.
// Switching away from DateCustom clears the range.
func (q SearchQuery) WithDateFilter(d DateFilter) SearchQuery {
	q.Date = d
	if d != DateCustom {
		q.Range = YearRange{}
	}
	q.Page = 1
	return q
}

// WithRange returns q filtered to a custom year range with Page reset to 1.
func (q SearchQuery) WithRange(start, end int) SearchQuery {
	q.Date = DateCustom
	q.Range = YearRange{Start: start, End: end}
	q.Page = 1
	return q
}

// WithPage returns q with only the page changed.
func (q SearchQuery) WithPage(page int) SearchQuery {
	q.Page = page
	return q
}

// SearchResultPage is the outcome of one query execution.
type SearchResultPage struct {
	// TotalCount is the index's hit count for the query, which may exceed
	// what is practical to page through.
	TotalCount int `json:"total_count" yaml:"total_count"`

	// IDs are the identifiers returned by the search step, in rank order.
	IDs []string `json:"ids" yaml:"ids"`

	// Items are the summaries for IDs. len(Items) is at most the page size.
	Items []ArticleRecord `json:"items" yaml:"items"`

	// Query is the query that produced this page.
	Query SearchQuery `json:"query" yaml:"query"`
}
