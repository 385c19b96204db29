// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/optoscholar/pkg/types"
)

// Placeholder titles for summaries the index could not describe.
const (
	TitleUnavailable = "No Title Available"
	TitleLoadError   = "Error loading item"
)

// summaryItem is one entry of the esummary result map. Every field is
// optional in practice.
type summaryItem struct {
	Title           string         `json:"title"`
	Authors         []types.Author `json:"authors"`
	PubDate         string         `json:"pubdate"`
	EPubDate        string         `json:"epubdate"`
	Source          string         `json:"source"`
	FullJournalName string         `json:"fulljournalname"`
	Volume          string         `json:"volume"`
	Issue           string         `json:"issue"`
	Pages           string         `json:"pages"`
	DocType         string         `json:"doctype"`
	ArticleIDs      []struct {
		IDType string `json:"idtype"`
		Value  string `json:"value"`
	} `json:"articleids"`
}

// FetchSummaries resolves ids into article records in the order the index
// lists them. Zero ids return an empty slice without a request. An item that
// is missing or fails to decode becomes a placeholder record carrying its
// id; it never aborts its siblings.
func (p *PubMed) FetchSummaries(ctx context.Context, ids []string) ([]types.ArticleRecord, error) {
	if len(ids) == 0 {
		return []types.ArticleRecord{}, nil
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	}

	var env struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	err := p.call(ctx, "esummary", params, func(body []byte) error {
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("%w: decoding esummary: %v", ErrMalformedResponse, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return p.decodeSummaries(env.Result), nil
}

func (p *PubMed) decodeSummaries(result map[string]json.RawMessage) []types.ArticleRecord {
	if result == nil {
		p.logger.Warn("esummary response has no result")
		return []types.ArticleRecord{}
	}

	var uids []string
	raw, ok := result["uids"]
	if !ok || json.Unmarshal(raw, &uids) != nil {
		p.logger.Warn("esummary response has no uids")
		return []types.ArticleRecord{}
	}

	records := make([]types.ArticleRecord, 0, len(uids))
	for _, uid := range uids {
		if uid == "" {
			continue
		}
		records = append(records, p.decodeItem(uid, result[uid]))
	}
	return records
}

func (p *PubMed) decodeItem(uid string, raw json.RawMessage) types.ArticleRecord {
	if len(raw) == 0 {
		return placeholder(uid)
	}
	var item summaryItem
	if err := json.Unmarshal(raw, &item); err != nil {
		p.logger.Debug("summary item did not decode", zap.String("uid", uid), zap.Error(err))
		return placeholder(uid)
	}

	rec := types.ArticleRecord{
		ID:              uid,
		Title:           item.Title,
		Authors:         item.Authors,
		PubDate:         item.PubDate,
		EPubDate:        item.EPubDate,
		Source:          item.Source,
		FullJournalName: item.FullJournalName,
		Volume:          item.Volume,
		Issue:           item.Issue,
		Pages:           item.Pages,
		DocType:         item.DocType,
	}
	if rec.Title == "" {
		rec.Title = TitleUnavailable
	}
	if rec.Authors == nil {
		rec.Authors = []types.Author{}
	}
	for _, aid := range item.ArticleIDs {
		if aid.IDType == "doi" {
			rec.DOI = aid.Value
			break
		}
	}
	return rec
}

func placeholder(uid string) types.ArticleRecord {
	return types.ArticleRecord{ID: uid, Title: TitleLoadError, Authors: []types.Author{}}
}
