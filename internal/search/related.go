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

const (
	maxRelated       = 5
	minLinkedRelated = 3
	maxTitleWords    = 6
)

type elinkEnvelope struct {
	LinkSets []struct {
		LinkSetDBs []struct {
			LinkName string            `json:"linkname"`
			Links    []json.RawMessage `json:"links"`
		} `json:"linksetdbs"`
	} `json:"linksets"`
}

// Related returns up to five articles similar to id. It starts from the
// index's precomputed neighbours; when fewer than three come back and title
// is non-empty, it tops up with a keyword search on the title. Related is
// best-effort: every failure yields an empty slice.
func (p *PubMed) Related(ctx context.Context, id, title string) []types.ArticleRecord {
	log := p.logger.With(zap.String("id", id))

	ids, err := p.neighbours(ctx, id)
	if err != nil {
		log.Debug("elink failed, relying on title search", zap.Error(err))
	}

	if len(ids) < minLinkedRelated && title != "" {
		if kw := TitleKeywords(title); kw != "" {
			page, err := p.Search(ctx, types.NewQuery(kw), maxRelated)
			if err != nil {
				log.Debug("title fallback search failed", zap.Error(err))
			} else {
				ids = appendNew(ids, page.IDs, id)
			}
		}
	}

	if len(ids) > maxRelated {
		ids = ids[:maxRelated]
	}
	if len(ids) == 0 {
		return []types.ArticleRecord{}
	}

	recs, err := p.FetchSummaries(ctx, ids)
	if err != nil {
		log.Debug("related summaries failed", zap.Error(err))
		return []types.ArticleRecord{}
	}
	return recs
}

// neighbours returns the pubmed_pubmed links of id, excluding id itself.
func (p *PubMed) neighbours(ctx context.Context, id string) ([]string, error) {
	params := url.Values{
		"dbfrom":   {"pubmed"},
		"db":       {"pubmed"},
		"id":       {id},
		"cmd":      {"neighbor"},
		"linkname": {"pubmed_pubmed"},
		"retmode":  {"json"},
	}

	var env elinkEnvelope
	err := p.call(ctx, "elink", params, func(body []byte) error {
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("%w: decoding elink: %v", ErrMalformedResponse, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(env.LinkSets) == 0 {
		return nil, nil
	}

	var ids []string
	for _, db := range env.LinkSets[0].LinkSetDBs {
		if db.LinkName != "pubmed_pubmed" {
			continue
		}
		for _, raw := range db.Links {
			if lid := linkID(raw); lid != "" && lid != id {
				ids = append(ids, lid)
			}
		}
		break
	}
	return ids, nil
}

// linkID accepts both link encodings the index uses: a bare string id or an
// object with an "id" field.
func linkID(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		ID json.RawMessage `json:"id"`
	}
	if json.Unmarshal(raw, &obj) != nil || len(obj.ID) == 0 {
		return ""
	}
	if json.Unmarshal(obj.ID, &s) == nil {
		return s
	}
	return strings.Trim(string(obj.ID), `"`)
}

// TitleKeywords reduces a title to a short keyword query: punctuation is
// dropped, words of three characters or fewer are skipped, and at most six
// words are kept.
func TitleKeywords(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\f', r == '\v':
			b.WriteRune(r)
		}
	}

	var words []string
	for _, w := range strings.Split(b.String(), " ") {
		if len(w) > 3 {
			words = append(words, w)
			if len(words) == maxTitleWords {
				break
			}
		}
	}
	return strings.Join(words, " ")
}

// appendNew appends the ids in more that are neither exclude nor already
// present in ids.
func appendNew(ids, more []string, exclude string) []string {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, id := range more {
		if id == exclude || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
