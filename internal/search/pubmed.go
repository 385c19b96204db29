// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search is the gateway to the NCBI E-utilities citation index. It
// turns a types.SearchQuery into an esearch request, resolves the returned
// identifiers into article summaries, and offers the auxiliary lookups
// (spelling suggestion, related articles, abstract, MEDLINE record).
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/optoscholar/internal/httputil"
	"github.com/pdiddy/optoscholar/internal/observability"
	"github.com/pdiddy/optoscholar/pkg/types"
)

// eutilsBase is the E-utilities root used when the config leaves BaseURL
// empty. Declared as a var so tests can substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// DefaultPageSize is the number of results per page when none is configured.
const DefaultPageSize = 10

const defaultTool = "optoscholar"

// PubMed queries the E-utilities API. It holds no per-query state and is
// safe for concurrent use.
type PubMed struct {
	cfg     types.GatewayConfig
	client  *httputil.Client
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewPubMed returns a gateway for cfg. A nil client gets one sized to the
// index's published rate limit: 3 requests per second, or 10 with an API key.
func NewPubMed(cfg types.GatewayConfig, client *httputil.Client, logger *zap.Logger, metrics *observability.Metrics) *PubMed {
	if cfg.BaseURL == "" {
		cfg.BaseURL = eutilsBase
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Tool == "" {
		cfg.Tool = defaultTool
	}
	logger = observability.OrNop(logger).With(zap.String("component", "gateway"))

	if client == nil {
		rps := cfg.RateLimit
		if rps <= 0 {
			rps = 3
			if cfg.APIKey != "" {
				rps = 10
			}
		}
		client = httputil.NewClient(httputil.Options{
			Name:          "eutils",
			Timeout:       cfg.Timeout,
			UserAgent:     cfg.UserAgent,
			RatePerSecond: rps,
			MaxRetries:    cfg.MaxRetries,
			Logger:        logger,
		})
	}

	return &PubMed{cfg: cfg, client: client, logger: logger, metrics: metrics}
}

// PageSize returns the configured page size.
func (p *PubMed) PageSize() int { return p.cfg.PageSize }

// esearchEnvelope is the JSON shape of esearch.fcgi. Result is a pointer so
// a missing envelope can be told apart from an empty one.
type esearchEnvelope struct {
	Result *struct {
		Count    string   `json:"count"`
		RetMax   string   `json:"retmax"`
		RetStart string   `json:"retstart"`
		IDList   []string `json:"idlist"`
	} `json:"esearchresult"`
}

// Search runs one esearch request for q and returns the total hit count and
// the identifiers on the requested page. Items are left empty; callers
// resolve them with FetchSummaries.
func (p *PubMed) Search(ctx context.Context, q types.SearchQuery, pageSize int) (types.SearchResultPage, error) {
	if pageSize <= 0 {
		pageSize = p.cfg.PageSize
	}
	q = q.Normalize()

	params := SearchParams(q, pageSize, p.cfg.Journals)

	var env esearchEnvelope
	err := p.call(ctx, "esearch", params, func(body []byte) error {
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("%w: decoding esearch: %v", ErrMalformedResponse, err)
		}
		if env.Result == nil {
			return fmt.Errorf("%w: esearch response has no esearchresult", ErrMalformedResponse)
		}
		return nil
	})
	if err != nil {
		return types.SearchResultPage{}, err
	}

	total, err := parseCount(env.Result.Count)
	if err != nil {
		return types.SearchResultPage{}, err
	}

	ids := env.Result.IDList
	if ids == nil {
		ids = []string{}
	}
	return types.SearchResultPage{TotalCount: total, IDs: ids, Query: q}, nil
}

// IndexCount reports how many articles the configured journal list covers.
// It is best-effort: any failure, or an empty journal list, yields false.
func (p *PubMed) IndexCount(ctx context.Context) (int, bool) {
	filter := JournalFilter(p.cfg.Journals)
	if filter == "" {
		return 0, false
	}
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {filter},
		"retmode": {"json"},
		"rettype": {"count"},
	}

	var env esearchEnvelope
	err := p.call(ctx, "esearch", params, func(body []byte) error {
		if err := json.Unmarshal(body, &env); err != nil || env.Result == nil {
			return ErrMalformedResponse
		}
		return nil
	})
	if err != nil {
		p.logger.Debug("index count failed", zap.Error(err))
		return 0, false
	}
	n, err := parseCount(env.Result.Count)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SearchParams builds the esearch query string for q. The term is sanitized
// and expanded to a title-or-abstract match, then restricted to journals
// when any are given.
func SearchParams(q types.SearchQuery, pageSize int, journals []string) url.Values {
	params := url.Values{
		"db":       {"pubmed"},
		"term":     {BuildTerm(q.Term, journals)},
		"retmode":  {"json"},
		"retstart": {strconv.Itoa((q.Page - 1) * pageSize)},
		"retmax":   {strconv.Itoa(pageSize)},
		"sort":     {string(q.Sort)},
	}

	switch q.Date {
	case types.DatePastYear:
		params.Set("datetype", "pdat")
		params.Set("reldate", "365")
	case types.DatePast5Year:
		params.Set("datetype", "pdat")
		params.Set("reldate", "1825")
	case types.DateCustom:
		if q.Range.Start > 0 && q.Range.End > 0 {
			params.Set("datetype", "pdat")
			params.Set("mindate", fmt.Sprintf("%d/01/01", q.Range.Start))
			params.Set("maxdate", fmt.Sprintf("%d/12/31", q.Range.End))
		}
	}
	return params
}

// BuildTerm sanitizes term and expands it to the index's field syntax.
func BuildTerm(term string, journals []string) string {
	clean := SanitizeTerm(term)
	content := fmt.Sprintf("(%s[Title] OR %s[Title/Abstract])", clean, clean)
	if filter := JournalFilter(journals); filter != "" {
		return content + " AND (" + filter + ")"
	}
	return content
}

// SanitizeTerm trims whitespace and drops double quotes, which would
// otherwise unbalance the field-tagged expansion.
func SanitizeTerm(term string) string {
	return strings.ReplaceAll(strings.TrimSpace(term), `"`, "")
}

// JournalFilter ORs the journal titles as [Journal] clauses. It returns ""
// for an empty list.
func JournalFilter(journals []string) string {
	var clauses []string
	for _, j := range journals {
		j = strings.TrimSpace(j)
		if j == "" {
			continue
		}
		clauses = append(clauses, `"`+strings.ReplaceAll(j, `"`, "")+`"[Journal]`)
	}
	return strings.Join(clauses, " OR ")
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: non-numeric count %q", ErrMalformedResponse, s)
	}
	return n, nil
}

// call sends a GET to endpoint.fcgi with params plus the client
// identification parameters, then hands the body to decode. Every call is
// counted once by endpoint and outcome.
func (p *PubMed) call(ctx context.Context, endpoint string, params url.Values, decode func([]byte) error) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		p.metrics.ObserveGateway(endpoint, outcome, time.Since(start).Seconds())
	}()

	body, err := p.fetch(ctx, endpoint, params)
	if err != nil {
		outcome = "unavailable"
		return err
	}
	if err := decode(body); err != nil {
		outcome = "malformed"
		p.logger.Warn("malformed response", zap.String("endpoint", endpoint), zap.Error(err))
		return err
	}
	return nil
}

func (p *PubMed) fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if p.cfg.APIKey != "" {
		params.Set("api_key", p.cfg.APIKey)
	}
	params.Set("tool", p.cfg.Tool)
	if p.cfg.Email != "" {
		params.Set("email", p.cfg.Email)
	}

	reqURL := p.cfg.BaseURL + "/" + endpoint + ".fcgi?" + params.Encode()
	p.logger.Debug("request", zap.String("endpoint", endpoint), zap.String("term", params.Get("term")))

	resp, err := p.client.Get(ctx, reqURL)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s: %w", ErrGatewayUnavailable, endpoint, err)
		}
		return nil, fmt.Errorf("%w: %s request: %v", ErrGatewayUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %v", ErrGatewayUnavailable, endpoint, err)
	}
	return body, nil
}
