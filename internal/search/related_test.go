// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/optoscholar/pkg/types"
)

func TestTitleKeywords(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Myopia Control: A Review!", "Myopia Control Review"},
		{"Low-dose atropine for myopia in children and adolescents over time", "Lowdose atropine myopia children adolescents over"},
		{"A of to", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleKeywords(tt.title))
		})
	}
}

func TestLinkID(t *testing.T) {
	assert.Equal(t, "12", linkID(json.RawMessage(`"12"`)))
	assert.Equal(t, "13", linkID(json.RawMessage(`{"id":"13"}`)))
	assert.Equal(t, "14", linkID(json.RawMessage(`{"id":14}`)))
	assert.Equal(t, "", linkID(json.RawMessage(`[]`)))
}

// relatedServer serves elink with links, esearch with searchIDs, and
// esummary for whatever ids are requested.
func relatedServer(t *testing.T, links []string, searchIDs []string, elinkStatus int) (*httptest.Server, *[]string) {
	t.Helper()
	var summarized []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/elink.fcgi":
			if elinkStatus != http.StatusOK {
				w.WriteHeader(elinkStatus)
				return
			}
			b, _ := json.Marshal(links)
			fmt.Fprintf(w, `{"linksets":[{"dbfrom":"pubmed","linksetdbs":[{"linkname":"pubmed_pubmed_citedin","links":["999"]},{"linkname":"pubmed_pubmed","links":%s}]}]}`, b)
		case "/esearch.fcgi":
			assert.Equal(t, "5", r.URL.Query().Get("retmax"))
			assert.Equal(t, "relevance", r.URL.Query().Get("sort"))
			b, _ := json.Marshal(searchIDs)
			fmt.Fprintf(w, `{"esearchresult":{"count":"%d","idlist":%s}}`, len(searchIDs), b)
		case "/esummary.fcgi":
			ids := strings.Split(r.URL.Query().Get("id"), ",")
			summarized = ids
			b, _ := json.Marshal(ids)
			parts := []string{`"uids":` + string(b)}
			for _, id := range ids {
				parts = append(parts, fmt.Sprintf(`%q:{"title":"Article %s"}`, id, id))
			}
			fmt.Fprintf(w, `{"result":{%s}}`, strings.Join(parts, ","))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return ts, &summarized
}

func TestRelatedUsesNeighbours(t *testing.T) {
	ts, summarized := relatedServer(t, []string{"1", "2", "3", "4", "5", "6", "7"}, nil, http.StatusOK)
	defer ts.Close()

	gw := newTestGateway(t, ts, types.GatewayConfig{})
	recs := gw.Related(context.Background(), "1", "Myopia Control")

	require.Len(t, recs, 5)
	assert.Equal(t, []string{"2", "3", "4", "5", "6"}, *summarized)
	assert.Equal(t, "Article 2", recs[0].Title)
}

func TestRelatedFallsBackToTitleSearch(t *testing.T) {
	ts, summarized := relatedServer(t, []string{"1", "2"}, []string{"2", "1", "8", "9"}, http.StatusOK)
	defer ts.Close()

	gw := newTestGateway(t, ts, types.GatewayConfig{})
	recs := gw.Related(context.Background(), "1", "Myopia Control in Children")

	assert.Len(t, recs, 3)
	assert.Equal(t, []string{"2", "8", "9"}, *summarized)
}

func TestRelatedElinkFailureStillSearches(t *testing.T) {
	ts, summarized := relatedServer(t, nil, []string{"7"}, http.StatusInternalServerError)
	defer ts.Close()

	gw := newTestGateway(t, ts, types.GatewayConfig{})
	recs := gw.Related(context.Background(), "1", "Scleral lenses outcomes")

	assert.Len(t, recs, 1)
	assert.Equal(t, []string{"7"}, *summarized)
}

func TestRelatedNothingFound(t *testing.T) {
	ts, _ := relatedServer(t, nil, nil, http.StatusOK)
	defer ts.Close()

	gw := newTestGateway(t, ts, types.GatewayConfig{})
	recs := gw.Related(context.Background(), "1", "")
	assert.Empty(t, recs)
}
