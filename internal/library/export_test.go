// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/optoscholar/pkg/types"
)

func TestWriteCSV(t *testing.T) {
	articles := []types.ArticleRecord{
		{
			ID:              "1",
			Title:           `The "myopia boom" revisited`,
			Authors:         []types.Author{{Name: "Smith J"}, {Name: "Lee K"}},
			Source:          "J Optom",
			FullJournalName: "Journal of Optometry",
			PubDate:         "2023 Jan",
			DOI:             "10.1/xyz",
		},
		{ID: "2", Title: "Dry eye, revisited", Source: "Eye", PubDate: "2020"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, articles))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Title,Authors,Journal,Publication Date,DOI,Article ID", lines[0])
	assert.Equal(t, `"The ""myopia boom"" revisited","Smith J; Lee K","Journal of Optometry","2023 Jan","10.1/xyz","1"`, lines[1])
	assert.Equal(t, `"Dry eye, revisited","","Eye","2020","","2"`, lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Title,Authors,Journal,Publication Date,DOI,Article ID", buf.String())
}

func TestExportFormats(t *testing.T) {
	articles := []types.ArticleRecord{{ID: "9", Title: "Scleral lenses", Source: "CLAE", PubDate: "2022"}}

	var js bytes.Buffer
	require.NoError(t, Export(&js, articles, FormatJSON))
	var back []types.ArticleRecord
	require.NoError(t, json.Unmarshal(js.Bytes(), &back))
	assert.Equal(t, articles[0].ID, back[0].ID)
	assert.Contains(t, js.String(), `"uid": "9"`)

	var csl bytes.Buffer
	require.NoError(t, Export(&csl, articles, FormatCSL))
	assert.Contains(t, csl.String(), "pmid9")

	var empty bytes.Buffer
	require.NoError(t, Export(&empty, nil, FormatJSON))
	assert.Equal(t, "[]\n", empty.String())

	assert.Error(t, Export(&bytes.Buffer{}, articles, Format("xlsx")))
}
