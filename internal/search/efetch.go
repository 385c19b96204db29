// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// AbstractUnavailable is the text returned for articles without an abstract.
const AbstractUnavailable = "Abstract not available."

// Abstract is the long-form text of one article.
type Abstract struct {
	// Text holds the abstract sections separated by blank lines. Labelled
	// sections are prefixed with "Label: ".
	Text string `json:"text" yaml:"text"`

	// Keywords are the author keywords, in document order.
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// SuggestCorrection asks the index for a spelling correction of term. It is
// best-effort: any failure, or an empty correction, yields false.
func (p *PubMed) SuggestCorrection(ctx context.Context, term string) (string, bool) {
	if strings.TrimSpace(term) == "" {
		return "", false
	}
	params := url.Values{
		"db":   {"pubmed"},
		"term": {term},
	}

	var res struct {
		CorrectedQuery string `xml:"CorrectedQuery"`
	}
	err := p.call(ctx, "espell", params, func(body []byte) error {
		if err := xml.Unmarshal(body, &res); err != nil {
			return fmt.Errorf("%w: decoding espell: %v", ErrMalformedResponse, err)
		}
		return nil
	})
	if err != nil {
		p.logger.Debug("spelling suggestion failed", zap.String("term", term), zap.Error(err))
		return "", false
	}

	s := strings.TrimSpace(res.CorrectedQuery)
	return s, s != ""
}

// FetchAbstract retrieves the abstract and keywords of article id.
func (p *PubMed) FetchAbstract(ctx context.Context, id string) (Abstract, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {id},
		"retmode": {"xml"},
	}

	var out Abstract
	err := p.call(ctx, "efetch", params, func(body []byte) error {
		var err error
		out, err = parseArticleXML(body)
		return err
	})
	if err != nil {
		return Abstract{}, err
	}
	return out, nil
}

// FetchMedline retrieves the MEDLINE-format record of article id as text.
func (p *PubMed) FetchMedline(ctx context.Context, id string) (string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {id},
		"rettype": {"medline"},
		"retmode": {"text"},
	}

	var text string
	err := p.call(ctx, "efetch", params, func(body []byte) error {
		text = string(body)
		return nil
	})
	return text, err
}

// parseArticleXML walks an efetch document collecting every AbstractText
// and Keyword element, including text inside inline markup such as <i>.
func parseArticleXML(body []byte) (Abstract, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	var (
		sections []string
		keywords []string
		buf      strings.Builder
		label    string
		capture  string
		depth    int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Abstract{}, fmt.Errorf("%w: decoding efetch: %v", ErrMalformedResponse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if capture != "" {
				depth++
				continue
			}
			switch t.Name.Local {
			case "AbstractText", "Keyword":
				capture = t.Name.Local
				depth = 0
				buf.Reset()
				label = ""
				for _, a := range t.Attr {
					if a.Name.Local == "Label" {
						label = a.Value
					}
				}
			}
		case xml.CharData:
			if capture != "" {
				buf.Write(t)
			}
		case xml.EndElement:
			if capture == "" {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			text := strings.TrimSpace(buf.String())
			if capture == "AbstractText" {
				if label != "" {
					text = label + ": " + text
				}
				sections = append(sections, text)
			} else if text != "" {
				keywords = append(keywords, text)
			}
			capture = ""
		}
	}

	out := Abstract{Text: AbstractUnavailable, Keywords: keywords}
	if out.Keywords == nil {
		out.Keywords = []string{}
	}
	if len(sections) > 0 {
		out.Text = strings.TrimSpace(strings.Join(sections, "\n\n"))
	}
	return out, nil
}
