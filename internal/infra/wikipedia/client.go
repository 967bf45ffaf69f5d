// Package wikipedia provides a client for the MediaWiki action API that produces
// short article summaries.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// userAgent identifies the client, as required by the Wikimedia API policy.
const userAgent = "lyra-voice-assistant/1.0 (https://github.com/osa030/lyra)"

// Client is a MediaWiki API client.
type Client struct {
	baseURL    string
	maxOptions int
	httpClient *http.Client
}

// Config represents Wikipedia client configuration.
type Config struct {
	Language   string // e.g. "en"
	MaxOptions int    // candidates returned for ambiguous terms
}

// New creates a new Wikipedia client.
func New(cfg Config) *Client {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	maxOptions := cfg.MaxOptions
	if maxOptions <= 0 {
		maxOptions = 5
	}

	return &Client{
		baseURL:    fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang),
		maxOptions: maxOptions,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// searchResponse represents the response from list=search.
type searchResponse struct {
	Query struct {
		SearchInfo struct {
			Suggestion string `json:"suggestion"`
		} `json:"searchinfo"`
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// pageResponse represents the response from prop=extracts|pageprops|links.
type pageResponse struct {
	Query struct {
		Pages []struct {
			Title     string            `json:"title"`
			Missing   bool              `json:"missing"`
			Extract   string            `json:"extract"`
			PageProps map[string]string `json:"pageprops"`
			Links     []struct {
				Title string `json:"title"`
			} `json:"links"`
		} `json:"pages"`
	} `json:"query"`
}

// apiError represents an error response from the MediaWiki API.
type apiError struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Summarize returns the first maxSentences sentences of the article best matching topic.
// It never returns a Go error: failures are reported through the Summary kind.
func (c *Client) Summarize(ctx context.Context, topic string, maxSentences int) Summary {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return NotFound()
	}
	if maxSentences <= 0 {
		maxSentences = 2
	}

	title, err := c.search(ctx, topic)
	if err != nil {
		return Failed(err)
	}
	if title == "" {
		return NotFound()
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|pageprops")
	params.Set("exsentences", fmt.Sprintf("%d", maxSentences))
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", title)

	var page pageResponse
	if err := c.get(ctx, params, &page); err != nil {
		return Failed(err)
	}
	if len(page.Query.Pages) == 0 || page.Query.Pages[0].Missing {
		return NotFound()
	}

	p := page.Query.Pages[0]
	if _, ok := p.PageProps["disambiguation"]; ok {
		options, err := c.links(ctx, p.Title)
		if err != nil {
			return Failed(err)
		}
		zlog.Debug().Msgf("wikipedia: %q is ambiguous (%d options)", p.Title, len(options))
		return Ambiguous(options)
	}

	text := strings.TrimSpace(p.Extract)
	if text == "" {
		return NotFound()
	}
	return Found(p.Title, text)
}

// search returns the best-matching article title, or "" when nothing matches.
func (c *Client) search(ctx context.Context, topic string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", topic)
	params.Set("srlimit", "1")
	params.Set("srinfo", "suggestion")
	params.Set("srprop", "")

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", err
	}

	if len(resp.Query.Search) > 0 {
		return resp.Query.Search[0].Title, nil
	}
	return resp.Query.SearchInfo.Suggestion, nil
}

// links returns up to maxOptions article titles linked from a disambiguation page.
func (c *Client) links(ctx context.Context, title string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "links")
	params.Set("plnamespace", "0")
	params.Set("pllimit", fmt.Sprintf("%d", c.maxOptions))
	params.Set("titles", title)

	var resp pageResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	options := make([]string, 0, c.maxOptions)
	for _, p := range resp.Query.Pages {
		for _, l := range p.Links {
			if len(options) == c.maxOptions {
				return options, nil
			}
			options = append(options, l.Title)
		}
	}
	return options, nil
}

// get performs a GET against the API and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("wikipedia API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	// Check for MediaWiki API errors
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
		return errors.Newf("wikipedia API error %s: %s", apiErr.Error.Code, apiErr.Error.Info)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}
