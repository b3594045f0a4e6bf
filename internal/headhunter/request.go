package headhunter

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
)

type ItemResponse struct {
	Items   []Item
	Found   int
	Pages   int
	Page    int
	PerPage int `json:"per_page"`
}

type Item interface{}

// StatusError is returned for any non-200 answer.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

// GetItems makes GET requests to the HeadHunter API and returns items from
// all pages, stopping once limit items are collected when limit > 0.
func (c *Client) GetItems(ctx context.Context, rawURL string, q url.Values, limit int) ([]Item, error) {
	var items []Item

	req, err := c.newGet(ctx, rawURL, q)
	if err != nil {
		return nil, err
	}

	response, err := c.fetchPage(req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response from HH.ru", zap.Int("pages", response.Pages), zap.Int("max items per page", response.PerPage))

	items = append(items, response.Items...)

	for response.Page < (response.Pages-1) && !enough(items, limit) {
		c.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", response.Page+1, response.Pages),
		))

		response, err = c.fetchPage(addPage(req, response.Page+1))
		if err != nil {
			return nil, err
		}

		items = append(items, response.Items...)
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

func enough(items []Item, limit int) bool {
	return limit > 0 && len(items) >= limit
}

func (c *Client) fetchPage(req *http.Request) (*ItemResponse, error) {
	var response *ItemResponse
	if err := c.do(req, &response); err != nil {
		return nil, err
	}
	if response == nil {
		return &ItemResponse{}, nil
	}

	return response, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, q url.Values, target any) error {
	req, err := c.newGet(ctx, rawURL, q)
	if err != nil {
		return err
	}

	return c.do(req, target)
}

func (c *Client) newGet(ctx context.Context, rawURL string, q url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Content-Type", contentType)
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return req, nil
}

// do sends the request and decodes a JSON body into target.
func (c *Client) do(req *http.Request, target any) error {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gz.Close()
		body = gz
	}

	if target == nil {
		return nil
	}

	return json.NewDecoder(body).Decode(target)
}

// addPage returns a copy of req for the given page.
func addPage(req *http.Request, page int) *http.Request {
	next := req.Clone(req.Context())
	q := next.URL.Query()
	q.Set("page", strconv.Itoa(page))
	next.URL.RawQuery = q.Encode()

	return next
}
