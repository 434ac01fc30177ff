package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IndexClient scrapes the zip links of an HTML directory listing. Sizes are
// not available this way.
type IndexClient struct {
	http *http.Client
}

func NewIndexClient() *IndexClient {
	return &IndexClient{http: defaultHTTPClient()}
}

func (c *IndexClient) ListZips(ctx context.Context, listURL string) ([]Item, error) {
	base, err := url.Parse(listURL)
	if err != nil {
		return nil, fmt.Errorf("parse list url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("GET %s failed (%d): %s", listURL, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	seen := make(map[string]bool)
	var items []Item
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs, name, err := resolve(base, href)
		if err != nil || !isZip(name) || seen[abs] {
			return
		}
		seen[abs] = true
		items = append(items, Item{URL: abs, Name: name})
	})
	return items, nil
}
