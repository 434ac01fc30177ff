package remote

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const propfindBody = `<?xml version="1.0"?>
<d:propfind xmlns:d="DAV:">
  <d:prop>
    <d:getlastmodified/>
    <d:getcontentlength/>
    <d:getcontenttype/>
  </d:prop>
</d:propfind>`

// DAVClient lists a folder with a Depth 1 PROPFIND.
type DAVClient struct {
	http *http.Client
}

func NewDAVClient() *DAVClient {
	return &DAVClient{http: defaultHTTPClient()}
}

type multiStatus struct {
	XMLName   xml.Name      `xml:"multistatus"`
	Responses []davResponse `xml:"response"`
}

type davResponse struct {
	Href     string        `xml:"href"`
	Propstat []davPropstat `xml:"propstat"`
}

type davPropstat struct {
	Prop   davProp `xml:"prop"`
	Status string  `xml:"status"`
}

type davProp struct {
	GetLastModified  string `xml:"getlastmodified"`
	GetContentLength int64  `xml:"getcontentlength"`
	GetContentType   string `xml:"getcontenttype"`
}

func (c *DAVClient) ListZips(ctx context.Context, listURL string) ([]Item, error) {
	base, err := url.Parse(listURL)
	if err != nil {
		return nil, fmt.Errorf("parse list url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "PROPFIND", listURL, bytes.NewBufferString(propfindBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Depth", "1")
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("PROPFIND failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var ms multiStatus
	if err := xml.NewDecoder(resp.Body).Decode(&ms); err != nil {
		return nil, fmt.Errorf("parse PROPFIND response: %w", err)
	}

	items := make([]Item, 0, len(ms.Responses))
	for _, r := range ms.Responses {
		abs, name, err := resolve(base, r.Href)
		if err != nil || !isZip(name) {
			continue
		}

		var chosen davProp
		for _, ps := range r.Propstat {
			if strings.Contains(ps.Status, "200") {
				chosen = ps.Prop
				break
			}
		}

		items = append(items, Item{
			URL:          abs,
			Name:         name,
			Size:         chosen.GetContentLength,
			LastModified: chosen.GetLastModified,
		})
	}
	return items, nil
}
