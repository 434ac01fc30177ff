// Package remote lists the zip archives published for one reference month.
// The Receita Federal share is a WebDAV folder; mirrors that only expose an
// HTML index are supported as well.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Item is one archive available for download.
type Item struct {
	// URL is absolute.
	URL  string
	Name string
	// Size is 0 when the listing does not report it.
	Size         int64
	LastModified string
}

type Lister interface {
	ListZips(ctx context.Context, listURL string) ([]Item, error)
}

// New returns the lister for kind "dav" (default) or "html".
func New(kind string) (Lister, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "dav", "webdav":
		return NewDAVClient(), nil
	case "html", "index":
		return NewIndexClient(), nil
	default:
		return nil, fmt.Errorf("unknown lister %q (want dav or html)", kind)
	}
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

// ListURL fills the month into a template such as
// "https://host/dados_abertos_cnpj/%s/".
func ListURL(template, month string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, month)
	}
	return strings.TrimRight(template, "/") + "/" + month + "/"
}

// resolve turns an href from a listing into an absolute URL and its base name.
func resolve(base *url.URL, href string) (string, string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", "", err
	}
	abs := base.ResolveReference(ref)
	name, err := url.PathUnescape(path.Base(abs.Path))
	if err != nil {
		name = path.Base(abs.Path)
	}
	return abs.String(), name, nil
}

func isZip(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zip")
}
