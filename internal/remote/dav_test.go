package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const multiStatusBody = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/dados_abertos_cnpj/2025-10/</d:href>
    <d:propstat>
      <d:prop>
        <d:getcontentlength>0</d:getcontentlength>
        <d:getcontenttype>httpd/unix-directory</d:getcontenttype>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dados_abertos_cnpj/2025-10/Empresas0.zip</d:href>
    <d:propstat>
      <d:prop>
        <d:getcontentlength>12345</d:getcontentlength>
        <d:getcontenttype>application/zip</d:getcontenttype>
        <d:getlastmodified>Sun, 12 Oct 2025 10:00:00 GMT</d:getlastmodified>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dados_abertos_cnpj/2025-10/Qualifica%C3%A7%C3%B5es.zip</d:href>
    <d:propstat>
      <d:prop>
        <d:getcontentlength>67890</d:getcontentlength>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dados_abertos_cnpj/2025-10/README.txt</d:href>
    <d:propstat>
      <d:prop>
        <d:getcontentlength>10</d:getcontentlength>
        <d:getcontenttype>text/plain</d:getcontenttype>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

func TestDAVListZips_ReturnsOnlyZipFiles(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PROPFIND" {
			t.Errorf("expected PROPFIND, got %s", r.Method)
		}
		if depth := r.Header.Get("Depth"); depth != "1" {
			t.Errorf("expected Depth=1, got %q", depth)
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusMultiStatus)
		_, _ = w.Write([]byte(multiStatusBody))
	}))
	defer srv.Close()

	items, err := NewDAVClient().ListZips(context.Background(), srv.URL+"/dados_abertos_cnpj/2025-10/")
	if err != nil {
		t.Fatalf("ListZips returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 .zip files, got %d", len(items))
	}

	first := items[0]
	if first.URL != srv.URL+"/dados_abertos_cnpj/2025-10/Empresas0.zip" {
		t.Fatalf("unexpected URL: %s", first.URL)
	}
	if first.Name != "Empresas0.zip" || first.Size != 12345 {
		t.Fatalf("unexpected item: %+v", first)
	}
	if !strings.HasPrefix(first.LastModified, "Sun") {
		t.Fatalf("last modified not captured: %q", first.LastModified)
	}
	if items[1].Name != "Qualificações.zip" {
		t.Fatalf("escaped name not decoded: %q", items[1].Name)
	}
}

func TestDAVListZips_Non2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "month not published", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewDAVClient().ListZips(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestListURL(t *testing.T) {
	t.Parallel()

	if got := ListURL("https://x.test/cnpj/%s/", "2025-10"); got != "https://x.test/cnpj/2025-10/" {
		t.Fatalf("template: got %q", got)
	}
	if got := ListURL("https://x.test/cnpj/", "2025-10"); got != "https://x.test/cnpj/2025-10/" {
		t.Fatalf("plain base: got %q", got)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	if l, err := New(""); err != nil {
		t.Fatalf("default lister: %v", err)
	} else if _, ok := l.(*DAVClient); !ok {
		t.Fatalf("expected DAVClient, got %T", l)
	}
	if l, err := New("HTML"); err != nil {
		t.Fatalf("html lister: %v", err)
	} else if _, ok := l.(*IndexClient); !ok {
		t.Fatalf("expected IndexClient, got %T", l)
	}
	if _, err := New("ftp"); err == nil {
		t.Fatal("expected error for unknown lister")
	}
}
