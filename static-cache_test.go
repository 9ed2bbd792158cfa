package staticcache

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/static-cache/static-cache/cache"
	cachekey "github.com/static-cache/static-cache/pkg/cache-key"

	"github.com/rs/zerolog"
)

const (
	dateZero = "Thu, 01 Jan 1970 00:00:00 GMT"
	dateOne  = "Fri, 02 Jan 1970 00:00:00 GMT"
)

// fakeClient plays the origin server for one request shape: it fails the
// test if the request URL or validator headers differ from what the
// origin should see, and answers with a canned response.
type fakeClient struct {
	t          *testing.T
	wantURL    string
	wantHeader http.Header
	status     int
	header     http.Header
	body       string
	called     bool
}

func (f *fakeClient) Do(req *http.Request) (*http.Response, error) {
	f.t.Helper()
	f.called = true
	if req.Method != "GET" {
		f.t.Fatalf("Request method is %s", req.Method)
	}
	if got := req.URL.String(); got != f.wantURL {
		f.t.Fatalf("Request URL is %s", got)
	}
	for _, name := range []string{"If-None-Match", "If-Modified-Since"} {
		if got, want := req.Header.Get(name), f.wantHeader.Get(name); got != want {
			f.t.Fatalf("%s header is %q, should be %q", name, got, want)
		}
	}
	header := f.header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: f.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func (f *fakeClient) assertCalled() {
	f.t.Helper()
	if !f.called {
		f.t.Fatal("Origin never contacted")
	}
}

// brokenClient fails every request the way a refused connection would.
type brokenClient struct {
	called bool
}

var errConnectionRefused = errors.New("connection refused")

func (b *brokenClient) Do(req *http.Request) (*http.Response, error) {
	b.called = true
	return nil, errConnectionRefused
}

func newTestCache(provider cache.CacheProvider, client Client) *StaticCache {
	logger := zerolog.New(io.Discard)
	return CreateCache(Config{Cache: provider, Client: client, Logger: &logger})
}

func TestInitialRequestSuccess(t *testing.T) {
	client := &fakeClient{
		t:       t,
		wantURL: "http://example.com/",
		status:  http.StatusOK,
		body:    "hello world",
	}
	c := newTestCache(cache.NewMemCache(), client)

	body, err := c.Get("http://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "hello world" {
		t.Fatalf("Body is %s", body)
	}
	client.assertCalled()
}

func TestInitialRequestFailure(t *testing.T) {
	client := &fakeClient{
		t:       t,
		wantURL: "http://example.com/",
		status:  http.StatusInternalServerError,
	}
	provider := cache.NewMemCache()
	c := newTestCache(provider, client)

	_, err := c.Get("http://example.com/")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Error is %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Status code is %d", statusErr.StatusCode)
	}
	client.assertCalled()

	entries := 0
	provider.Keys(func(string) { entries++ })
	if entries != 0 {
		t.Fatal("Failed fetch left an entry behind")
	}
}

func TestIgnoreFragmentInURL(t *testing.T) {
	// the origin must see the URL without the fragment
	client := &fakeClient{
		t:       t,
		wantURL: "http://example.com/page",
		status:  http.StatusOK,
		body:    "hello world",
	}
	c := newTestCache(cache.NewMemCache(), client)

	if _, err := c.Get("http://example.com/page#frag"); err != nil {
		t.Fatal(err)
	}
	client.assertCalled()
}

func TestRefetchWithoutValidatorsIsUnconditional(t *testing.T) {
	url := "http://example.com/no-validators"
	provider := cache.NewMemCache()
	client := &fakeClient{t: t, wantURL: url, status: http.StatusOK, body: "hello world"}
	c := newTestCache(provider, client)

	if _, err := c.Get(url); err != nil {
		t.Fatal(err)
	}
	client.assertCalled()

	// the stored entry has no validators, so the next request must be
	// unconditional again (fakeClient rejects any validator headers)
	client = &fakeClient{t: t, wantURL: url, status: http.StatusOK, body: "hello world"}
	c = newTestCache(provider, client)

	body, err := c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "hello world" {
		t.Fatalf("Body is %s", body)
	}
	client.assertCalled()
}

func TestUseCacheDataIfNotModifiedSince(t *testing.T) {
	url := "http://example.com/"
	provider := cache.NewMemCache()
	client := &fakeClient{
		t:       t,
		wantURL: url,
		status:  http.StatusOK,
		header:  http.Header{"Last-Modified": []string{dateZero}},
		body:    "hello world",
	}
	c := newTestCache(provider, client)

	if _, err := c.Get(url); err != nil {
		t.Fatal(err)
	}
	client.assertCalled()

	// the server sees the stored date and answers 304 with no body
	client = &fakeClient{
		t:          t,
		wantURL:    url,
		wantHeader: http.Header{"If-Modified-Since": []string{dateZero}},
		status:     http.StatusNotModified,
	}
	c = newTestCache(provider, client)

	body, err := c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "hello world" {
		t.Fatalf("Body is %s", body)
	}
	client.assertCalled()
}

func TestUpdateCacheIfModifiedSince(t *testing.T) {
	url := "http://example.com/"
	provider := cache.NewMemCache()
	client := &fakeClient{
		t:       t,
		wantURL: url,
		status:  http.StatusOK,
		header:  http.Header{"Last-Modified": []string{dateZero}},
		body:    "hello",
	}
	c := newTestCache(provider, client)

	if _, err := c.Get(url); err != nil {
		t.Fatal(err)
	}
	client.assertCalled()

	// the resource has changed: a full response replaces the entry
	client = &fakeClient{
		t:          t,
		wantURL:    url,
		wantHeader: http.Header{"If-Modified-Since": []string{dateZero}},
		status:     http.StatusOK,
		header:     http.Header{"Last-Modified": []string{dateOne}},
		body:       "world",
	}
	c = newTestCache(provider, client)

	body, err := c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "world" {
		t.Fatalf("Body is %s", body)
	}
	client.assertCalled()

	// the next request carries the new date and can be served on 304
	client = &fakeClient{
		t:          t,
		wantURL:    url,
		wantHeader: http.Header{"If-Modified-Since": []string{dateOne}},
		status:     http.StatusNotModified,
	}
	c = newTestCache(provider, client)

	body, err = c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "world" {
		t.Fatalf("Body is %s", body)
	}
	client.assertCalled()
}

func TestUseCacheDataIfSomeMatch(t *testing.T) {
	url := "http://example.com/"
	provider := cache.NewMemCache()
	client := &fakeClient{
		t:       t,
		wantURL: url,
		status:  http.StatusOK,
		header:  http.Header{"Etag": []string{`"abcd"`}},
		body:    "hello world",
	}
	c := newTestCache(provider, client)

	if _, err := c.Get(url); err != nil {
		t.Fatal(err)
	}
	client.assertCalled()

	client = &fakeClient{
		t:          t,
		wantURL:    url,
		wantHeader: http.Header{"If-None-Match": []string{`"abcd"`}},
		status:     http.StatusNotModified,
	}
	c = newTestCache(provider, client)

	body, err := c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "hello world" {
		t.Fatalf("Body is %s", body)
	}
	client.assertCalled()
}

func TestUpdateCacheIfNoneMatch(t *testing.T) {
	url := "http://example.com/"
	provider := cache.NewMemCache()
	client := &fakeClient{
		t:       t,
		wantURL: url,
		status:  http.StatusOK,
		header:  http.Header{"Etag": []string{`"abcd"`}},
		body:    "hello",
	}
	c := newTestCache(provider, client)

	if _, err := c.Get(url); err != nil {
		t.Fatal(err)
	}
	client.assertCalled()

	client = &fakeClient{
		t:          t,
		wantURL:    url,
		wantHeader: http.Header{"If-None-Match": []string{`"abcd"`}},
		status:     http.StatusOK,
		header:     http.Header{"Etag": []string{`"efgh"`}},
		body:       "world",
	}
	c = newTestCache(provider, client)

	body, err := c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "world" {
		t.Fatalf("Body is %s", body)
	}
	client.assertCalled()

	// the replacement entry validates against the new entity tag
	client = &fakeClient{
		t:          t,
		wantURL:    url,
		wantHeader: http.Header{"If-None-Match": []string{`"efgh"`}},
		status:     http.StatusNotModified,
	}
	c = newTestCache(provider, client)

	body, err = c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "world" {
		t.Fatalf("Body is %s", body)
	}
	client.assertCalled()
}

func TestBothValidatorsSent(t *testing.T) {
	url := "http://example.com/"
	provider := cache.NewMemCache()
	client := &fakeClient{
		t:       t,
		wantURL: url,
		status:  http.StatusOK,
		header: http.Header{
			"Etag":          []string{`"abcd"`},
			"Last-Modified": []string{dateZero},
		},
		body: "hello world",
	}
	c := newTestCache(provider, client)

	if _, err := c.Get(url); err != nil {
		t.Fatal(err)
	}

	client = &fakeClient{
		t:       t,
		wantURL: url,
		wantHeader: http.Header{
			"If-None-Match":     []string{`"abcd"`},
			"If-Modified-Since": []string{dateZero},
		},
		status: http.StatusNotModified,
	}
	c = newTestCache(provider, client)

	if _, err := c.Get(url); err != nil {
		t.Fatal(err)
	}
	client.assertCalled()
}

// TestErrorOnConnectionRefused checks that a transport failure is an
// error even when a stored copy exists: the copy can no longer be
// confirmed current, so it is not served. It must survive untouched,
// though.
func TestErrorOnConnectionRefused(t *testing.T) {
	url := "http://example.com/"
	provider := cache.NewMemCache()
	client := &fakeClient{
		t:       t,
		wantURL: url,
		status:  http.StatusOK,
		header:  http.Header{"Etag": []string{`"abcd"`}},
		body:    "hello world",
	}
	c := newTestCache(provider, client)

	if _, err := c.Get(url); err != nil {
		t.Fatal(err)
	}

	broken := &brokenClient{}
	c = newTestCache(provider, broken)

	_, err := c.Get(url)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Error is %v", err)
	}
	if !errors.Is(err, errConnectionRefused) {
		t.Fatalf("Error does not carry the transport failure: %v", err)
	}
	if !broken.called {
		t.Fatal("Origin never contacted")
	}

	// the stored entry is intact and still validates
	client = &fakeClient{
		t:          t,
		wantURL:    url,
		wantHeader: http.Header{"If-None-Match": []string{`"abcd"`}},
		status:     http.StatusNotModified,
	}
	c = newTestCache(provider, client)

	body, err := c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "hello world" {
		t.Fatalf("Body is %s", body)
	}
}

// TestNoStaleServeOnServerError checks that an origin error status is
// reported instead of the stored copy, and that the stored copy is
// neither replaced nor dropped by the failure.
func TestNoStaleServeOnServerError(t *testing.T) {
	url := "http://example.com/"
	provider := cache.NewMemCache()
	client := &fakeClient{
		t:       t,
		wantURL: url,
		status:  http.StatusOK,
		header:  http.Header{"Etag": []string{`"v1"`}},
		body:    "hello world",
	}
	c := newTestCache(provider, client)

	if _, err := c.Get(url); err != nil {
		t.Fatal(err)
	}

	client = &fakeClient{
		t:          t,
		wantURL:    url,
		wantHeader: http.Header{"If-None-Match": []string{`"v1"`}},
		status:     http.StatusInternalServerError,
		body:       "it's all broken",
	}
	c = newTestCache(provider, client)

	_, err := c.Get(url)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Error is %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Status code is %d", statusErr.StatusCode)
	}

	client = &fakeClient{
		t:          t,
		wantURL:    url,
		wantHeader: http.Header{"If-None-Match": []string{`"v1"`}},
		status:     http.StatusNotModified,
	}
	c = newTestCache(provider, client)

	body, err := c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "hello world" {
		t.Fatalf("Body is %s", body)
	}
}

func TestNotModifiedWithoutStoredEntryIsError(t *testing.T) {
	client := &fakeClient{
		t:       t,
		wantURL: "http://example.com/",
		status:  http.StatusNotModified,
	}
	c := newTestCache(cache.NewMemCache(), client)

	_, err := c.Get("http://example.com/")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Error is %v", err)
	}
	if statusErr.StatusCode != http.StatusNotModified {
		t.Fatalf("Status code is %d", statusErr.StatusCode)
	}
}

func TestInvalidURLFailsBeforeNetwork(t *testing.T) {
	client := &brokenClient{}
	c := newTestCache(cache.NewMemCache(), client)

	for _, rawURL := range []string{
		"",
		"not a url",
		"/relative/path",
		"ftp://example.com/file",
	} {
		if _, err := c.Get(rawURL); !errors.Is(err, cachekey.ErrorInvalidURL) {
			t.Fatalf("Error for %q is %v", rawURL, err)
		}
	}
	if client.called {
		t.Fatal("Invalid URL reached the network")
	}
}

func TestStorageErrorSurfaced(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("a file, not a directory"), 0644); err != nil {
		t.Fatal(err)
	}
	client := &fakeClient{
		t:       t,
		wantURL: "http://example.com/",
		status:  http.StatusOK,
		body:    "hello world",
	}
	c := newTestCache(cache.NewFileCache(filepath.Join(blocker, "root")), client)

	_, err := c.Get("http://example.com/")
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("Error is %v", err)
	}
}
