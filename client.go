package staticcache

import "net/http"

// Client executes origin requests. *http.Client satisfies it, and
// http.DefaultClient (which follows redirects) is used when no client
// is configured.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
