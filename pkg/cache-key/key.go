package cachekey

import (
	"crypto/sha256"
	"fmt"
	"net/url"
)

var ErrorInvalidURL = fmt.Errorf("Invalid URL")

// Canonicalize returns the canonical form of the given URL:
// the fragment is dropped, since two URLs differing only in fragment
// name the same resource on the wire.
// The URL must be absolute with an http or https scheme,
// otherwise ErrorInvalidURL is returned.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrorInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrorInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrorInvalidURL, rawURL)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// Key derives the cache key for the given URL.
// The key is the hex-encoded SHA-256 digest of the canonical URL,
// which makes it fixed-length and safe to use as a file name.
// Key is a pure function: equal URLs always map to equal keys.
func Key(rawURL string) (string, error) {
	canonical, err := Canonicalize(rawURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(canonical))), nil
}
