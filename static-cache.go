package staticcache

import (
	"fmt"
	"io"
	"net/http"

	"github.com/static-cache/static-cache/cache"
	cachekey "github.com/static-cache/static-cache/pkg/cache-key"
	"github.com/static-cache/static-cache/rfc9111"
	"github.com/static-cache/static-cache/rfc9211"

	"github.com/rs/zerolog"
)

type Config struct {
	// Storage for cache entries.
	Cache cache.CacheProvider
	// Client to use for origin requests.
	// http.DefaultClient is used if nil.
	Client Client
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger
}

type StaticCache struct {
	cache  cache.CacheProvider
	client Client
	log    zerolog.Logger
}

// CreateCache initializes the static-cache instance.
// It does not touch the storage root,
// which is only created on the first write.
func CreateCache(config Config) *StaticCache {
	// use console logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	// create a child logger and add defaults
	logger = logger.With().
		Str("component", "static-cache").
		Logger()

	client := config.Client
	if client == nil {
		client = http.DefaultClient
	}

	return &StaticCache{
		cache:  config.Cache,
		client: client,
		log:    logger,
	}
}

// Get returns the body of the resource at url, revalidating any stored
// copy against the origin first. A 304 answer serves the stored body,
// a 200 answer replaces it, and any other outcome leaves the store
// untouched and returns an error.
func (c *StaticCache) Get(url string) ([]byte, error) {
	body, _, err := c.fetch(url)
	return body, err
}

// fetch runs one conditional fetch and reports what happened as a
// Cache-Status list member. Exactly one origin request is made.
func (c *StaticCache) fetch(url string) ([]byte, rfc9211.CacheStatus, error) {
	var cs rfc9211.CacheStatus

	canonical, err := cachekey.Canonicalize(url)
	if err != nil {
		return nil, cs, err
	}
	key, err := cachekey.Key(canonical)
	if err != nil {
		return nil, cs, err
	}

	entry, found, err := c.cache.Get(key)
	if err != nil {
		return nil, cs, &StorageError{Err: err}
	}
	if found {
		cs.Forward(rfc9211.FwdReasonStale)
	} else {
		cs.Forward(rfc9211.FwdReasonUriMiss)
	}

	req, err := http.NewRequest("GET", canonical, nil)
	if err != nil {
		return nil, cs, fmt.Errorf("%w: %v", cachekey.ErrorInvalidURL, err)
	}
	if found {
		rfc9111.SetValidators(req.Header, entry.ETag, entry.LastModified)
	}

	c.log.Trace().Str("key", key).Str("url", canonical).Msg("Validating against origin")
	res, err := c.client.Do(req)
	if err != nil {
		return nil, cs, &TransportError{URL: canonical, Err: err}
	}
	defer res.Body.Close()
	cs.FwdStatus = res.StatusCode

	switch rfc9111.HandleValidationResponse(res.StatusCode) {
	case rfc9111.OutcomeReuse:
		// a 304 can only refer to a stored copy
		if !found {
			return nil, cs, &StatusError{URL: canonical, StatusCode: res.StatusCode}
		}
		cs.Hit()
		c.log.Trace().Str("key", key).Msg("Stored copy still valid, serving")
		return entry.Body, cs, nil
	case rfc9111.OutcomeReplace:
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, cs, &TransportError{URL: canonical, Err: err}
		}
		newEntry := cache.Entry{
			Body:         body,
			ETag:         res.Header.Get("Etag"),
			LastModified: res.Header.Get("Last-Modified"),
			URL:          canonical,
		}
		if err := c.cache.Put(key, newEntry); err != nil {
			return nil, cs, &StorageError{Err: err}
		}
		cs.Stored = true
		c.log.Trace().Str("key", key).Msg("Cache write")
		return body, cs, nil
	default:
		c.log.Debug().Str("key", key).Int("http-status", res.StatusCode).Msg("Origin fetch failed")
		return nil, cs, &StatusError{URL: canonical, StatusCode: res.StatusCode}
	}
}
