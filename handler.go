package staticcache

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path"

	cachekey "github.com/static-cache/static-cache/pkg/cache-key"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

type mirror struct {
	cache  *StaticCache
	origin url.URL
	log    zerolog.Logger
}

// NewHandler serves cached copies of the origin's resources.
// Request paths and queries are resolved against the origin URL and
// fetched through the cache, and the handling of every request is
// reported in a Cache-Status response header.
// Origins with paths are not supported.
func NewHandler(c *StaticCache, origin url.URL) http.Handler {
	m := &mirror{
		cache:  c,
		origin: origin,
		log:    c.log.With().Str("origin", origin.String()).Logger(),
	}
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(m.log))
	r.Get("/*", m.serve)
	return r
}

func (m *mirror) serve(w http.ResponseWriter, r *http.Request) {
	logger := getLogger(r)

	target := m.origin
	target.Path = r.URL.Path
	target.RawQuery = r.URL.RawQuery

	body, cs, err := m.cache.fetch(target.String())
	if cs.Status != "" {
		w.Header().Add("Cache-Status", cs.String())
	}
	if err != nil {
		logger.Debug().Err(err).Str("url", target.String()).Msg("Could not serve resource")
		http.Error(w, "Could not get response", errorStatus(err))
		return
	}

	w.Header().Set("Content-Type", contentType(r.URL.Path, body))
	w.Write(body)
	logger.Trace().Msgf("Wrote body (%d bytes)", len(body))
}

// errorStatus maps a fetch error to the response status code.
// Origin statuses are passed through as-is.
func errorStatus(err error) int {
	var statusErr *StatusError
	var transportErr *TransportError
	switch {
	case errors.Is(err, cachekey.ErrorInvalidURL):
		return http.StatusBadRequest
	case errors.As(err, &statusErr):
		return statusErr.StatusCode
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// contentType resolves the Content-Type from the request path extension,
// sniffing the body if the extension is unknown.
func contentType(urlPath string, body []byte) string {
	if ct := mime.TypeByExtension(path.Ext(urlPath)); ct != "" {
		return ct
	}
	return http.DetectContentType(body)
}

// getLogger returns the logger from the request context.
// If no logger is found, it will return the default logger.
func getLogger(r *http.Request) *zerolog.Logger {
	logger := hlog.FromRequest(r)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}
	return logger
}
