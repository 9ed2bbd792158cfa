package rfc9211

import "fmt"

// §  2.  The Cache-Status HTTP Response Header Field
// §
// §     The Cache-Status HTTP response header field indicates how caches have
// §     handled that response and its corresponding request.
// §
// §     Each member of the list represents a cache that has handled the
// §     request.

type Status string

const (
	StatusHit Status = "hit"
	StatusFwd Status = "fwd"
)

type FwdReason string

const (
	// The cache was configured to not handle this request.
	FwdReasonBypass FwdReason = "bypass"

	// The request method's semantics require the request to be
	// forwarded.
	FwdReasonMethod FwdReason = "method"

	// The cache did not contain any responses that matched the
	// request URI.
	FwdReasonUriMiss FwdReason = "uri-miss"

	// The cache contained a response that matched the request
	// URI, but it could not select a response based upon this request's
	// header fields and stored Vary header fields.
	FwdReasonVaryMiss FwdReason = "vary-miss"

	// The cache did not contain any responses that could be used to
	// satisfy this request (to be used when an implementation cannot
	// distinguish between uri-miss and vary-miss).
	FwdReasonMiss FwdReason = "miss"

	// The cache was able to select a fresh response for the
	// request, but the request's semantics (e.g., Cache-Control request
	// directives) did not allow its use.
	FwdReasonRequest FwdReason = "request"

	// The cache was able to select a response for the request, but
	// it was stale.
	FwdReasonStale FwdReason = "stale"

	// The cache was able to select a partial response for the
	// request, but it did not contain all of the requested ranges (or
	// the request was for the complete response).
	FwdReasonPartial FwdReason = "partial"
)

// CacheStatus is one list member of the Cache-Status header field.
// The zero value renders as an empty status and should be marked with
// Hit or Forward before use.
type CacheStatus struct {
	Status    Status
	FwdReason FwdReason
	// Status code received on the forwarded request, if any.
	FwdStatus int
	// Whether the forwarded response was stored.
	Stored bool
	detail string
}

// Hit marks the request as satisfied from the cache.
func (cs *CacheStatus) Hit() {
	cs.Status = StatusHit
}

// Forward marks the request as forwarded towards the origin,
// with the reason for doing so.
func (cs *CacheStatus) Forward(reason FwdReason) {
	cs.Status = StatusFwd
	cs.FwdReason = reason
}

func (cs *CacheStatus) Detail(detail string) {
	cs.detail = detail
}

// String returns the list member as it appears on the wire, e.g.
// `Static-Cache; fwd=uri-miss; fwd-status=200; stored`.
// The fwd parameters only apply to forwarded requests and are not
// rendered after a Hit, even if set earlier.
func (cs *CacheStatus) String() string {
	status := fmt.Sprintf("Static-Cache; %s", cs.Status)
	if cs.Status == StatusFwd {
		if cs.FwdReason != "" {
			status = fmt.Sprintf("%s=%s", status, cs.FwdReason)
		}
		if cs.FwdStatus != 0 {
			status = fmt.Sprintf("%s; fwd-status=%d", status, cs.FwdStatus)
		}
		if cs.Stored {
			status = status + "; stored"
		}
	}
	if cs.detail != "" {
		status = status + "; detail=" + cs.detail
	}
	return status
}
