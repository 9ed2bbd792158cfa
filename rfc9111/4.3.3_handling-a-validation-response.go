package rfc9111

import "net/http"

// §  4.3.3.  Handling a Validation Response
// §
// §     Cache handling of a response to a conditional request depends upon
// §     its status code:
// §
// §     *  A 304 (Not Modified) response status code indicates that the
// §        stored response can be updated and reused; see Section 4.3.4.
// §
// §     *  A full response (i.e., one containing content) indicates that none
// §        of the stored responses nominated in the conditional request are
// §        suitable.  Instead, the cache MUST use the full response to
// §        satisfy the request.  The cache MAY store such a full response,
// §        subject to its constraints (see Section 3).
// §
// §     *  However, if a cache receives a 5xx (Server Error) response while
// §        attempting to validate a response, it can either forward this
// §        response to the requesting client or act as if the server failed
// §        to respond.  In the latter case, the cache can send a previously
// §        stored response, subject to its constraints on doing so (see
// §        Section 4.2.4), or retry the validation request.

// ValidationOutcome classifies an origin response to a request for a
// resource, conditional or not.
type ValidationOutcome int

const (
	// OutcomeReuse means the stored response is still current
	// and is served as is.
	OutcomeReuse ValidationOutcome = iota
	// OutcomeReplace means the full response supersedes whatever is stored.
	OutcomeReplace
	// OutcomeError means the response can satisfy nothing. The stored
	// response is neither served nor dropped; the failure is reported.
	OutcomeError
)

// HandleValidationResponse maps an origin status code to what is done with
// the stored response. Only 304 reuses it and only 200 replaces it; every
// other status, server errors included, is a failed fetch.
func HandleValidationResponse(statusCode int) ValidationOutcome {
	switch statusCode {
	case http.StatusNotModified:
		return OutcomeReuse
	case http.StatusOK:
		return OutcomeReplace
	default:
		return OutcomeError
	}
}
