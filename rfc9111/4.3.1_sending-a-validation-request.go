package rfc9111

import "net/http"

// §  4.3.1.  Sending a Validation Request
// §
// §     When generating a conditional request for validation, a cache either
// §     starts with a request it is attempting to satisfy or -- if it is
// §     initiating the request independently -- synthesizes a request using a
// §     stored response by copying the method, target URI, and request header
// §     fields identified by the Vary header field (Section 4.1).
// §
// §     It then updates that request with one or more precondition header
// §     fields.  These contain validator metadata sourced from a stored
// §     response(s) that has the same URI.
// §
// §     One such validator is the timestamp given in a Last-Modified header
// §     field (Section 8.8.2 of [HTTP]), which can be used in an If-Modified-
// §     Since header field for response validation.
// §
// §     Another validator is the entity tag given in an ETag field
// §     (Section 8.8.3 of [HTTP]).  One or more entity tags, indicating one
// §     or more stored responses, can be used in an If-None-Match header
// §     field for response validation.
// §
// §     When generating a conditional request for validation, a cache:
// §
// §     *  MUST send the relevant entity tags (using If-Match, If-None-Match,
// §        or If-Range) if the entity tags were provided in the stored
// §        response(s) being validated.
// §
// §     *  SHOULD send the Last-Modified value (using If-Modified-Since) if
// §        the request is not for a subrange, a single stored response is
// §        being validated, and that response contains a Last-Modified value.
// §
// §     In most cases, both validators are generated in cache validation
// §     requests, even when entity tags are clearly superior, to allow old
// §     intermediaries that do not understand entity tag preconditions to
// §     respond appropriately.

// SetValidators adds the precondition header fields for validating a stored
// response carrying the given validators. The values are copied verbatim:
// an entity tag becomes If-None-Match and a Last-Modified timestamp becomes
// If-Modified-Since. Absent validators (empty strings) add nothing, leaving
// the request unconditional.
func SetValidators(h http.Header, etag, lastModified string) {
	if etag != "" {
		h.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		h.Set("If-Modified-Since", lastModified)
	}
}
