package rfc9211

// §  Internet Engineering Task Force (IETF)                     M. Nottingham
// §  Request for Comments: 9211                                        Fastly
// §  Category: Standards Track                                      June 2022
// §  ISSN: 2070-1721
// §
// §                The Cache-Status HTTP Response Header Field
// §
// §  Abstract
// §
// §     To aid debugging, HTTP caches often append header fields to a
// §     response, explaining how they handled the request in an ad hoc
// §     manner.  This specification defines a standard mechanism to do so
// §     that is aligned with HTTP's caching model.
