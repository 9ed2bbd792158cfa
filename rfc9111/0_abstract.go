package rfc9111

// §  Internet Engineering Task Force (IETF)                 R. Fielding, Ed.
// §  Request for Comments: 9111                                        Adobe
// §  STD: 98                                               M. Nottingham, Ed.
// §  Obsoletes: 7234                                                  Fastly
// §  Category: Standards Track                              J. Reschke, Ed.
// §  ISSN: 2070-1721                                              greenbytes
// §                                                                June 2022
// §
// §                                HTTP Caching
// §
// §  Abstract
// §
// §     The Hypertext Transfer Protocol (HTTP) is a stateless application-
// §     level protocol for distributed, collaborative, hypertext information
// §     systems.  This document defines HTTP caches and the associated header
// §     fields that control cache behavior or indicate cacheable response
// §     messages.
