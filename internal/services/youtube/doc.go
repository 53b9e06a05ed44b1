// Package youtube talks to the YouTube Data API v3 search endpoint.
//
// Every request that produces an HTTP response is charged against the
// supplied Meter, except quota-class responses (403 and 429) which mean
// the provider already refused the spend. Transient failures are retried
// with exponential backoff; quota and malformed failures surface
// immediately tagged with the matching services sentinel.
package youtube
