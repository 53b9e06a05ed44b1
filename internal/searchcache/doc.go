// Package searchcache is the persistent query cache in front of the search
// provider.
//
// Keys are normalized query strings; values are timestamped candidate lists.
// The Store interface keeps the backing implementation swappable: a JSON
// file store and a SQLite store ship here, selected by configuration.
// Freshness (TTL) is decided by callers — Get always returns what is stored.
package searchcache
