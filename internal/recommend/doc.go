// Package recommend merges per-keyword search results into a single
// bounded candidate list. Fresh cache entries short-circuit the network,
// failed keywords are skipped rather than failing the whole call, and the
// merged list is deduplicated by video id.
package recommend
