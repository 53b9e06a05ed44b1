// Package streams resolves candidate videos into playable audio URLs via
// the local media-info service. Selection prefers the highest-bitrate
// audio-only rendition and degrades through the documented fallbacks
// before reporting a stream as absent.
package streams
