package streams

import (
	"context"
	"log/slog"
	"strings"

	"podscout/internal/logging"
)

// Format is one downloadable rendition reported by the media-info service.
// Field names follow the extractor's JSON output.
type Format struct {
	FormatID string   `json:"format_id"`
	ACodec   string   `json:"acodec"`
	VCodec   string   `json:"vcodec"`
	ABR      *float64 `json:"abr"`
	URL      string   `json:"url"`
}

// Info is the media-info document for one video.
type Info struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Formats []Format `json:"formats"`
}

// audioOnly reports whether the format carries audio and no video track.
func (f Format) audioOnly() bool {
	acodec := strings.TrimSpace(f.ACodec)
	vcodec := strings.TrimSpace(f.VCodec)
	if acodec == "" || acodec == "none" {
		return false
	}
	return vcodec == "" || vcodec == "none"
}

// SelectAudioURL picks the playback URL for an info document.
//
// The preferred pick is the audio-only format with the highest reported
// bitrate; formats without an abr value never qualify. A document with no
// formats at all may still carry a top-level URL, and a document whose
// formats all carry video (or report no bitrate) falls back to the last
// listed format. When none of those produce a URL the stream is absent.
func SelectAudioURL(info Info) (string, bool) {
	var best *Format
	for i := range info.Formats {
		format := &info.Formats[i]
		if !format.audioOnly() || format.ABR == nil || strings.TrimSpace(format.URL) == "" {
			continue
		}
		if best == nil || *format.ABR > *best.ABR {
			best = format
		}
	}
	if best != nil {
		return best.URL, true
	}

	if len(info.Formats) == 0 {
		if url := strings.TrimSpace(info.URL); url != "" {
			return url, true
		}
		return "", false
	}

	last := info.Formats[len(info.Formats)-1]
	if url := strings.TrimSpace(last.URL); url != "" {
		return url, true
	}
	return "", false
}

// InfoFetcher is the slice of the media-info provider the resolver needs.
type InfoFetcher interface {
	Fetch(ctx context.Context, videoID string) (Info, error)
}

// Stream is a resolved playback URL for one video.
type Stream struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url"`
}

// Resolver resolves candidate videos into playable audio stream URLs.
type Resolver struct {
	fetcher InfoFetcher
	logger  *slog.Logger
}

// NewResolver builds a resolver over the supplied fetcher.
func NewResolver(fetcher InfoFetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{fetcher: fetcher, logger: logger}
}

// Resolve fetches media info for the video and picks its stream URL.
// Failures are absorbed: an unreachable provider or a URL-less document
// both report the stream as absent.
func (r *Resolver) Resolve(ctx context.Context, videoID string) (Stream, bool) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" || r.fetcher == nil {
		return Stream{}, false
	}
	info, err := r.fetcher.Fetch(ctx, videoID)
	if err != nil {
		r.logger.Warn("media info fetch failed",
			logging.String("video_id", videoID),
			logging.Error(err))
		return Stream{}, false
	}
	url, ok := SelectAudioURL(info)
	if !ok {
		r.logger.Debug("no usable stream", logging.String("video_id", videoID))
		return Stream{}, false
	}
	return Stream{VideoID: videoID, Title: info.Title, URL: url}, true
}
