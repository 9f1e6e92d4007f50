package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

// urlPattern matches the supported video-host URL shapes. Validation runs
// before any network I/O so malformed submissions fail fast.
var urlPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?(?:youtube\.com/(?:watch\?\S*v=|shorts/|embed/|live/)|youtu\.be/)[A-Za-z0-9_-]{11}`)

// maxAudioBytes bounds the audio stream buffered into memory for transcription.
const maxAudioBytes = 200 << 20

// ErrNoAudioStream is returned when a video exposes no audio-only format.
var ErrNoAudioStream = errors.New("video: no audio stream available")

// Fetcher downloads audio-only streams from the supported video host.
type Fetcher struct {
	client youtube.Client
}

// NewFetcher builds a Fetcher. A nil HTTP client uses a default with a long
// timeout; audio downloads can take a while.
func NewFetcher(httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Fetcher{client: youtube.Client{HTTPClient: httpClient}}
}

// ValidateURL reports whether the URL matches the expected video-host pattern.
func (f *Fetcher) ValidateURL(url string) bool {
	return ValidateURL(url)
}

// ValidateURL reports whether the URL matches the expected video-host pattern.
func ValidateURL(url string) bool {
	return urlPattern.MatchString(strings.TrimSpace(url))
}

// FetchAudio resolves the video, picks the best available audio-only format,
// and buffers the whole stream into memory. It returns the bytes and the
// stream's MIME type.
func (f *Fetcher) FetchAudio(ctx context.Context, url string) ([]byte, string, error) {
	if !ValidateURL(url) {
		return nil, "", fmt.Errorf("video: invalid source url %q", url)
	}

	v, err := f.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, "", fmt.Errorf("video: resolve %s: %w", url, err)
	}

	formats := v.Formats.WithAudioChannels().Type("audio")
	if len(formats) == 0 {
		return nil, "", ErrNoAudioStream
	}
	sort.SliceStable(formats, func(i, j int) bool {
		return formats[i].Bitrate > formats[j].Bitrate
	})
	format := &formats[0]

	stream, _, err := f.client.GetStreamContext(ctx, v, format)
	if err != nil {
		return nil, "", fmt.Errorf("video: open audio stream: %w", err)
	}
	defer func() {
		_ = stream.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(stream, maxAudioBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("video: read audio stream: %w", err)
	}
	if len(data) > maxAudioBytes {
		return nil, "", errors.New("video: audio stream exceeds size limit")
	}
	return data, audioMIME(format.MimeType), nil
}

// audioMIME strips codec parameters from a format MIME type.
func audioMIME(mimeType string) string {
	mimeType = strings.TrimSpace(strings.Split(mimeType, ";")[0])
	if mimeType == "" {
		return "audio/mp4"
	}
	return mimeType
}
