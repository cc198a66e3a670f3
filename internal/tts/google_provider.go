package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dooshek/factreader/internal/audio"
	"github.com/dooshek/factreader/internal/logger"
)

const (
	// maxChunkRunes is the longest text the translate endpoint accepts per request
	maxChunkRunes = 100
	slowSpeed     = "0.24"
	normalSpeed   = "1"
)

// GoogleTTSProvider implements TTSProvider with the Google Translate speech endpoint
type GoogleTTSProvider struct {
	client   *http.Client
	player   audio.Player
	audioDir string

	// baseURL overrides the https://translate.google.<tld> host
	baseURL string
}

// NewGoogleTTSProvider creates a new Google Translate TTS provider
func NewGoogleTTSProvider(player audio.Player, audioDir string) *GoogleTTSProvider {
	return &GoogleTTSProvider{
		client:   &http.Client{Timeout: 15 * time.Second},
		player:   player,
		audioDir: audioDir,
	}
}

// Speak converts text to speech and plays it immediately
func (p *GoogleTTSProvider) Speak(ctx context.Context, text string, opts Options) error {
	audioData, err := p.GetAudio(ctx, text, opts)
	if err != nil {
		return err
	}

	return saveAndPlay(ctx, p.player, p.audioDir, "mp3", audioData, opts.DeleteAfterPlay)
}

// GetAudio returns the MP3 for text, fetched chunk by chunk
func (p *GoogleTTSProvider) GetAudio(ctx context.Context, text string, opts Options) ([]byte, error) {
	chunks := splitText(text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no speakable text")
	}

	logger.Debugf("Generating Google TTS for text (length: %d chars, %d chunks) in %s", len(text), len(chunks), opts.Language)

	var buf bytes.Buffer
	for i, chunk := range chunks {
		data, err := p.fetchChunk(ctx, chunk, i, len(chunks), opts)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}

	logger.Debugf("Generated %s of mp3 audio", formatSize(buf.Len()))
	return buf.Bytes(), nil
}

func (p *GoogleTTSProvider) fetchChunk(ctx context.Context, chunk string, idx, total int, opts Options) ([]byte, error) {
	language := opts.Language
	if language == "" {
		language = "en"
	}
	speed := normalSpeed
	if opts.Slow {
		speed = slowSpeed
	}

	query := url.Values{}
	query.Set("ie", "UTF-8")
	query.Set("client", "tw-ob")
	query.Set("tl", language)
	query.Set("q", chunk)
	query.Set("total", strconv.Itoa(total))
	query.Set("idx", strconv.Itoa(idx))
	query.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))
	query.Set("ttsspeed", speed)

	endpoint := p.endpoint(opts.AccentDomain) + "/translate_tts?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		// A malformed accent domain is a configuration error, not an outage
		return nil, fmt.Errorf("failed to create TTS request for accent domain %q: %v", opts.AccentDomain, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "http://translate.google.com/")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("TTS request failed with status %d", resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %w", ErrSynthesisUnavailable, err)
		}
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	return data, nil
}

func (p *GoogleTTSProvider) endpoint(tld string) string {
	if p.baseURL != "" {
		return strings.TrimRight(p.baseURL, "/")
	}
	if tld == "" {
		tld = "com"
	}
	return "https://translate.google." + tld
}

// GetProviderName returns provider name
func (p *GoogleTTSProvider) GetProviderName() string {
	return "Google Translate TTS"
}

// splitText breaks text into chunks of at most limit runes, preferring word
// boundaries. Words longer than limit are cut.
func splitText(text string, limit int) []string {
	var (
		chunks  []string
		current []rune
	)
	flush := func() {
		if s := strings.TrimSpace(string(current)); s != "" {
			chunks = append(chunks, s)
		}
		current = current[:0]
	}

	for _, word := range strings.FieldsFunc(text, unicode.IsSpace) {
		runes := []rune(word)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		if len(runes) == 0 {
			continue
		}

		needed := len(runes)
		if len(current) > 0 {
			needed++
		}
		if len(current)+needed > limit {
			flush()
		}
		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, runes...)
	}
	flush()

	return chunks
}
