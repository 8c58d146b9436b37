package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/wordbot/internal/config"
	"github.com/example/wordbot/internal/metrics"
)

var (
	// ErrNotFound means the provider answered but does not know the word
	ErrNotFound = errors.New("word not found in dictionary")
	// ErrMalformedResponse means the provider answered with something we cannot use
	ErrMalformedResponse = errors.New("malformed dictionary response")
)

// maxAudioSize bounds a downloaded pronunciation clip
const maxAudioSize = 5 << 20

// Client is a client for the dictionary search API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a dictionary client. Every request is bounded by cfg.Timeout.
func NewClient(cfg config.DictionaryConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Entry is a normalized dictionary answer
type Entry struct {
	Word          string
	Pronunciation string
	Definition    string
	AudioURL      string
}

// SearchResponse represents a response from the search API
type SearchResponse struct {
	StatusCode *int   `json:"status_code"`
	Msg        string `json:"msg"`
	Data       *struct {
		Content       string `json:"content"`
		Pronunciation string `json:"pronunciation"`
		Definition    string `json:"definition"`
		Audio         string `json:"audio"`
	} `json:"data"`
}

// Lookup queries the provider for a single word.
// It returns ErrNotFound when the provider reports a non-zero status.
func (c *Client) Lookup(ctx context.Context, word string) (*Entry, error) {
	start := time.Now()
	entry, err := c.lookup(ctx, word)

	status := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	metrics.RecordDictionaryRequest(status, time.Since(start))

	return entry, err
}

func (c *Client) lookup(ctx context.Context, word string) (*Entry, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid dictionary URL: %w", err)
	}
	query := endpoint.Query()
	query.Set("word", word)
	endpoint.RawQuery = query.Encode()

	req, err := c.newRequest(ctx, endpoint.String())
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dictionary returned status %d: %s", resp.StatusCode, string(body))
	}

	var response SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if response.StatusCode == nil {
		return nil, fmt.Errorf("%w: missing status_code", ErrMalformedResponse)
	}
	if *response.StatusCode != 0 {
		return nil, fmt.Errorf("%w: %s (status %d)", ErrNotFound, response.Msg, *response.StatusCode)
	}
	if response.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}

	entry := &Entry{
		Word:          strings.TrimSpace(response.Data.Content),
		Pronunciation: strings.TrimSpace(response.Data.Pronunciation),
		Definition:    strings.TrimSpace(response.Data.Definition),
		AudioURL:      strings.TrimSpace(response.Data.Audio),
	}
	// a word is never stored without its definition and pronunciation
	if entry.Word == "" || entry.Definition == "" || entry.Pronunciation == "" {
		return nil, fmt.Errorf("%w: incomplete entry for %q", ErrMalformedResponse, word)
	}
	return entry, nil
}

// FetchAudio downloads a pronunciation clip
func (c *Client) FetchAudio(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := c.newRequest(ctx, audioURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audio download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) > maxAudioSize {
		return nil, fmt.Errorf("audio larger than %d bytes", maxAudioSize)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}
