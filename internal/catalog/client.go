// Package catalog fetches a surah's verses from an alquran.cloud compatible
// API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/llehouerou/tilawa/internal/playback"
)

const (
	DefaultBaseURL = "https://api.alquran.cloud/v1"
	DefaultEdition = "quran-uthmani"

	userAgent = "tilawa/1.0 (https://github.com/llehouerou/tilawa)"
	maxSurah  = 114
)

var (
	// ErrNotFound is returned when the API has no such surah or edition.
	ErrNotFound = errors.New("surah not found")
	// ErrInvalidSurah is returned for numbers outside 1-114.
	ErrInvalidSurah = errors.New("invalid surah number")
)

// Client is an alquran.cloud API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	edition    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// WithBaseURL points the client at another API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithEdition selects the text edition.
func WithEdition(e string) Option { return func(c *Client) { c.edition = e } }

// New creates a new catalog client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: DefaultBaseURL,
		edition: DefaultEdition,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Surah is a surah with its verses.
type Surah struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	EnglishName   string `json:"englishName"`
	NumberOfAyahs int    `json:"numberOfAyahs"`
	Ayahs         []Ayah `json:"ayahs"`
}

// Ayah is one verse.
type Ayah struct {
	Number        int    `json:"number"`
	NumberInSurah int    `json:"numberInSurah"`
	Text          string `json:"text"`
}

type envelope struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Surah fetches surah n in the client's edition.
func (c *Client) Surah(ctx context.Context, n int) (*Surah, error) {
	return c.surah(ctx, n, c.edition)
}

// Items fetches surah n as playback items. When translation is non-empty
// its text is attached to each item.
func (c *Client) Items(ctx context.Context, n int, translation string) (*Surah, []playback.Item, error) {
	s, err := c.Surah(ctx, n)
	if err != nil {
		return nil, nil, err
	}

	var trans map[int]string
	if translation != "" {
		ts, err := c.surah(ctx, n, translation)
		if err != nil {
			return nil, nil, fmt.Errorf("translation %s: %w", translation, err)
		}
		trans = make(map[int]string, len(ts.Ayahs))
		for _, a := range ts.Ayahs {
			trans[a.NumberInSurah] = a.Text
		}
	}

	items := make([]playback.Item, 0, len(s.Ayahs))
	for _, a := range s.Ayahs {
		items = append(items, playback.Item{
			Number:      a.NumberInSurah,
			Text:        a.Text,
			Translation: trans[a.NumberInSurah],
		})
	}
	return s, items, nil
}

func (c *Client) surah(ctx context.Context, n int, edition string) (*Surah, error) {
	if n < 1 || n > maxSurah {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSurah, n)
	}

	reqURL, err := url.JoinPath(c.baseURL, "surah", strconv.Itoa(n), edition)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if env.Code != http.StatusOK {
		return nil, fmt.Errorf("api status %d: %s", env.Code, env.Status)
	}

	var s Surah
	if err := json.Unmarshal(env.Data, &s); err != nil {
		return nil, fmt.Errorf("decode surah: %w", err)
	}
	return &s, nil
}
