// Package resolver maps a verse to the URL of its recitation clip.
package resolver

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidItem is returned for non-positive collection or item numbers.
	ErrInvalidItem = errors.New("resolver: invalid verse reference")
	// ErrUnknownVoice is returned when the voice is not in the configured list.
	ErrUnknownVoice = errors.New("resolver: unknown reciter")
	// ErrNoBaseURL is returned by New when the base URL is empty.
	ErrNoBaseURL = errors.New("resolver: base url is required")
)

// Resolver builds clip URLs of the form <base>/<voice>/<CCC><III>.mp3.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	base   string
	voices []string
	known  map[string]struct{}
}

// New creates a resolver. An empty voices list accepts any voice.
func New(baseURL string, voices []string) (*Resolver, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("resolver: parse base url: %w", err)
	}

	r := &Resolver{
		base:   baseURL,
		voices: append([]string(nil), voices...),
		known:  make(map[string]struct{}, len(voices)),
	}
	for _, v := range voices {
		r.known[v] = struct{}{}
	}
	return r, nil
}

// Resolve returns the streamable URL for the given verse and voice.
func (r *Resolver) Resolve(collectionID, itemNumber int, voice string) (string, error) {
	if collectionID <= 0 || itemNumber <= 0 || collectionID > 999 || itemNumber > 999 {
		return "", fmt.Errorf("%w: %d:%d", ErrInvalidItem, collectionID, itemNumber)
	}
	if voice == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownVoice)
	}
	if len(r.known) > 0 {
		if _, ok := r.known[voice]; !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownVoice, voice)
		}
	}
	file := fmt.Sprintf("%03d%03d.mp3", collectionID, itemNumber)
	return url.JoinPath(r.base, voice, file)
}

// Voices returns the configured voices in configuration order.
func (r *Resolver) Voices() []string {
	return append([]string(nil), r.voices...)
}

// NextVoice returns the voice following current, wrapping around.
// Returns current when no voices are configured.
func (r *Resolver) NextVoice(current string) string {
	if len(r.voices) == 0 {
		return current
	}
	for i, v := range r.voices {
		if v == current {
			return r.voices[(i+1)%len(r.voices)]
		}
	}
	return r.voices[0]
}
