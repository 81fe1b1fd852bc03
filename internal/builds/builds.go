// Package builds enumerates the (platform, build) pairs expected to have
// results in a sync cycle.
package builds

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/agentstation/resultsync/internal/transport"
	"github.com/agentstation/resultsync/pkg/errors"
	"github.com/agentstation/resultsync/pkg/logging"
)

// Build is one expected (platform, build) pair.
type Build struct {
	Platform string `json:"platform" yaml:"platform" mapstructure:"platform"`
	Build    string `json:"build" yaml:"build" mapstructure:"build"`
}

// Enumerator supplies the expected builds.
type Enumerator interface {
	Builds(ctx context.Context) ([]Build, error)
}

// Static is a fixed list of builds.
type Static []Build

// Builds implements Enumerator.
func (s Static) Builds(context.Context) ([]Build, error) {
	out := make([]Build, len(s))
	copy(out, s)
	return out, nil
}

// HTTP reads the versions document served at URL:
//
//	{"ubuntu": {"ubuntu_manual_2.4": [...commands], ...}, ...}
//
// Build keys are prefixed with the platform and an underscore; the prefix is
// stripped (ubuntu_manual_2.4 -> manual_2.4).
type HTTP struct {
	URL    string
	Client *transport.Client
}

// NewHTTP returns an HTTP enumerator using client, or an unauthenticated
// client when nil.
func NewHTTP(url string, client *transport.Client) *HTTP {
	if client == nil {
		client = transport.New(nil, "")
	}
	return &HTTP{URL: url, Client: client}
}

// Builds implements Enumerator. Results are sorted by platform then build.
func (h *HTTP) Builds(ctx context.Context) ([]Build, error) {
	if h.URL == "" {
		return nil, errors.NewConfigError("commands_url", "URL is required", nil)
	}

	var doc map[string]map[string]json.RawMessage
	if err := h.Client.GetJSON(ctx, h.URL, &doc); err != nil {
		return nil, err
	}

	var out []Build
	for platform, versions := range doc {
		for key := range versions {
			out = append(out, Build{Platform: platform, Build: StripPlatform(key)})
		}
		logging.Ctx(logging.WithPlatform(ctx, platform)).Debug().
			Int("builds", len(versions)).Msg("Expected builds listed")
	}
	Sort(out)
	return out, nil
}

// StripPlatform removes the leading "<platform>_" segment of a build key.
// Keys without an underscore are returned unchanged rather than reduced to
// an empty build name, so a malformed versions entry still names a build.
func StripPlatform(key string) string {
	if _, rest, ok := strings.Cut(key, "_"); ok {
		return rest
	}
	return key
}

// Chain concatenates the builds of several enumerators, dropping duplicates
// and keeping first-seen order.
type Chain []Enumerator

// Builds implements Enumerator.
func (c Chain) Builds(ctx context.Context) ([]Build, error) {
	seen := make(map[Build]bool)
	var out []Build
	for _, e := range c {
		list, err := e.Builds(ctx)
		if err != nil {
			return nil, err
		}
		for _, b := range list {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	return out, nil
}

// Sort orders builds by platform then build.
func Sort(list []Build) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Platform != list[j].Platform {
			return list[i].Platform < list[j].Platform
		}
		return list[i].Build < list[j].Build
	})
}
