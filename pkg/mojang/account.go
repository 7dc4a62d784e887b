package mojang

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/steviee/nidhogg/internal/transport"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/classify"
	"github.com/steviee/nidhogg/pkg/data"
)

// MaxNamesPerRequest is the maximum number of names GetUUIDsByNames
// accepts.
const MaxNamesPerRequest = 100

// GetUUIDByUsername looks up the profile that held name at the given time,
// or currently if at is nil. It returns nil and no error when no account
// held the name.
func (c *Client) GetUUIDByUsername(ctx context.Context, name string, at *time.Time) (*data.UUIDEntry, error) {
	if name == "" {
		return nil, apierr.InvalidArgument("username cannot be empty")
	}

	req := transport.Request{
		Method:  http.MethodGet,
		BaseURL: c.apiBaseURL,
		Path:    endpointUUIDByName.Expand(name),
	}
	if at != nil {
		req.Query = url.Values{"at": []string{strconv.FormatInt(at.Unix(), 10)}}
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", name, err)
	}

	// The API answers 404 where it used to answer 204.
	if resp.StatusCode == http.StatusNotFound {
		slog.Debug("mojang username not found", "username", name)
		return nil, nil
	}

	var entry data.UUIDEntry
	outcome, err := c.classifier.Classify(resp.StatusCode, resp.Body, &entry)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", name, err)
	}
	if outcome == classify.NoContent {
		slog.Debug("mojang username not found", "username", name)
		return nil, nil
	}

	slog.Debug("mojang UUID lookup success",
		"username", name,
		"uuid", entry.ID)

	return &entry, nil
}

// GetUUIDsByNames looks up the current profiles of up to
// MaxNamesPerRequest names. Names without a profile are omitted. The
// result follows the order of names.
func (c *Client) GetUUIDsByNames(ctx context.Context, names []string) ([]data.UUIDEntry, error) {
	if len(names) > MaxNamesPerRequest {
		return nil, apierr.InvalidArgument("cannot request more than %d names, got %d", MaxNamesPerRequest, len(names))
	}
	for i, name := range names {
		if name == "" {
			return nil, apierr.InvalidArgument("name at index %d is empty", i)
		}
	}
	if len(names) == 0 {
		return []data.UUIDEntry{}, nil
	}

	var entries []data.UUIDEntry
	_, err := c.callJSON(ctx, transport.Request{
		Method:  http.MethodPost,
		BaseURL: c.apiBaseURL,
		Path:    endpointUUIDsByNames.Expand(),
	}, names, &entries)
	if err != nil {
		return nil, fmt.Errorf("lookup names: %w", err)
	}

	order := make(map[string]int, len(names))
	for i, name := range names {
		key := strings.ToLower(name)
		if _, ok := order[key]; !ok {
			order[key] = i
		}
	}
	position := func(e data.UUIDEntry) int {
		if i, ok := order[strings.ToLower(e.Name)]; ok {
			return i
		}
		return len(names)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return position(entries[i]) < position(entries[j])
	})

	if entries == nil {
		entries = []data.UUIDEntry{}
	}
	return entries, nil
}

// GetNameHistory returns the names of a profile, oldest first.
func (c *Client) GetNameHistory(ctx context.Context, id string) ([]data.NameHistoryEntry, error) {
	trimmed, err := parseProfileID(id)
	if err != nil {
		return nil, err
	}

	var history []data.NameHistoryEntry
	_, err = c.call(ctx, transport.Request{
		Method:  http.MethodGet,
		BaseURL: c.apiBaseURL,
		Path:    endpointNameHistory.Expand(trimmed),
	}, &history)
	if err != nil {
		return nil, fmt.Errorf("name history %s: %w", id, err)
	}

	sort.SliceStable(history, func(i, j int) bool {
		a, b := history[i].ChangedToAt, history[j].ChangedToAt
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return *a < *b
		}
	})
	return history, nil
}

// GetProfile returns the profile with its textures. The textures are
// decoded on first access.
func (c *Client) GetProfile(ctx context.Context, id string) (*data.ProfileWithTextures, error) {
	trimmed, err := parseProfileID(id)
	if err != nil {
		return nil, err
	}

	var profile data.SkinProfile
	outcome, err := c.call(ctx, transport.Request{
		Method:  http.MethodGet,
		BaseURL: c.sessionBaseURL,
		Path:    endpointProfile.Expand(trimmed),
	}, &profile)
	if apierr.StatusCode(err) == http.StatusNotFound {
		return nil, fmt.Errorf("profile %s: %w", id, ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, err)
	}
	if outcome == classify.NoContent {
		return nil, fmt.Errorf("profile %s: %w", id, ErrProfileNotFound)
	}

	return data.NewProfileWithTextures(profile), nil
}

// parseProfileID validates a profile UUID with or without hyphens and
// returns it without hyphens.
func parseProfileID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", apierr.InvalidArgument("invalid profile id %q", id)
	}
	return data.TrimUUID(parsed.String()), nil
}
