package mojang

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/steviee/nidhogg/pkg/data"
)

// ProfileResult is the outcome of one lookup of a batch.
type ProfileResult struct {
	// ID is the requested profile id as given by the caller.
	ID      string
	Profile *data.ProfileWithTextures
	Err     error
}

// GetProfiles fetches several profiles concurrently. Duplicate ids, with or
// without hyphens, are requested once. The result has one entry per
// distinct id in input order. A failed lookup does not cancel the others.
func (c *Client) GetProfiles(ctx context.Context, ids []string) []ProfileResult {
	results := make([]ProfileResult, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		key := data.TrimUUID(id)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, ProfileResult{ID: id})
	}

	slog.Debug("mojang batch profile lookup",
		"requested", len(ids),
		"distinct", len(results),
		"concurrency", c.batchConcurrency)

	var g errgroup.Group
	g.SetLimit(c.batchConcurrency)

	for i := range results {
		result := &results[i]
		g.Go(func() error {
			reqCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			result.Profile, result.Err = c.GetProfile(reqCtx, result.ID)
			if result.Err != nil {
				slog.Debug("mojang batch profile lookup failed",
					"id", result.ID,
					"error", result.Err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
