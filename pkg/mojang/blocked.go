package mojang

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/steviee/nidhogg/internal/transport"
)

// BlockedServers is the list of SHA1 hashes of blocked server addresses.
type BlockedServers struct {
	hashes []string
	set    map[string]struct{}
}

// NewBlockedServers builds a list from hex SHA1 hashes.
func NewBlockedServers(hashes []string) *BlockedServers {
	b := &BlockedServers{set: make(map[string]struct{}, len(hashes))}
	for _, h := range hashes {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if _, ok := b.set[h]; ok {
			continue
		}
		b.set[h] = struct{}{}
		b.hashes = append(b.hashes, h)
	}
	return b
}

// Hashes returns the hashes in server order.
func (b *BlockedServers) Hashes() []string {
	return append([]string(nil), b.hashes...)
}

// Len returns the number of hashes.
func (b *BlockedServers) Len() int {
	return len(b.hashes)
}

// Contains reports whether the exact pattern, such as "*.example.com", is
// on the list.
func (b *BlockedServers) Contains(pattern string) bool {
	_, ok := b.set[hashPattern(pattern)]
	return ok
}

// IsBlocked reports whether host or any wildcard covering it is on the
// list. For "mc.example.com" it checks "mc.example.com", "*.example.com"
// and "*.com". For "1.2.3.4" it checks "1.2.3.4", "1.2.3.*", "1.2.*" and
// "1.*".
func (b *BlockedServers) IsBlocked(host string) bool {
	for _, candidate := range hostPatterns(host) {
		if b.Contains(candidate) {
			return true
		}
	}
	return false
}

func hostPatterns(host string) []string {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if host == "" {
		return nil
	}

	parts := strings.Split(host, ".")
	patterns := []string{host}

	if ip := net.ParseIP(host); ip != nil && ip.To4() != nil {
		for i := len(parts) - 1; i > 0; i-- {
			patterns = append(patterns, strings.Join(parts[:i], ".")+".*")
		}
		return patterns
	}

	for i := 1; i < len(parts); i++ {
		patterns = append(patterns, "*."+strings.Join(parts[i:], "."))
	}
	return patterns
}

func hashPattern(pattern string) string {
	sum := sha1.Sum([]byte(strings.ToLower(pattern)))
	return hex.EncodeToString(sum[:])
}

// GetBlockedServers fetches the blocked server list.
func (c *Client) GetBlockedServers(ctx context.Context) (*BlockedServers, error) {
	resp, err := c.transport.Do(ctx, transport.Request{
		Method:  http.MethodGet,
		BaseURL: c.sessionBaseURL,
		Path:    endpointBlockedServers.Expand(),
	})
	if err != nil {
		return nil, fmt.Errorf("blocked servers: %w", err)
	}
	if _, err := c.classifier.Classify(resp.StatusCode, resp.Body, nil); err != nil {
		return nil, fmt.Errorf("blocked servers: %w", err)
	}

	var hashes []string
	scanner := bufio.NewScanner(bytes.NewReader(resp.Body))
	for scanner.Scan() {
		hashes = append(hashes, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("blocked servers: %w", err)
	}

	return NewBlockedServers(hashes), nil
}
