// Package balances fetches the user's loyalty program balances. Balances are
// an external input to affordability resolution, never core state: the live
// endpoint is preferred, a cached copy bridges outages, and a local snapshot
// file is the offline floor.
package balances

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aristath/voyager/internal/clientdata"
	"github.com/aristath/voyager/internal/domain"
	"github.com/rs/zerolog"
)

// Client fetches program balances for one account.
type Client struct {
	baseURL      string
	apiKey       string
	account      string
	snapshotPath string
	client       *http.Client
	cacheRepo    *clientdata.Repository
	log          zerolog.Logger
}

// NewClient creates a new balances client. snapshotPath may name a local JSON
// file used when both the endpoint and the cache come up empty.
func NewClient(baseURL, apiKey, account, snapshotPath string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		account:      account,
		snapshotPath: snapshotPath,
		client:       &http.Client{Timeout: 15 * time.Second},
		cacheRepo:    cacheRepo,
		log:          log.With().Str("client", "balances").Logger(),
	}
}

type balancesResponse struct {
	Account  string                  `json:"account"`
	Balances []domain.ProgramBalance `json:"balances"`
}

// Fetch returns the current balances, preferring live data. Failures degrade
// through the cache (stale reads allowed) and then the snapshot file; only
// when all three miss does Fetch return an error.
func (c *Client) Fetch(ctx context.Context) ([]domain.ProgramBalance, error) {
	live, err := c.fetchLive(ctx)
	if err == nil {
		if c.cacheRepo != nil {
			if storeErr := c.cacheRepo.Store("balances", c.account, balancesResponse{Account: c.account, Balances: live}, clientdata.TTLBalances); storeErr != nil {
				c.log.Warn().Err(storeErr).Msg("Failed to cache balances")
			}
		}
		return live, nil
	}
	c.log.Warn().Err(err).Msg("Live balance fetch failed, falling back")

	if c.cacheRepo != nil {
		// Stale reads are acceptable here: an old balance beats no balance.
		if data, cacheErr := c.cacheRepo.Get("balances", c.account); cacheErr == nil && data != nil {
			var cached balancesResponse
			if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil && len(cached.Balances) > 0 {
				c.log.Info().Int("programs", len(cached.Balances)).Msg("Using cached balances")
				return cached.Balances, nil
			}
		}
	}

	if c.snapshotPath != "" {
		snap, snapErr := c.loadSnapshot()
		if snapErr == nil {
			c.log.Info().Int("programs", len(snap)).Str("path", c.snapshotPath).Msg("Using balance snapshot file")
			return snap, nil
		}
		c.log.Warn().Err(snapErr).Msg("Snapshot load failed")
	}

	return nil, fmt.Errorf("no balance source available: %w", err)
}

func (c *Client) fetchLive(ctx context.Context) ([]domain.ProgramBalance, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, fmt.Errorf("balances endpoint not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/accounts/"+c.account+"/balances", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result balancesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	valid := make([]domain.ProgramBalance, 0, len(result.Balances))
	for _, b := range result.Balances {
		if b.Program == "" || b.Balance < 0 {
			continue
		}
		valid = append(valid, b)
	}
	return valid, nil
}

func (c *Client) loadSnapshot() ([]domain.ProgramBalance, error) {
	data, err := os.ReadFile(c.snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap balancesResponse
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if len(snap.Balances) == 0 {
		return nil, fmt.Errorf("snapshot contains no balances")
	}
	return snap.Balances, nil
}
