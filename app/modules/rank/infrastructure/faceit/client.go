// Package faceit is a minimal client for the FACEIT Data API v4 players endpoints.
package faceit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned for any 4xx response.
	ErrNotFound = errors.New("faceit player not found")
	// ErrUnavailable wraps every other failure (transport errors, 5xx, bad bodies).
	ErrUnavailable = errors.New("faceit api unavailable")
)

// Player is the subset of the player document the bot consumes.
type Player struct {
	ID         string
	Nickname   string
	Elo        *int
	SkillLevel *int
}

type playerDocument struct {
	PlayerID string                  `json:"player_id"`
	Nickname string                  `json:"nickname"`
	Games    map[string]gameDocument `json:"games"`
}

type gameDocument struct {
	FaceitElo  *int `json:"faceit_elo"`
	SkillLevel *int `json:"skill_level"`
}

// Client talks to the FACEIT Data API with a bearer API key.
type Client struct {
	baseURL string
	game    string
	http    *http.Client
	limiter *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPTransport replaces the base transport under the bearer token transport.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if t, ok := c.http.Transport.(*oauth2.Transport); ok {
			t.Base = rt
		}
	}
}

// WithLimiter overrides the request limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient builds a client for game (e.g. "cs2"), allowing requestsPerSecond calls.
func NewClient(baseURL, apiKey, game string, requestsPerSecond float64, opts ...Option) *Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	c := &Client{
		baseURL: baseURL,
		game:    game,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: &oauth2.Transport{Source: source, Base: http.DefaultTransport},
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PlayerByNickname looks a player up by display name.
func (c *Client) PlayerByNickname(ctx context.Context, nickname string) (*Player, error) {
	q := url.Values{}
	q.Set("nickname", nickname)
	q.Set("game", c.game)
	return c.getPlayer(ctx, c.baseURL+"/players?"+q.Encode())
}

// PlayerByID looks a player up by stable player id.
func (c *Client) PlayerByID(ctx context.Context, playerID string) (*Player, error) {
	return c.getPlayer(ctx, c.baseURL+"/players/"+url.PathEscape(playerID))
}

func (c *Client) getPlayer(ctx context.Context, endpoint string) (*Player, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var doc playerDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to decode player: %w", ErrUnavailable, err)
	}

	player := &Player{ID: doc.PlayerID, Nickname: doc.Nickname}
	if g, ok := doc.Games[c.game]; ok {
		player.Elo = g.FaceitElo
		player.SkillLevel = g.SkillLevel
	}
	return player, nil
}
