package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tmash55/oddsmash-sub001/internal/models"
)

// ErrRateLimited is returned when the feed keeps answering 429 after all
// retries are spent.
var ErrRateLimited = fmt.Errorf("odds feed rate limit exceeded")

// ClientConfig holds odds feed client configuration.
type ClientConfig struct {
	BaseURL         string        // e.g., "https://api.the-odds-api.com"
	APIKey          string
	Timeout         time.Duration // per-request timeout
	RetryShortDelay time.Duration // first retry after 429
	RetryLongDelay  time.Duration // second retry after 429
}

// Client talks to the sporting-event and odds feed.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retryShort time.Duration
	retryLong  time.Duration
	logger     zerolog.Logger
}

// NewClient creates a new odds feed client.
func NewClient(config ClientConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		retryShort: config.RetryShortDelay,
		retryLong:  config.RetryLongDelay,
		logger:     logger.With().Str("component", "odds_feed").Logger(),
	}
}

// eventResponse mirrors the feed's event listing entries.
type eventResponse struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

// eventOddsResponse mirrors the feed's per-event odds payload.
type eventOddsResponse struct {
	ID         string                 `json:"id"`
	Bookmakers []models.BookmakerOdds `json:"bookmakers"`
}

// ListEvents returns events for a sport within [from, to].
func (c *Client) ListEvents(ctx context.Context, sportKey string, from, to time.Time) ([]models.GameData, error) {
	endpoint := fmt.Sprintf("%s/v4/sports/%s/events", c.baseURL, url.PathEscape(sportKey))
	query := url.Values{
		"apiKey":           {c.apiKey},
		"dateFormat":       {"iso"},
		"commenceTimeFrom": {from.UTC().Format(time.RFC3339)},
		"commenceTimeTo":   {to.UTC().Format(time.RFC3339)},
	}

	body, err := c.get(ctx, endpoint+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var events []eventResponse
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	games := make([]models.GameData, 0, len(events))
	for _, ev := range events {
		games = append(games, models.GameData{
			SportKey:     ev.SportKey,
			EventID:      ev.ID,
			CommenceTime: ev.CommenceTime,
			HomeTeam:     models.TeamInfo{Name: ev.HomeTeam, Abbreviation: abbreviate(ev.HomeTeam)},
			AwayTeam:     models.TeamInfo{Name: ev.AwayTeam, Abbreviation: abbreviate(ev.AwayTeam)},
			Status:       eventStatus(ev.CommenceTime),
		})
	}

	c.logger.Debug().
		Str("sport_key", sportKey).
		Int("count", len(games)).
		Msg("listed events")
	return games, nil
}

// EventOdds returns bookmaker listings for one event across the given
// markets and bookmakers.
func (c *Client) EventOdds(ctx context.Context, sportKey, eventID string, markets, bookmakers []string) ([]models.BookmakerOdds, error) {
	endpoint := fmt.Sprintf("%s/v4/sports/%s/events/%s/odds",
		c.baseURL, url.PathEscape(sportKey), url.PathEscape(eventID))
	query := url.Values{
		"apiKey":     {c.apiKey},
		"regions":    {"us"},
		"oddsFormat": {"american"},
		"markets":    {strings.Join(markets, ",")},
	}
	if len(bookmakers) > 0 {
		query.Set("bookmakers", strings.Join(bookmakers, ","))
	}

	body, err := c.get(ctx, endpoint+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event odds: %w", err)
	}

	var response eventOddsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode event odds: %w", err)
	}

	c.logger.Debug().
		Str("event_id", eventID).
		Int("bookmakers", len(response.Bookmakers)).
		Msg("fetched event odds")
	return response.Bookmakers, nil
}

// get performs a GET with the 429 retry ladder: short delay, long delay,
// then give up.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	delays := []time.Duration{0, c.retryShort, c.retryLong}

	for attempt, delay := range delays {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			c.logger.Warn().
				Int("attempt", attempt+1).
				Msg("odds feed rate limited, backing off")
			continue
		default:
			return nil, fmt.Errorf("odds feed returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
	}

	return nil, ErrRateLimited
}

// abbreviate builds a fallback abbreviation from a team name's initials.
func abbreviate(name string) string {
	var b strings.Builder
	for _, f := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(f[:1]))
	}
	return b.String()
}

func eventStatus(commence time.Time) string {
	if time.Now().Before(commence) {
		return "upcoming"
	}
	return "live"
}
