package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"brewcost/internal/config"
)

// Client talks to a Square-compatible point-of-sale API on behalf of a
// single location. All report methods go through the read-through cache so
// repeated dashboard loads do not hammer the API.
type Client struct {
	baseURL    string
	token      string
	locationID string

	httpClient *http.Client
	cache      *Cache
}

// New builds a POS client from configuration. The cache directory is
// created eagerly so a bad path fails at startup rather than on first use.
func New(cfg config.POSConfig) (*Client, error) {
	cache, err := NewCache(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.AccessToken,
		locationID: cfg.LocationID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
	}, nil
}

// LocationID reports the configured location, used by status endpoints.
func (c *Client) LocationID() string { return c.locationID }

type apiError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

func (c *Client) call(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pos request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read pos response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Errors []apiError `json:"errors"`
		}
		if json.Unmarshal(raw, &failure) == nil && len(failure.Errors) > 0 {
			e := failure.Errors[0]
			return nil, fmt.Errorf("pos api %s: %s %s", resp.Status, e.Code, e.Detail)
		}
		return nil, fmt.Errorf("pos api %s", resp.Status)
	}

	return raw, nil
}

// Location is the subset of the POS location object the dashboard uses.
type Location struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Currency string `json:"currency"`
}

// Locations lists the locations visible to the access token.
func (c *Client) Locations(ctx context.Context) ([]Location, error) {
	raw, err := c.call(ctx, http.MethodGet, "/v2/locations", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Locations []Location `json:"locations"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	return out.Locations, nil
}

// TeamMember identifies an active employee at the location.
type TeamMember struct {
	ID        string `json:"id"`
	GivenName string `json:"given_name"`
	Surname   string `json:"family_name"`
	Email     string `json:"email_address"`
	Status    string `json:"status"`
}

func (m TeamMember) DisplayName() string {
	switch {
	case m.GivenName != "" && m.Surname != "":
		return m.GivenName + " " + m.Surname
	case m.GivenName != "":
		return m.GivenName
	case m.Surname != "":
		return m.Surname
	}
	return m.ID
}

func (c *Client) teamMembers(ctx context.Context) ([]TeamMember, error) {
	body := map[string]any{
		"query": map[string]any{
			"filter": map[string]any{"status": "ACTIVE"},
		},
		"limit": 200,
	}
	raw, err := c.call(ctx, http.MethodPost, "/v2/team-members/search", body)
	if err != nil {
		return nil, err
	}
	var out struct {
		TeamMembers []TeamMember `json:"team_members"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode team members: %w", err)
	}
	return out.TeamMembers, nil
}

type job struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	HourlyRate *money `json:"hourly_rate"`
}

// jobs pages through the job definitions (roles) configured for the account.
func (c *Client) jobs(ctx context.Context) ([]job, error) {
	var all []job
	cursor := ""
	for {
		path := "/v2/team/jobs"
		if cursor != "" {
			path += "?cursor=" + url.QueryEscape(cursor)
		}
		raw, err := c.call(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		var out struct {
			Jobs   []job  `json:"jobs"`
			Cursor string `json:"cursor"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode jobs: %w", err)
		}
		all = append(all, out.Jobs...)
		if out.Cursor == "" {
			return all, nil
		}
		cursor = out.Cursor
	}
}

type money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m money) dollars() float64 { return float64(m.Amount) / 100 }

type timecard struct {
	ID           string `json:"id"`
	TeamMemberID string `json:"team_member_id"`
	Start        string `json:"start_at"`
	End          string `json:"end_at"`
	Wage         struct {
		Title      string `json:"title"`
		HourlyRate money  `json:"hourly_rate"`
	} `json:"wage"`
	Breaks []struct {
		Start string `json:"start_at"`
		End   string `json:"end_at"`
		Paid  bool   `json:"is_paid"`
	} `json:"breaks"`
}

// timecards pages through every closed timecard overlapping the window.
func (c *Client) timecards(ctx context.Context, start, end time.Time) ([]timecard, error) {
	var cards []timecard
	cursor := ""
	for {
		body := map[string]any{
			"query": map[string]any{
				"filter": map[string]any{
					"location_ids": []string{c.locationID},
					"start": map[string]any{
						"start_at": start.UTC().Format(time.RFC3339),
						"end_at":   end.UTC().Format(time.RFC3339),
					},
					"status": "CLOSED",
				},
				"sort": map[string]any{"field": "START_AT", "order": "ASC"},
			},
			"limit": 200,
		}
		if cursor != "" {
			body["cursor"] = cursor
		}
		raw, err := c.call(ctx, http.MethodPost, "/v2/labor/timecards/search", body)
		if err != nil {
			return nil, err
		}
		var out struct {
			Timecards []timecard `json:"timecards"`
			Cursor    string     `json:"cursor"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode timecards: %w", err)
		}
		cards = append(cards, out.Timecards...)
		if out.Cursor == "" {
			return cards, nil
		}
		cursor = out.Cursor
	}
}

type orderLineItem struct {
	Name         string `json:"name"`
	Quantity     string `json:"quantity"`
	CatalogID    string `json:"catalog_object_id"`
	GrossSales   money  `json:"gross_sales_money"`
	TotalMoney   money  `json:"total_money"`
	VariationKey string `json:"variation_name"`
}

type order struct {
	ID        string          `json:"id"`
	CreatedAt string          `json:"created_at"`
	State     string          `json:"state"`
	Total     money           `json:"total_money"`
	LineItems []orderLineItem `json:"line_items"`
}

// orders pages through completed orders created inside the window.
func (c *Client) orders(ctx context.Context, start, end time.Time) ([]order, error) {
	var all []order
	cursor := ""
	for {
		body := map[string]any{
			"location_ids": []string{c.locationID},
			"query": map[string]any{
				"filter": map[string]any{
					"date_time_filter": map[string]any{
						"created_at": map[string]any{
							"start_at": start.UTC().Format(time.RFC3339),
							"end_at":   end.UTC().Format(time.RFC3339),
						},
					},
					"state_filter": map[string]any{"states": []string{"COMPLETED"}},
				},
				"sort": map[string]any{"sort_field": "CREATED_AT", "sort_order": "ASC"},
			},
			"limit": 500,
		}
		if cursor != "" {
			body["cursor"] = cursor
		}
		raw, err := c.call(ctx, http.MethodPost, "/v2/orders/search", body)
		if err != nil {
			return nil, err
		}
		var out struct {
			Orders []order `json:"orders"`
			Cursor string  `json:"cursor"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
		all = append(all, out.Orders...)
		if out.Cursor == "" {
			return all, nil
		}
		cursor = out.Cursor
	}
}

type catalogObject struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	ItemData struct {
		Name       string `json:"name"`
		CategoryID string `json:"category_id"`
	} `json:"item_data"`
	CategoryData struct {
		Name string `json:"name"`
	} `json:"category_data"`
}

// catalogObjects lists items and categories so product-mix rows can be
// grouped by category name instead of opaque ids.
func (c *Client) catalogObjects(ctx context.Context) ([]catalogObject, error) {
	var all []catalogObject
	cursor := ""
	for {
		query := url.Values{"types": {"ITEM,CATEGORY"}}
		if cursor != "" {
			query.Set("cursor", cursor)
		}
		raw, err := c.call(ctx, http.MethodGet, "/v2/catalog/list?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}
		var out struct {
			Objects []catalogObject `json:"objects"`
			Cursor  string          `json:"cursor"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		all = append(all, out.Objects...)
		if out.Cursor == "" {
			return all, nil
		}
		cursor = out.Cursor
	}
}
