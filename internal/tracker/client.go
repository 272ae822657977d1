package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// basicAuthPassword is the fixed password the tracking service expects when
// authenticating with an API token as the username.
const basicAuthPassword = "api_token"

// Config holds tracking-service connection settings
type Config struct {
	APIURL     string `toml:"api_url"`
	ReportsURL string `toml:"reports_url"`
	Token      string `toml:"-"`
	Workspace  string `toml:"workspace"`
	UserAgent  string `toml:"user_agent"`
}

// Client is a tracking-service API client. It is bound to a single workspace
// after a successful Handshake and is not safe for concurrent use.
type Client struct {
	config      Config
	workspaceID int64
	http        *http.Client
}

// NewClient creates a tracking-service client. Handshake must be called
// before any workspace-scoped operation.
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// WorkspaceID returns the workspace id resolved by Handshake.
func (c *Client) WorkspaceID() int64 {
	return c.workspaceID
}

// Handshake verifies the API token against the me endpoint and resolves the
// configured workspace name to its id. The workspace must be one the token's
// user administers.
func (c *Client) Handshake(ctx context.Context) error {
	var response struct {
		Data struct {
			Workspaces []workspace `json:"workspaces"`
		} `json:"data"`
	}

	err := c.get(ctx, c.config.APIURL+"/me", nil, &response)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && (reqErr.Status == http.StatusUnauthorized || reqErr.Status == http.StatusForbidden) {
			return ErrAuthentication
		}
		return err
	}

	for _, ws := range response.Data.Workspaces {
		if ws.Admin && ws.Name == c.config.Workspace {
			c.workspaceID = ws.ID
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrWorkspaceNotFound, c.config.Workspace)
}

// ListProjects returns all projects in the bound workspace.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	endpoint := fmt.Sprintf("%s/workspaces/%d/projects", c.config.APIURL, c.workspaceID)

	var projects []Project
	if err := c.get(ctx, endpoint, nil, &projects); err != nil {
		return nil, err
	}

	return projects, nil
}

// CreateProject creates a project with the given name in the bound workspace.
func (c *Client) CreateProject(ctx context.Context, name string) (Project, error) {
	body := map[string]any{
		"project": map[string]any{
			"name":  name,
			"wid":   c.workspaceID,
			"color": "13",
		},
	}

	var response struct {
		Data Project `json:"data"`
	}

	err := c.send(ctx, http.MethodPost, c.config.APIURL+"/projects", body, &response)
	if err != nil {
		return Project{}, err
	}

	return response.Data, nil
}

// ArchiveProject deactivates a project. The project is never deleted.
func (c *Client) ArchiveProject(ctx context.Context, id int64) error {
	endpoint := fmt.Sprintf("%s/projects/%d", c.config.APIURL, id)

	body := map[string]any{
		"project": map[string]any{
			"active": false,
		},
	}

	return c.send(ctx, http.MethodPut, endpoint, body, nil)
}

// Report fetches the first page of the detailed report for a single day,
// ordered by start date ascending. projectIDs filters by project; the
// sentinel "0" selects entries with no associated project, and the empty
// string applies no filter.
func (c *Client) Report(ctx context.Context, day time.Time, projectIDs string) (ReportPage, error) {
	date := day.Format("2006-01-02")

	query := url.Values{}
	query.Set("user_agent", c.config.UserAgent)
	query.Set("workspace_id", strconv.FormatInt(c.workspaceID, 10))
	query.Set("order_field", "date")
	query.Set("order_desc", "off")
	query.Set("rounding", "off")
	query.Set("display_hours", "minutes")
	query.Set("page", "1")
	query.Set("since", date)
	query.Set("until", date)
	if projectIDs != "" {
		query.Set("project_ids", projectIDs)
	}

	var page ReportPage
	if err := c.get(ctx, c.config.ReportsURL+"/details", query, &page); err != nil {
		return ReportPage{}, err
	}

	return page, nil
}

// TimeEntries fetches the raw time entries for a single day.
func (c *Client) TimeEntries(ctx context.Context, day time.Time) ([]TimeEntry, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())

	query := url.Values{}
	query.Set("start_date", start.Format(time.RFC3339))
	query.Set("end_date", end.Format(time.RFC3339))

	var entries []TimeEntry
	if err := c.get(ctx, c.config.APIURL+"/time_entries", query, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.SetBasicAuth(c.config.Token, basicAuthPassword)
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tracker: request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RequestError{Endpoint: req.URL.Path, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tracker: failed to decode response from %s: %w", req.URL.Path, err)
	}

	return nil
}
