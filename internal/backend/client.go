package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Standard errors
var (
	ErrAuthentication = errors.New("backend: authentication failed, check credentials")
	ErrUserNotFound   = errors.New("backend: user not found")
)

// RequestError reports a failed RPC call: either a non-success HTTP status
// or an error object in the RPC response.
type RequestError struct {
	Method  string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s failed: %s", e.Method, e.Message)
	}
	return fmt.Sprintf("backend: %s failed with status %d", e.Method, e.Status)
}

// Config holds backend connection settings
type Config struct {
	URL      string `toml:"url"`
	Database string `toml:"database"`
	Login    string `toml:"-"`
	Password string `toml:"-"`
}

// Client is a backend JSON-RPC client. Login must be called before any
// record operation. Not safe for concurrent use.
type Client struct {
	config Config
	uid    int64
	http   *http.Client
}

// NewClient creates a backend client.
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      string    `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcError struct {
	Message string `json:"message"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC round trip and decodes the result into out.
func (c *Client) call(ctx context.Context, service, method string, args []any, out any) error {
	request := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: rpcParams{
			Service: service,
			Method:  method,
			Args:    args,
		},
		ID: uuid.NewString(),
	}

	encoded, err := json.Marshal(request)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL+"/jsonrpc", bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s.%s request failed: %w", service, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RequestError{Method: service + "." + method, Status: resp.StatusCode}
	}

	var response rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("backend: failed to decode %s.%s response: %w", service, method, err)
	}

	if response.Error != nil {
		message := response.Error.Data.Message
		if message == "" {
			message = response.Error.Message
		}
		return &RequestError{Method: service + "." + method, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(response.Result, out); err != nil {
		return fmt.Errorf("backend: failed to decode %s.%s result: %w", service, method, err)
	}

	return nil
}

// executeKw calls a record-model method through the object service.
func (c *Client) executeKw(ctx context.Context, model, method string, args []any, kwargs map[string]any, out any) error {
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	callArgs := []any{
		c.config.Database,
		c.uid,
		c.config.Password,
		model,
		method,
		args,
		kwargs,
	}

	return c.call(ctx, "object", "execute_kw", callArgs, out)
}

// Login authenticates against the backend and stores the session uid.
func (c *Client) Login(ctx context.Context) error {
	args := []any{c.config.Database, c.config.Login, c.config.Password}

	// The backend answers false instead of a uid on bad credentials, so the
	// result cannot be decoded as a number directly.
	var result json.RawMessage
	if err := c.call(ctx, "common", "login", args, &result); err != nil {
		return err
	}

	var uid int64
	if err := json.Unmarshal(result, &uid); err != nil || uid == 0 {
		return ErrAuthentication
	}

	c.uid = uid
	return nil
}

// FindUser resolves a login name to its backend user id.
func (c *Client) FindUser(ctx context.Context, login string) (int64, error) {
	domain := []any{[]any{"login", "=", login}}

	var ids []int64
	if err := c.executeKw(ctx, "res.users", "search", []any{domain}, nil, &ids); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUserNotFound, login)
	}

	return ids[0], nil
}

// ListOpenTasks returns all open tasks with their owning project.
func (c *Client) ListOpenTasks(ctx context.Context) ([]Task, error) {
	domain := []any{[]any{"state", "=", "open"}}
	kwargs := map[string]any{
		"fields": []string{"id", "name", "project_id"},
	}

	var records []taskRecord
	if err := c.executeKw(ctx, "project.task", "search_read", []any{domain}, kwargs, &records); err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, Task{
			ID:        record.ID,
			ProjectID: record.ProjectID.ID,
			Name:      record.Name,
		})
	}

	return tasks, nil
}

// LastEntryDate returns the date of the user's most recent timesheet line.
// ok is false when the user has no timesheet lines at all.
func (c *Client) LastEntryDate(ctx context.Context, userID int64) (time.Time, bool, error) {
	domain := []any{[]any{"user_id", "=", userID}}
	kwargs := map[string]any{
		"fields": []string{"id", "date"},
		"limit":  1,
		"order":  "date DESC",
	}

	var records []workRecord
	if err := c.executeKw(ctx, "project.task.work", "search_read", []any{domain}, kwargs, &records); err != nil {
		return time.Time{}, false, err
	}
	if len(records) == 0 {
		return time.Time{}, false, nil
	}

	date, err := time.Parse(dateFormat, records[0].Date)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("backend: invalid timesheet date %q: %w", records[0].Date, err)
	}

	return date, true, nil
}

// CreateEntry creates one timesheet line and returns the new record id.
func (c *Client) CreateEntry(ctx context.Context, entry Entry) (int64, error) {
	values := map[string]any{
		"name":       entry.Description,
		"date":       entry.Date.Format(dateFormat),
		"task_id":    entry.TaskID,
		"project_id": entry.ProjectID,
		"hours":      entry.Hours,
		"user_id":    entry.UserID,
	}

	var id int64
	if err := c.executeKw(ctx, "project.task.work", "create", []any{values}, nil, &id); err != nil {
		return 0, err
	}

	return id, nil
}
