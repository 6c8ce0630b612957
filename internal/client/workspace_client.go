package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"workspace-service/internal/domain"
	"workspace-service/internal/dto"
	"workspace-service/internal/metrics"
	"workspace-service/internal/notify"
)

const (
	streamPongWait  = 60 * time.Second
	streamWriteWait = 10 * time.Second
)

// APIError is a non-success response from the workspace API
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("workspace api error (status %d, %s): %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// WorkspaceClient talks to a workspace-service over HTTP and WebSocket. It
// satisfies the presence coordinator's Backend.
type WorkspaceClient struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewWorkspaceClient creates a client for the API rooted at baseURL, for
// example http://localhost:8080/api.
func NewWorkspaceClient(baseURL string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *WorkspaceClient {
	return &WorkspaceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		dialer:  &websocket.Dialer{HandshakeTimeout: timeout},
		logger:  logger,
		metrics: m,
	}
}

func (c *WorkspaceClient) CreateWorkspace(ctx context.Context) (*domain.WorkspaceInfo, error) {
	var info domain.WorkspaceInfo
	if err := c.do(ctx, http.MethodPost, "/workspaces", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *WorkspaceClient) DescribeWorkspace(ctx context.Context, workspaceID string) (*domain.WorkspaceInfo, error) {
	var info domain.WorkspaceInfo
	if err := c.do(ctx, http.MethodGet, workspacePath(workspaceID), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *WorkspaceClient) Heartbeat(ctx context.Context, workspaceID, session, userName string) error {
	path := workspacePath(workspaceID) + "/presence/" + url.PathEscape(session)
	return c.do(ctx, http.MethodPut, path, dto.HeartbeatRequest{UserName: userName}, nil)
}

func (c *WorkspaceClient) ListOnline(ctx context.Context, workspaceID string) ([]domain.OnlineUser, error) {
	resp, err := c.Presence(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return resp.OnlineUsers(), nil
}

// Presence returns the online set with avatar colors
func (c *WorkspaceClient) Presence(ctx context.Context, workspaceID string) (*dto.PresenceResponse, error) {
	var resp dto.PresenceResponse
	if err := c.do(ctx, http.MethodGet, workspacePath(workspaceID)+"/presence", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *WorkspaceClient) Reap(ctx context.Context, workspaceID string) (int64, error) {
	var resp dto.ReapResponse
	if err := c.do(ctx, http.MethodPost, workspacePath(workspaceID)+"/presence/reap", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

func (c *WorkspaceClient) Remove(ctx context.Context, workspaceID, session string) error {
	path := workspacePath(workspaceID) + "/presence/" + url.PathEscape(session)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *WorkspaceClient) AddIngredient(ctx context.Context, workspaceID, session, userName, name string) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	req := dto.AddIngredientRequest{Session: session, UserName: userName, Name: name}
	if err := c.do(ctx, http.MethodPost, workspacePath(workspaceID)+"/ingredients", req, &ing); err != nil {
		return nil, err
	}
	return &ing, nil
}

func (c *WorkspaceClient) ListIngredients(ctx context.Context, workspaceID string) ([]*domain.Ingredient, error) {
	var list []*domain.Ingredient
	if err := c.do(ctx, http.MethodGet, workspacePath(workspaceID)+"/ingredients", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *WorkspaceClient) SuggestRecipes(ctx context.Context, workspaceID, session string) (*domain.SuggestionContent, error) {
	var suggestion domain.SuggestionContent
	req := dto.SuggestRecipesRequest{Session: session}
	if err := c.do(ctx, http.MethodPost, workspacePath(workspaceID)+"/recipes", req, &suggestion); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// Subscribe opens the workspace event stream. When the stream ends for any
// reason other than the returned Unsubscribe, the handler receives a
// stream/closed event.
func (c *WorkspaceClient) Subscribe(ctx context.Context, workspaceID string, handler notify.Handler) (notify.Unsubscribe, error) {
	streamURL, err := c.streamURL(workspaceID)
	if err != nil {
		return nil, err
	}

	conn, resp, err := c.dialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.metrics.RecordExternalAPICall("/ws/workspaces", http.MethodGet, status, 0, err)
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}
	c.metrics.RecordExternalAPICall("/ws/workspaces", http.MethodGet, http.StatusSwitchingProtocols, 0, nil)

	var (
		mu      sync.Mutex
		closing bool
	)

	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(streamPongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(streamWriteWait))
	})

	go func() {
		defer conn.Close()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				mu.Lock()
				expected := closing
				mu.Unlock()
				if !expected {
					c.logger.Warn("Event stream closed",
						zap.String("workspace_id", workspaceID),
						zap.Error(err),
					)
					handler(notify.Event{
						Topic:       notify.TopicStream,
						Type:        notify.EventClosed,
						WorkspaceID: workspaceID,
						OccurredAt:  time.Now().UTC(),
					})
				}
				return
			}
			conn.SetReadDeadline(time.Now().Add(streamPongWait))

			event, err := notify.Decode(message)
			if err != nil {
				c.logger.Warn("Dropping malformed stream event", zap.Error(err))
				continue
			}
			handler(event)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			closing = true
			mu.Unlock()
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(streamWriteWait))
			conn.Close()
		})
	}, nil
}

func (c *WorkspaceClient) streamURL(workspaceID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws" + workspacePath(workspaceID)
	return u.String(), nil
}

func (c *WorkspaceClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordExternalAPICall(path, method, statusCode, duration, err)

	if err != nil {
		return fmt.Errorf("workspace api request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Status: resp.StatusCode, Code: "INVALID_RESPONSE", Message: http.StatusText(resp.StatusCode)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		c.logger.Debug("Workspace API returned non-success status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
		)
		return apiErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the workspace API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func workspacePath(workspaceID string) string {
	return "/workspaces/" + url.PathEscape(workspaceID)
}
