// Package client provides a Go client for the Graph Visualizer HTTP API.
//
// It covers graph editing (nodes, edges, colors), reading the graph and its
// layout, and the file commands (save, save-as, load, delete). Errors returned
// by the server (status >= 400) surface as *APIError.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Pmariak1013/GraphVisualizer/pkg/graph"
	"github.com/Pmariak1013/GraphVisualizer/pkg/layout"
	"github.com/Pmariak1013/GraphVisualizer/pkg/persistence"
)

// --- Custom Errors ---

// APIError represents an error returned by the API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// --- JSON Response Structs ---

// Layout models the response of the layout endpoint.
type Layout struct {
	Positions map[string]layout.Point `json:"positions"`
	Colors    map[string]string       `json:"colors"`
}

// statusResponse models the body of file commands.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}

// --- Client ---

// Client is the Go client for the Graph Visualizer server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new client for the server at host:port. An empty apiKey sends
// no Authorization header.
func New(host string, port int, apiKey string) *Client {
	return NewWithURL(fmt.Sprintf("http://%s:%d", host, port), apiKey)
}

// NewWithURL creates a new client for the server at baseURL.
func NewWithURL(baseURL string, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// jsonRequest is a helper method to execute all requests to the API.
// It handles JSON serialization, HTTP calls, and error management.
func (c *Client) jsonRequest(method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(respBody, &errResp) == nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, nil
}

// --- Graph Methods ---

// AddNode adds a node. Adding an existing node succeeds without change.
func (c *Client) AddNode(key string) error {
	_, err := c.jsonRequest(http.MethodPost, "/graph/nodes", map[string]string{"key": key})
	return err
}

// RemoveNode removes a node with its edges and color.
func (c *Client) RemoveNode(key string) error {
	_, err := c.jsonRequest(http.MethodDelete, "/graph/nodes/"+url.PathEscape(key), nil)
	return err
}

// AddEdge connects two existing nodes.
func (c *Client) AddEdge(a, b string) error {
	_, err := c.jsonRequest(http.MethodPost, "/graph/edges", map[string]string{"a": a, "b": b})
	return err
}

// RemoveEdge removes the edge between a and b.
func (c *Client) RemoveEdge(a, b string) error {
	_, err := c.jsonRequest(http.MethodDelete, "/graph/edges", map[string]string{"a": a, "b": b})
	return err
}

// SetColor sets the color of an existing node.
func (c *Client) SetColor(key, color string) error {
	_, err := c.jsonRequest(http.MethodPut, "/graph/nodes/"+url.PathEscape(key)+"/color", map[string]string{"color": color})
	return err
}

// Clear empties the server's in-memory graph.
func (c *Client) Clear() error {
	_, err := c.jsonRequest(http.MethodPost, "/graph/clear", nil)
	return err
}

// Graph fetches the current graph.
func (c *Client) Graph() (graph.Snapshot, error) {
	body, err := c.jsonRequest(http.MethodGet, "/graph", nil)
	if err != nil {
		return graph.Snapshot{}, err
	}
	rec, err := persistence.Unmarshal(body)
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("failed to parse graph: %w", err)
	}
	store, err := persistence.Decode(rec)
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("failed to parse graph: %w", err)
	}
	return store.Snapshot(), nil
}

// Layout fetches node positions and effective colors.
func (c *Client) Layout() (*Layout, error) {
	body, err := c.jsonRequest(http.MethodGet, "/graph/layout", nil)
	if err != nil {
		return nil, err
	}
	var l Layout
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	return &l, nil
}

// --- System Methods ---

// Save writes the graph to the server's default graph file and returns its path.
func (c *Client) Save() (string, error) {
	return c.fileCommand("/system/save", nil)
}

// SaveAs writes the graph to name and returns the path the server used.
func (c *Client) SaveAs(name string) (string, error) {
	return c.fileCommand("/system/save-as", map[string]string{"name": name})
}

// Load replaces the server's graph with the content of name.
func (c *Client) Load(name string) error {
	_, err := c.fileCommand("/system/load", map[string]string{"name": name})
	return err
}

// DeleteGraph empties the default graph file and the in-memory graph.
func (c *Client) DeleteGraph() error {
	_, err := c.fileCommand("/system/delete", nil)
	return err
}

func (c *Client) fileCommand(endpoint string, payload any) (string, error) {
	body, err := c.jsonRequest(http.MethodPost, endpoint, payload)
	if err != nil {
		return "", err
	}
	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return resp.Path, nil
}
