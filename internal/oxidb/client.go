// Package oxidb is a TCP client for oxidb-server, the document store the
// ontohin service can run against.
//
// Protocol: each message is [4-byte little-endian length][JSON payload].
// Server responds with {"ok": true, "data": ...} or {"ok": false, "error": "..."}.
package oxidb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// Client is a TCP client for oxidb-server. Requests are serialised by a
// mutex, so a Client may be shared between goroutines.
type Client struct {
	conn net.Conn
	mu   sync.Mutex
}

// Connect creates a new client connected to oxidb-server.
func Connect(host string, port int, timeout time.Duration) (*Client, error) {
	addr := net.JoinHostPort(host, fmt.Sprint(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("oxidb: connect to %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the TCP connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ------------------------------------------------------------------
// Low-level protocol
// ------------------------------------------------------------------

func (c *Client) sendRaw(data []byte) error {
	buf := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[4:], data)
	_, err := c.conn.Write(buf)
	return err
}

func (c *Client) recvRaw() ([]byte, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(c.conn, lenBuf); err != nil {
		return nil, fmt.Errorf("oxidb: read length: %w", err)
	}
	payload := make([]byte, binary.LittleEndian.Uint32(lenBuf))
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return nil, fmt.Errorf("oxidb: read payload: %w", err)
	}
	return payload, nil
}

// request performs one round trip. The context deadline, if any, is applied
// to the socket for the duration of the call.
func (c *Client) request(ctx context.Context, payload map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, _ := ctx.Deadline()
	c.conn.SetDeadline(deadline)
	defer c.conn.SetDeadline(time.Time{})

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("oxidb: marshal request: %w", err)
	}
	if err := c.sendRaw(jsonBytes); err != nil {
		return nil, fmt.Errorf("oxidb: send: %w", err)
	}
	respBytes, err := c.recvRaw()
	if err != nil {
		return nil, err
	}
	var resp map[string]any
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("oxidb: unmarshal response: %w", err)
	}
	return resp, nil
}

func (c *Client) checked(ctx context.Context, payload map[string]any) (any, error) {
	resp, err := c.request(ctx, payload)
	if err != nil {
		return nil, err
	}
	if ok, _ := resp["ok"].(bool); !ok {
		errMsg, _ := resp["error"].(string)
		if errMsg == "" {
			errMsg = "unknown error"
		}
		if strings.Contains(strings.ToLower(errMsg), "unique") {
			return nil, &DuplicateKeyError{Msg: errMsg}
		}
		return nil, &Error{Msg: errMsg}
	}
	return resp["data"], nil
}

// Ping sends a ping to the server. Returns "pong".
func (c *Client) Ping(ctx context.Context) (string, error) {
	data, err := c.checked(ctx, map[string]any{"cmd": "ping"})
	if err != nil {
		return "", err
	}
	s, _ := data.(string)
	return s, nil
}

// ------------------------------------------------------------------
// CRUD
// ------------------------------------------------------------------

// Insert inserts a single document and returns the server response,
// which carries the assigned "id".
func (c *Client) Insert(ctx context.Context, collection string, doc map[string]any) (map[string]any, error) {
	data, err := c.checked(ctx, map[string]any{"cmd": "insert", "collection": collection, "doc": doc})
	if err != nil {
		return nil, err
	}
	return asMap(data), nil
}

// FindOptions holds optional parameters for Find.
type FindOptions struct {
	Sort  map[string]any
	Skip  *int
	Limit *int
}

// Find returns documents matching a query.
func (c *Client) Find(ctx context.Context, collection string, query map[string]any, opts *FindOptions) ([]map[string]any, error) {
	payload := map[string]any{"cmd": "find", "collection": collection, "query": query}
	if opts != nil {
		if opts.Sort != nil {
			payload["sort"] = opts.Sort
		}
		if opts.Skip != nil {
			payload["skip"] = *opts.Skip
		}
		if opts.Limit != nil {
			payload["limit"] = *opts.Limit
		}
	}
	data, err := c.checked(ctx, payload)
	if err != nil {
		return nil, err
	}
	return toMapSlice(data), nil
}

// FindOne returns a single document matching a query, or nil.
func (c *Client) FindOne(ctx context.Context, collection string, query map[string]any) (map[string]any, error) {
	data, err := c.checked(ctx, map[string]any{"cmd": "find_one", "collection": collection, "query": query})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	m, _ := data.(map[string]any)
	return m, nil
}

// UpdateOne updates at most one document matching a query. The response
// carries "modified".
func (c *Client) UpdateOne(ctx context.Context, collection string, query, update map[string]any) (map[string]any, error) {
	data, err := c.checked(ctx, map[string]any{
		"cmd": "update_one", "collection": collection,
		"query": query, "update": update,
	})
	if err != nil {
		return nil, err
	}
	return asMap(data), nil
}

// DeleteOne deletes at most one document matching a query. The response
// carries "deleted".
func (c *Client) DeleteOne(ctx context.Context, collection string, query map[string]any) (map[string]any, error) {
	data, err := c.checked(ctx, map[string]any{
		"cmd": "delete_one", "collection": collection, "query": query,
	})
	if err != nil {
		return nil, err
	}
	return asMap(data), nil
}

// Count returns the number of documents matching a query.
func (c *Client) Count(ctx context.Context, collection string, query map[string]any) (int, error) {
	data, err := c.checked(ctx, map[string]any{
		"cmd": "count", "collection": collection, "query": query,
	})
	if err != nil {
		return 0, err
	}
	count, _ := asMap(data)["count"].(float64)
	return int(count), nil
}

// ------------------------------------------------------------------
// Indexes
// ------------------------------------------------------------------

// CreateIndex creates a non-unique index on a field.
func (c *Client) CreateIndex(ctx context.Context, collection, field string) error {
	_, err := c.checked(ctx, map[string]any{"cmd": "create_index", "collection": collection, "field": field})
	return err
}

// CreateUniqueIndex creates a unique index on a field.
func (c *Client) CreateUniqueIndex(ctx context.Context, collection, field string) error {
	_, err := c.checked(ctx, map[string]any{"cmd": "create_unique_index", "collection": collection, "field": field})
	return err
}

// ------------------------------------------------------------------
// Helpers
// ------------------------------------------------------------------

// asMap normalises write responses; inside a transaction the server
// answers with a bare status string instead of an object.
func asMap(data any) map[string]any {
	if m, ok := data.(map[string]any); ok {
		return m
	}
	return map[string]any{"status": data}
}

func toMapSlice(data any) []map[string]any {
	arr, _ := data.([]any)
	result := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			result = append(result, m)
		}
	}
	return result
}
