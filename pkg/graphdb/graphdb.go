// Package graphdb talks to a FalkorDB graph over the Redis protocol.
// Queries are read-only Cypher passed through GRAPH.RO_QUERY; the reply
// is normalized into rows keyed by the RETURN aliases.
package graphdb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQuery marks connection failures and malformed queries so callers
// can tell a store problem from their own bugs.
var ErrQuery = errors.New("graph query failed")

type Config struct {
	URL          string `split_words:"true" required:"true"`
	Graph        string `split_words:"true" default:"kg_pastel"`
	ReadTimeout  int    `split_words:"true" default:"3"`
	WriteTimeout int    `split_words:"true" default:"3"`
	DialTimeout  int    `split_words:"true" default:"5"`
}

// Option customizes a Client.
type Option func(*Client)

func WithGraphName(name string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(name)
		if trimmed != "" {
			c.graph = trimmed
		}
	}
}

// Client is a thin read-only view over one named graph.
type Client struct {
	rdb   redis.UniversalClient
	graph string

	schemaMu sync.Mutex
	schema   string
}

func New(cfg Config, opts ...Option) (*Client, error) {
	redisOpts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %v", ErrQuery, err)
	}

	redisOpts.ReadTimeout = time.Duration(cfg.ReadTimeout) * time.Second
	redisOpts.WriteTimeout = time.Duration(cfg.WriteTimeout) * time.Second
	redisOpts.DialTimeout = time.Duration(cfg.DialTimeout) * time.Second

	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("%w: ping: %v", ErrQuery, err)
	}

	client := &Client{rdb: rdb, graph: strings.TrimSpace(cfg.Graph)}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.graph == "" {
		return nil, fmt.Errorf("%w: graph name is required", ErrQuery)
	}
	return client, nil
}

// NewWithCmdable wires an existing redis connection, mainly for tests.
func NewWithCmdable(rdb redis.UniversalClient, graph string) *Client {
	return &Client{rdb: rdb, graph: graph}
}

func (c *Client) Close() error {
	if closer, ok := c.rdb.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Query runs a read-only Cypher query and returns one map per result
// row, keyed by the (alias-stripped) column name.
func (c *Client) Query(ctx context.Context, cypher string) ([]map[string]any, error) {
	if strings.TrimSpace(cypher) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrQuery)
	}

	reply, err := c.rdb.Do(ctx, "GRAPH.RO_QUERY", c.graph, cypher).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	rows, err := formatReply(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return rows, nil
}

// SchemaDescription returns a textual summary of node labels,
// properties, and relationships for prompt construction. The result is
// computed once per process and cached; errors are not cached.
func (c *Client) SchemaDescription(ctx context.Context) (string, error) {
	c.schemaMu.Lock()
	defer c.schemaMu.Unlock()

	if c.schema != "" {
		return c.schema, nil
	}

	description, err := c.describeSchema(ctx)
	if err != nil {
		return "", err
	}
	c.schema = description
	return description, nil
}

func (c *Client) describeSchema(ctx context.Context) (string, error) {
	labelRows, err := c.Query(ctx, "MATCH (n) UNWIND labels(n) AS label RETURN DISTINCT label ORDER BY label")
	if err != nil {
		return "", err
	}

	propRows, err := c.Query(ctx, `
MATCH (n)
UNWIND labels(n) AS label
UNWIND keys(n) AS property
RETURN label, collect(DISTINCT property) AS properties`)
	if err != nil {
		return "", err
	}
	propsByLabel := make(map[string][]string, len(propRows))
	for _, row := range propRows {
		label := asString(row["label"])
		propsByLabel[label] = asStringSlice(row["properties"])
	}

	relRows, err := c.Query(ctx, `
MATCH (start)-[r]->(end)
RETURN DISTINCT labels(start) AS source,
                type(r) AS rel_type,
                labels(end) AS target,
                keys(r) AS properties`)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if len(labelRows) > 0 {
		b.WriteString("Node types:")
		for _, row := range labelRows {
			label := asString(row["label"])
			props := strings.Join(propsByLabel[label], ", ")
			if props == "" {
				props = "no explicit properties"
			}
			fmt.Fprintf(&b, "\n- %s { %s }", label, props)
		}
	} else {
		b.WriteString("Node types: none found.")
	}

	if len(relRows) > 0 {
		b.WriteString("\n\nRelationships:")
		for _, row := range relRows {
			source := strings.Join(asStringSlice(row["source"]), ":")
			target := strings.Join(asStringSlice(row["target"]), ":")
			if source == "" {
				source = "Unknown"
			}
			if target == "" {
				target = "Unknown"
			}
			props := strings.Join(asStringSlice(row["properties"]), ", ")
			if props == "" {
				props = "no properties"
			}
			fmt.Fprintf(&b, "\n- (%s)-[:%s]->(%s) { %s }", source, asString(row["rel_type"]), target, props)
		}
	} else {
		b.WriteString("\n\nRelationships: none found.")
	}

	return b.String(), nil
}

// formatReply converts a GRAPH.RO_QUERY reply ([header, rows, stats] or
// [stats] for row-less queries) into keyed rows.
func formatReply(reply any) ([]map[string]any, error) {
	sections, ok := reply.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected reply type %T", reply)
	}
	if len(sections) < 3 {
		return nil, nil
	}

	headerPart, ok := sections[0].([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected header type %T", sections[0])
	}
	headers := make([]string, len(headerPart))
	for idx, column := range headerPart {
		headers[idx] = normalizeHeader(column, idx)
	}

	rowPart, ok := sections[1].([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected row section type %T", sections[1])
	}

	rows := make([]map[string]any, 0, len(rowPart))
	for _, raw := range rowPart {
		values, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("unexpected row type %T", raw)
		}
		record := make(map[string]any, len(headers))
		for idx, header := range headers {
			if idx < len(values) {
				record[header] = stringifyValue(values[idx])
			}
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// normalizeHeader strips the node alias ("p.sabor" -> "sabor") and
// substitutes a positional name for blank or numeric columns. Some
// server versions wrap each column name in a [type, name] pair.
func normalizeHeader(header any, idx int) string {
	if pair, ok := header.([]any); ok && len(pair) > 0 {
		header = pair[len(pair)-1]
	}
	name := strings.TrimSpace(asString(header))
	if name == "" || isDigits(name) {
		return fmt.Sprintf("col_%d", idx)
	}
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		return name[dot+1:]
	}
	return name
}

// stringifyValue converts reply scalars and nested graph entities into
// plain Go values. Node and edge replies arrive as nested arrays and
// are kept as such.
func stringifyValue(value any) any {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = stringifyValue(item)
		}
		return out
	default:
		return value
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func asStringSlice(value any) []string {
	items, ok := value.([]any)
	if !ok {
		if s := asString(value); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isDigits(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(s) > 0
}
