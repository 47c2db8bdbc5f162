package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vocnet/skos-backend/internal/platform/envutil"
	"github.com/vocnet/skos-backend/internal/platform/logger"
)

const maxErrorBodyBytes = 1024

// Config locates the SPARQL endpoint. UpdateURL defaults to QueryURL
// when empty (single-endpoint stores such as Fuseki expose both).
type Config struct {
	QueryURL  string
	UpdateURL string
	Timeout   time.Duration
}

// Client talks to one SPARQL endpoint. All calls are synchronous
// blocking I/O; cancellation comes from the caller's context.
type Client struct {
	log       *logger.Logger
	queryURL  string
	updateURL string
	http      *http.Client
}

type selectEnvelope struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
	Boolean *bool `json:"boolean"`
}

func NewClient(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("sparql: logger required")
	}
	queryURL := strings.TrimRight(strings.TrimSpace(cfg.QueryURL), "/")
	if queryURL == "" {
		return nil, fmt.Errorf("sparql: query endpoint required")
	}
	updateURL := strings.TrimRight(strings.TrimSpace(cfg.UpdateURL), "/")
	if updateURL == "" {
		updateURL = queryURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		log:       log.With("client", "SparqlClient"),
		queryURL:  queryURL,
		updateURL: updateURL,
		http: &http.Client{
			Timeout: timeout,
		},
	}

	if err := c.verifyReady(context.Background()); err != nil {
		return nil, err
	}

	log.Info("SPARQL endpoint ready", "query_url", queryURL, "update_url", updateURL)
	return c, nil
}

func NewFromEnv(log *logger.Logger) (*Client, error) {
	return NewClient(log, Config{
		QueryURL:  envutil.String("SPARQL_QUERY_URL", ""),
		UpdateURL: envutil.String("SPARQL_UPDATE_URL", ""),
		Timeout:   time.Duration(envutil.Int("SPARQL_TIMEOUT_SECONDS", 30)) * time.Second,
	})
}

func (c *Client) verifyReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := c.Ask(ctx, "ASK { ?s ?p ?o }"); err != nil {
		return fmt.Errorf("sparql: endpoint not ready: %w", err)
	}
	return nil
}

// Select runs a SELECT query and returns its bindings in result order.
func (c *Client) Select(ctx context.Context, query string) ([]Binding, error) {
	env, err := c.query(ctx, query)
	if err != nil {
		return nil, err
	}
	return env.Results.Bindings, nil
}

// Ask runs an ASK query.
func (c *Client) Ask(ctx context.Context, query string) (bool, error) {
	env, err := c.query(ctx, query)
	if err != nil {
		return false, err
	}
	if env.Boolean == nil {
		return false, fmt.Errorf("sparql: ask response missing boolean")
	}
	return *env.Boolean, nil
}

// InsertData inserts the given triples with a single INSERT DATA update.
func (c *Client) InsertData(ctx context.Context, triples []Triple) error {
	if len(triples) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("INSERT DATA {\n")
	for _, t := range triples {
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return c.Update(ctx, b.String())
}

// DeleteMatching removes every triple matching the given pattern. Empty
// subject, predicate or object act as wildcards.
func (c *Client) DeleteMatching(ctx context.Context, subject, predicate string, object *Term) error {
	s := "?s"
	if subject != "" {
		s = fmt.Sprintf("<%s>", subject)
	}
	p := "?p"
	if predicate != "" {
		p = fmt.Sprintf("<%s>", predicate)
	}
	o := "?o"
	if object != nil {
		o = FormatTerm(*object)
	}
	return c.Update(ctx, fmt.Sprintf("DELETE WHERE { %s %s %s }", s, p, o))
}

// Update sends a raw SPARQL update.
func (c *Client) Update(ctx context.Context, update string) error {
	form := url.Values{"update": {update}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.updateURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sparql: build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sparql: update: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sparql: update failed: %s", c.errorBody(resp))
	}
	return nil
}

func (c *Client) query(ctx context.Context, query string) (*selectEnvelope, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("sparql: build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sparql: query: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sparql: query failed: %s", c.errorBody(resp))
	}

	var env selectEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("sparql: decode results: %w", err)
	}
	return &env, nil
}

func (c *Client) errorBody(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return fmt.Sprintf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
}
