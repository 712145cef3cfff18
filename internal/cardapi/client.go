// Package cardapi provides a small client for the magicthegathering.io card search API.
package cardapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/spachava753/mtgmcp/internal/mtg"
	"github.com/spachava753/mtgmcp/internal/stringlist"
	"github.com/spachava753/mtgmcp/internal/version"
)

// DefaultBaseURL is the public magicthegathering.io API root.
const DefaultBaseURL = "https://api.magicthegathering.io/v1"

// DefaultPageSize bounds the number of cards returned when a query does not set one.
const DefaultPageSize = 20

const maxBodyBytes = 8 << 20

// DecodeError reports a response body that did not have the expected shape.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("decoding card API response at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("decoding card API response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Client searches cards over HTTP.
type Client struct {
	BaseURL  string
	PageSize int
	HTTP     *http.Client
}

// New returns a client for baseURL. An empty baseURL selects DefaultBaseURL and
// a nil httpClient selects a pooled client with the given timeout.
func New(baseURL string, pageSize int, httpClient *http.Client, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if httpClient == nil {
		httpClient = newHTTPClient(timeout)
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		PageSize: pageSize,
		HTTP:     httpClient,
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
		},
	}
}

// Search runs q against the cards endpoint and returns the matching cards.
// An empty result is not an error.
func (c *Client) Search(ctx context.Context, q mtg.Query) ([]mtg.Card, error) {
	reqURL, err := c.buildSearchURL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building card API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling card API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading card API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("card API status %d: %s", resp.StatusCode, msg)
	}

	return decodeCards(body)
}

// buildSearchURL composes the cards URL. List filters are comma separated,
// which the API treats as a logical AND.
func (c *Client) buildSearchURL(q mtg.Query) (string, error) {
	u, err := url.Parse(c.BaseURL + "/cards")
	if err != nil {
		return "", fmt.Errorf("invalid card API base url: %w", err)
	}

	v := u.Query()
	setIf := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	setList := func(key string, values stringlist.List) {
		if kept := values.Compact(); !kept.IsEmpty() {
			v.Set(key, strings.Join(kept, ","))
		}
	}

	setIf("name", q.Name)
	setList("colors", q.Colors)
	setList("types", q.Types)
	setList("subtypes", q.Subtypes)
	setList("supertypes", q.Supertypes)
	setIf("rarity", q.Rarity)
	setIf("text", q.Text)
	setIf("set", q.Set)
	if q.CMC != nil {
		v.Set("cmc", strconv.FormatFloat(*q.CMC, 'f', -1, 64))
	}

	pageSize := c.PageSize
	if q.PageSize > 0 && q.PageSize < pageSize {
		pageSize = q.PageSize
	}
	v.Set("pageSize", strconv.Itoa(pageSize))

	u.RawQuery = v.Encode()
	return u.String(), nil
}

// decodeCards reads the "cards" array, or the document root when it is an array.
func decodeCards(body []byte) ([]mtg.Card, error) {
	if !gjson.ValidBytes(body) {
		return nil, &DecodeError{Err: fmt.Errorf("response is not valid JSON")}
	}

	path := "cards"
	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		root := gjson.ParseBytes(body)
		if !root.IsArray() {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("missing cards array")}
		}
		path = ""
		result = root
	}
	if !result.IsArray() {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("expected array, got %s", result.Type)}
	}

	var cards []mtg.Card
	if err := json.Unmarshal([]byte(result.Raw), &cards); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return cards, nil
}
