package driver

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/goccy/go-json"

	"github.com/datazip-inc/dskit/constants"
	"github.com/datazip-inc/dskit/types"
	"github.com/datazip-inc/dskit/utils/logger"
)

// Client talks to a single Elasticsearch cluster over its REST API
type Client struct {
	config  *Config
	address string
	client  *elasticsearch.Client
}

// NewClient validates config, builds the transport and checks that the
// cluster answers.
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %s", err)
	}

	address, err := config.Address()
	if err != nil {
		return nil, err
	}

	cfg := elasticsearch.Config{
		Addresses: []string{address},
	}
	if config.APIKey != "" {
		cfg.APIKey = config.APIKey
	} else if config.Username != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	if config.UseSSL {
		cfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
		}
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %s", err)
	}

	c := &Client{config: config, address: address, client: client}
	info, err := c.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}

	logger.Infof("Successfully connected to Elasticsearch at %s (version %v)", address, versionOf(info))
	return c, nil
}

// Info returns the cluster description served at the root endpoint
func (c *Client) Info(ctx context.Context) (map[string]any, error) {
	status, raw, err := readResponse(c.client.Info(c.client.Info.WithContext(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster info: %s", err)
	}

	var info map[string]any
	if err := decodeResponse(status, raw, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// Index returns a handle on an index; an empty typeName means "_doc"
func (c *Client) Index(name, typeName string) *Index {
	if typeName == "" {
		typeName = constants.ESDefaultType
	}
	return &Index{
		client:   c,
		name:     name,
		typeName: typeName,
	}
}

// Address returns the base URL requests are sent to
func (c *Client) Address() string {
	return c.address
}

// perform sends a JSON request to path and returns the raw response. Non-2xx
// statuses are not treated as errors here.
func (c *Client) perform(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		var err error
		if reader, err = jsonBody(body); err != nil {
			return 0, nil, err
		}
	}

	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %s", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Perform(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s failed: %s", method, path, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			logger.Warnf("Failed to close response body: %v", err)
		}
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("failed to read response body: %s", err)
	}
	return res.StatusCode, raw, nil
}

// do performs the request and decodes a 2xx response into out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	status, raw, err := c.perform(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	return decodeResponse(status, raw, out)
}

func readResponse(res *esapi.Response, err error) (int, []byte, error) {
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			logger.Warnf("Failed to close response body: %v", err)
		}
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("failed to read response body: %s", err)
	}
	return res.StatusCode, raw, nil
}

func decodeResponse(status int, raw []byte, out any) error {
	if !isSuccess(status) {
		return types.NewUnexpectedResponse(status, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %s", err)
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func jsonBody(body any) (io.Reader, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %s", err)
	}
	return bytes.NewReader(payload), nil
}

// docPath joins escaped path segments into an absolute request path
func docPath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	return "/" + strings.Join(escaped, "/")
}

// docID renders an id as a path segment. Numbers decoded from JSON arrive as
// float64 and are printed without an exponent.
func docID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func versionOf(info map[string]any) any {
	if version, ok := info["version"].(map[string]any); ok {
		return version["number"]
	}
	return "unknown"
}
