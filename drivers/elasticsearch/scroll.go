package driver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/datazip-inc/dskit/constants"
	"github.com/datazip-inc/dskit/pkg/pager"
	"github.com/datazip-inc/dskit/types"
	"github.com/datazip-inc/dskit/utils/logger"
)

// ScrollSearch pages through every document matching query using the scroll
// API. The filter is sent once; later pages only carry the scroll id. The
// returned iterator clears the scroll context when it ends or is closed.
func (i *Index) ScrollSearch(ctx context.Context, query map[string]any, pageSize int) *pager.Iterator[string] {
	if pageSize <= 0 {
		pageSize = constants.ESDefaultPageSize
	}

	started := false
	fetch := func(ctx context.Context, scrollID string) ([]types.Record, string, error) {
		var resp searchResponse
		if !started {
			started = true
			body := map[string]any{
				"size":  pageSize,
				"query": query,
				"sort":  []string{"_doc"},
			}
			params := url.Values{"scroll": {constants.ESScrollKeepAlive}}
			if err := i.client.do(ctx, http.MethodGet, docPath(i.name, i.typeName, "_search"), params, body, &resp); err != nil {
				return nil, scrollID, fmt.Errorf("failed to open scroll on %s: %w", i.name, err)
			}
		} else {
			if err := i.client.continueScroll(ctx, scrollID, &resp); err != nil {
				return nil, scrollID, err
			}
		}

		next := scrollID
		if resp.ScrollID != "" {
			next = resp.ScrollID
		}
		return resp.records(false), next, nil
	}

	logger.Debugf("scrolling %s/%s with page size %d", i.name, i.typeName, pageSize)
	return pager.New("", fetch).WithRelease(i.client.clearScroll)
}

// All scrolls over every document of the type
func (i *Index) All(ctx context.Context, pageSize int) *pager.Iterator[string] {
	return i.ScrollSearch(ctx, matchAll(), pageSize)
}

func (c *Client) continueScroll(ctx context.Context, scrollID string, out *searchResponse) error {
	body := map[string]any{
		"scroll":    constants.ESScrollKeepAlive,
		"scroll_id": scrollID,
	}

	err := c.do(ctx, http.MethodGet, "/_search/scroll", nil, body, out)
	var unexpected *types.UnexpectedResponseError
	if errors.As(err, &unexpected) && unexpected.StatusCode == http.StatusNotFound {
		return unexpected.WithCause(types.ErrCursorExpired)
	}
	return err
}

// clearScroll frees the server side scroll context. A context that already
// expired is not an error.
func (c *Client) clearScroll(ctx context.Context, scrollID string) error {
	if scrollID == "" {
		return nil
	}

	body, err := jsonBody(map[string]any{"scroll_id": scrollID})
	if err != nil {
		return err
	}

	status, raw, err := readResponse(c.client.ClearScroll(
		c.client.ClearScroll.WithBody(body),
		c.client.ClearScroll.WithContext(ctx),
	))
	if err != nil {
		return fmt.Errorf("failed to clear scroll: %s", err)
	}
	if status == http.StatusNotFound {
		return nil
	}
	return decodeResponse(status, raw, nil)
}
