package protocol

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/datazip-inc/dskit/pkg/pager"
)

// writeRecords drains iterator to w as newline-delimited JSON and returns
// the number of records written.
func writeRecords[C any](ctx context.Context, w io.Writer, iterator *pager.Iterator[C]) (int, error) {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	for record, err := range iterator.All(ctx) {
		if err != nil {
			return iterator.Count(), err
		}
		if err := encoder.Encode(record); err != nil {
			return iterator.Count(), fmt.Errorf("failed to write record: %s", err)
		}
	}
	return iterator.Count(), nil
}

// parseQuery decodes a JSON query object given on the command line
func parseQuery(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var query map[string]any
	if err := json.Unmarshal([]byte(raw), &query); err != nil {
		return nil, fmt.Errorf("invalid query json: %s", err)
	}
	return query, nil
}
