package driver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/datazip-inc/dskit/constants"
	"github.com/datazip-inc/dskit/types"
)

// Index is a handle on one index and document type
type Index struct {
	client   *Client
	name     string
	typeName string
}

type hit struct {
	ID     string       `json:"_id"`
	Score  *float64     `json:"_score"`
	Source types.Record `json:"_source"`
}

type searchResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []hit `json:"hits"`
	} `json:"hits"`
}

// record flattens a hit into its source with "_id" (and "_score") injected
func (h hit) record(withScore bool) types.Record {
	record := h.Source
	if record == nil {
		record = make(types.Record)
	}
	record[constants.ESDocumentID] = h.ID
	if withScore {
		var score any
		if h.Score != nil {
			score = *h.Score
		}
		record[constants.ESDocumentScore] = score
	}
	return record
}

func (r *searchResponse) records(withScore bool) []types.Record {
	records := make([]types.Record, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		records = append(records, h.record(withScore))
	}
	return records
}

func (i *Index) Name() string     { return i.name }
func (i *Index) TypeName() string { return i.typeName }

// DeleteIndex removes the index; false means it did not exist
func (i *Index) DeleteIndex(ctx context.Context) (bool, error) {
	es := i.client.client
	status, raw, err := readResponse(es.Indices.Delete([]string{i.name}, es.Indices.Delete.WithContext(ctx)))
	if err != nil {
		return false, fmt.Errorf("failed to delete index %s: %s", i.name, err)
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if err := decodeResponse(status, raw, nil); err != nil {
		return false, err
	}
	return true, nil
}

// GetMapping returns the mapping document of the index
func (i *Index) GetMapping(ctx context.Context) (map[string]any, error) {
	es := i.client.client
	status, raw, err := readResponse(es.Indices.GetMapping(
		es.Indices.GetMapping.WithIndex(i.name),
		es.Indices.GetMapping.WithContext(ctx),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get mapping for index %s: %s", i.name, err)
	}

	var mapping map[string]any
	if err := decodeResponse(status, raw, &mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// InsertOne indexes doc under a generated id and returns it. The document
// must not carry an id of its own.
func (i *Index) InsertOne(ctx context.Context, doc types.Record, refresh bool) (string, error) {
	body := doc.Clone()
	if id, found := body.ExtractID(); found {
		return "", types.Preconditionf("document inserted into %s must not carry an id, got %v", i.name, id)
	}

	var resp struct {
		ID string `json:"_id"`
	}
	if err := i.client.do(ctx, http.MethodPost, docPath(i.name, i.typeName), nil, body, &resp); err != nil {
		return "", err
	}

	return resp.ID, i.refreshIf(ctx, refresh)
}

// SaveOne writes doc under its own id, replacing any existing document
func (i *Index) SaveOne(ctx context.Context, doc types.Record, refresh bool) (string, error) {
	body := doc.Clone()
	id, found := body.ExtractID()
	if !found {
		return "", types.Preconditionf("document saved into %s must carry an id", i.name)
	}

	var resp struct {
		ID string `json:"_id"`
	}
	if err := i.client.do(ctx, http.MethodPut, docPath(i.name, i.typeName, docID(id)), nil, body, &resp); err != nil {
		return "", err
	}

	return resp.ID, i.refreshIf(ctx, refresh)
}

// DeleteByID deletes one document; false means it did not exist
func (i *Index) DeleteByID(ctx context.Context, id any) (bool, error) {
	if types.IsEmpty(id) {
		return false, types.Preconditionf("empty document id")
	}

	status, raw, err := i.client.perform(ctx, http.MethodDelete, docPath(i.name, i.typeName, docID(id)), nil, nil)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if err := decodeResponse(status, raw, nil); err != nil {
		return false, err
	}
	return true, nil
}

// GetByID returns the document source with "_id" injected
func (i *Index) GetByID(ctx context.Context, id any) (types.Record, error) {
	if types.IsEmpty(id) {
		return nil, types.Preconditionf("empty document id")
	}

	status, raw, err := i.client.perform(ctx, http.MethodGet, docPath(i.name, i.typeName, docID(id)), nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s/%s/%v", types.ErrNotFound, i.name, i.typeName, id)
	}

	var doc hit
	if err := decodeResponse(status, raw, &doc); err != nil {
		return nil, err
	}
	return doc.record(false), nil
}

// DeleteAll removes every document of the type while keeping the index
func (i *Index) DeleteAll(ctx context.Context) error {
	body := map[string]any{
		"query": matchAll(),
	}
	return i.client.do(ctx, http.MethodPost, docPath(i.name, i.typeName, "_delete_by_query"), nil, body, nil)
}

// Refresh makes recent writes visible to search
func (i *Index) Refresh(ctx context.Context) error {
	es := i.client.client
	status, raw, err := readResponse(es.Indices.Refresh(
		es.Indices.Refresh.WithIndex(i.name),
		es.Indices.Refresh.WithContext(ctx),
	))
	if err != nil {
		return fmt.Errorf("failed to refresh index %s: %s", i.name, err)
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", types.ErrIndexNotExist, i.name)
	}
	return decodeResponse(status, raw, nil)
}

// Count returns the number of documents matching query, or of the whole
// type when query is empty.
func (i *Index) Count(ctx context.Context, query map[string]any) (int64, error) {
	var body any
	if len(query) > 0 {
		body = map[string]any{"query": query}
	}

	var resp struct {
		Count int64 `json:"count"`
	}
	if err := i.client.do(ctx, http.MethodGet, docPath(i.name, i.typeName, "_count"), nil, body, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Query runs a single search and returns at most size hits
func (i *Index) Query(ctx context.Context, query map[string]any, size int, withScore bool) ([]types.Record, error) {
	if size <= 0 {
		size = constants.ESDefaultQuerySize
	}

	body := map[string]any{
		"query": query,
		"size":  size,
	}

	var resp searchResponse
	if err := i.client.do(ctx, http.MethodGet, docPath(i.name, i.typeName, "_search"), nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.records(withScore), nil
}

// QueryByField searches field for value with a leaf query such as "match"
// or "term"; an empty method means "match".
func (i *Index) QueryByField(ctx context.Context, field string, value any, method string, size int, withScore bool) ([]types.Record, error) {
	if method == "" {
		method = "match"
	}
	query := map[string]any{
		method: map[string]any{field: value},
	}
	return i.Query(ctx, query, size, withScore)
}

func (i *Index) refreshIf(ctx context.Context, refresh bool) error {
	if !refresh {
		return nil
	}
	return i.Refresh(ctx)
}

func matchAll() map[string]any {
	return map[string]any{"match_all": map[string]any{}}
}
