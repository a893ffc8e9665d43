package driver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/dskit/types"
)

// fakeCluster emulates the handful of REST endpoints the client uses, for a
// single index. Requests against the "broken" index always fail with 500.
type fakeCluster struct {
	mu sync.Mutex

	index   string
	exists  bool
	mapping map[string]any
	docs    map[string]types.Record
	nextID  int

	scrolls    map[string]*fakeScroll
	scrollSeq  int
	cleared    []string
	searches   []map[string]any
	scrollReqs []map[string]any
	requests   []string
}

type fakeScroll struct {
	ids  []string
	size int
	page int
}

func newFakeCluster(t *testing.T) (*fakeCluster, *Client) {
	t.Helper()

	cluster := &fakeCluster{
		index:   "books",
		exists:  true,
		docs:    make(map[string]types.Record),
		scrolls: make(map[string]*fakeScroll),
	}
	server := httptest.NewServer(http.HandlerFunc(cluster.serve))
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), &Config{Host: server.URL})
	require.NoError(t, err)
	return cluster, client
}

func (f *fakeCluster) seed(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("doc-%03d", i)
		f.docs[id] = types.Record{"title": fmt.Sprintf("book %d", i), "shelf": fmt.Sprintf("s%d", i%3)}
	}
}

// expireScrolls drops every open scroll context
func (f *fakeCluster) expireScrolls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolls = make(map[string]*fakeScroll)
}

func (f *fakeCluster) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	var body map[string]any
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			reply(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
	}

	parts := strings.Split(strings.Trim(r.URL.EscapedPath(), "/"), "/")
	for i, part := range parts {
		parts[i], _ = url.PathUnescape(part)
	}
	switch {
	case r.URL.Path == "/":
		reply(w, http.StatusOK, map[string]any{"version": map[string]any{"number": "8.6.0"}, "tagline": "You Know, for Search"})
	case parts[0] == "broken":
		reply(w, http.StatusInternalServerError, map[string]any{"error": "boom"})
	case parts[0] == "_search" && len(parts) == 2 && parts[1] == "scroll":
		f.serveScroll(w, r.Method, body)
	case parts[0] != f.index:
		reply(w, http.StatusNotFound, map[string]any{"error": "index_not_found_exception"})
	case len(parts) == 1:
		f.serveIndex(w, r.Method, body)
	case len(parts) == 2 && parts[1] == "_mapping":
		if !f.exists {
			reply(w, http.StatusNotFound, map[string]any{"error": "index_not_found_exception"})
			return
		}
		reply(w, http.StatusOK, map[string]any{f.index: map[string]any{"mappings": f.mapping}})
	case len(parts) == 2 && parts[1] == "_refresh":
		if !f.exists {
			reply(w, http.StatusNotFound, map[string]any{"error": "index_not_found_exception"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"_shards": map[string]any{"successful": 1}})
	case len(parts) == 2:
		f.serveInsert(w, r.Method, body)
	case len(parts) == 3 && parts[2] == "_search":
		f.serveSearch(w, r, body)
	case len(parts) == 3 && parts[2] == "_count":
		reply(w, http.StatusOK, map[string]any{"count": len(f.matching(queryOf(body)))})
	case len(parts) == 3 && parts[2] == "_delete_by_query":
		deleted := len(f.docs)
		f.docs = make(map[string]types.Record)
		reply(w, http.StatusOK, map[string]any{"deleted": deleted})
	case len(parts) == 3:
		f.serveDocument(w, r.Method, parts[2], body)
	default:
		reply(w, http.StatusBadRequest, map[string]any{"error": "unsupported path " + r.URL.Path})
	}
}

func (f *fakeCluster) serveIndex(w http.ResponseWriter, method string, body map[string]any) {
	switch method {
	case http.MethodDelete:
		if !f.exists {
			reply(w, http.StatusNotFound, map[string]any{"error": "index_not_found_exception"})
			return
		}
		f.exists = false
		f.docs = make(map[string]types.Record)
		reply(w, http.StatusOK, map[string]any{"acknowledged": true})
	case http.MethodPut:
		if f.exists {
			reply(w, http.StatusBadRequest, map[string]any{"error": "resource_already_exists_exception"})
			return
		}
		f.exists = true
		f.mapping, _ = body["mappings"].(map[string]any)
		reply(w, http.StatusOK, map[string]any{"acknowledged": true})
	default:
		reply(w, http.StatusMethodNotAllowed, nil)
	}
}

func (f *fakeCluster) serveInsert(w http.ResponseWriter, method string, body map[string]any) {
	if method != http.MethodPost {
		reply(w, http.StatusMethodNotAllowed, nil)
		return
	}
	f.nextID++
	id := fmt.Sprintf("gen-%d", f.nextID)
	f.docs[id] = body
	reply(w, http.StatusCreated, map[string]any{"_id": id, "result": "created"})
}

func (f *fakeCluster) serveDocument(w http.ResponseWriter, method, id string, body map[string]any) {
	doc, found := f.docs[id]
	switch method {
	case http.MethodPut:
		f.docs[id] = body
		reply(w, http.StatusOK, map[string]any{"_id": id, "result": "updated"})
	case http.MethodGet:
		if !found {
			reply(w, http.StatusNotFound, map[string]any{"_id": id, "found": false})
			return
		}
		reply(w, http.StatusOK, map[string]any{"_id": id, "found": true, "_source": doc})
	case http.MethodDelete:
		if !found {
			reply(w, http.StatusNotFound, map[string]any{"_id": id, "result": "not_found"})
			return
		}
		delete(f.docs, id)
		reply(w, http.StatusOK, map[string]any{"_id": id, "result": "deleted"})
	default:
		reply(w, http.StatusMethodNotAllowed, nil)
	}
}

func (f *fakeCluster) serveSearch(w http.ResponseWriter, r *http.Request, body map[string]any) {
	f.searches = append(f.searches, body)
	ids := f.matching(queryOf(body))
	size := sizeOf(body, 10)

	if keepAlive := r.URL.Query().Get("scroll"); keepAlive != "" {
		f.scrollSeq++
		scrollID := fmt.Sprintf("scroll-%d-0", f.scrollSeq)
		scroll := &fakeScroll{ids: ids, size: size}
		f.scrolls[scrollID] = scroll
		reply(w, http.StatusOK, f.scrollPage(scrollID, scroll))
		return
	}

	if len(ids) > size {
		ids = ids[:size]
	}
	reply(w, http.StatusOK, map[string]any{"hits": map[string]any{"hits": f.hits(ids)}})
}

func (f *fakeCluster) serveScroll(w http.ResponseWriter, method string, body map[string]any) {
	scrollID, _ := body["scroll_id"].(string)
	if method == http.MethodDelete {
		f.cleared = append(f.cleared, scrollID)
		if _, found := f.scrolls[scrollID]; !found {
			reply(w, http.StatusNotFound, map[string]any{"succeeded": true, "num_freed": 0})
			return
		}
		delete(f.scrolls, scrollID)
		reply(w, http.StatusOK, map[string]any{"succeeded": true, "num_freed": 1})
		return
	}

	f.scrollReqs = append(f.scrollReqs, body)
	scroll, found := f.scrolls[scrollID]
	if !found {
		reply(w, http.StatusNotFound, map[string]any{"error": "search_context_missing_exception"})
		return
	}
	delete(f.scrolls, scrollID)

	scroll.page++
	next := fmt.Sprintf("%s-%d", scrollID[:strings.LastIndex(scrollID, "-")], scroll.page)
	f.scrolls[next] = scroll
	reply(w, http.StatusOK, f.scrollPage(next, scroll))
}

func (f *fakeCluster) scrollPage(scrollID string, scroll *fakeScroll) map[string]any {
	start := min(scroll.page*scroll.size, len(scroll.ids))
	end := min(start+scroll.size, len(scroll.ids))
	return map[string]any{
		"_scroll_id": scrollID,
		"hits":       map[string]any{"hits": f.hits(scroll.ids[start:end])},
	}
}

func (f *fakeCluster) hits(ids []string) []any {
	hits := make([]any, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, map[string]any{"_id": id, "_score": 1.5, "_source": f.docs[id]})
	}
	return hits
}

// matching returns the sorted ids of documents satisfying a match_all, or a
// single-field term/match equality query.
func (f *fakeCluster) matching(query map[string]any) []string {
	var field string
	var value any
	for _, method := range []string{"term", "match"} {
		if leaf, ok := query[method].(map[string]any); ok {
			for k, v := range leaf {
				field, value = k, v
			}
		}
	}

	ids := make([]string, 0, len(f.docs))
	for id, doc := range f.docs {
		if field == "" || doc[field] == value {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func queryOf(body map[string]any) map[string]any {
	query, _ := body["query"].(map[string]any)
	return query
}

func sizeOf(body map[string]any, fallback int) int {
	if size, ok := body["size"].(float64); ok {
		return int(size)
	}
	return fallback
}

func reply(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
