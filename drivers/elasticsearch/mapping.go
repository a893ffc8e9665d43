package driver

import (
	"context"
	"fmt"

	"github.com/datazip-inc/dskit/constants"
)

// synthetic field types understood by CreateMapping; Chinese text goes through
// the ik analyzer plugin
const (
	CNText        = "cn_text"
	CNTextKeyword = "cn_text_keyword"
	TextKeyword   = "text_keyword"
)

func keywordSubField() map[string]any {
	return map[string]any{
		"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
	}
}

// ExpandProperties replaces the synthetic field types with their full
// definitions. Other properties are kept as given.
func ExpandProperties(properties map[string]any) map[string]any {
	expanded := make(map[string]any, len(properties))
	for field, definition := range properties {
		expanded[field] = definition

		attrs, ok := definition.(map[string]any)
		if !ok {
			continue
		}
		fieldType, _ := attrs["type"].(string)

		switch fieldType {
		case CNText:
			expanded[field] = map[string]any{
				"type":            "text",
				"analyzer":        "ik_max_word",
				"search_analyzer": "ik_smart",
			}
		case CNTextKeyword:
			expanded[field] = map[string]any{
				"type":            "text",
				"analyzer":        "ik_max_word",
				"search_analyzer": "ik_smart",
				"fields":          keywordSubField(),
			}
		case TextKeyword:
			expanded[field] = map[string]any{
				"type":   "text",
				"fields": keywordSubField(),
			}
		}
	}
	return expanded
}

// mappingBody builds the index creation body. Unknown fields are rejected by
// the cluster ("dynamic": "strict").
func (i *Index) mappingBody(properties map[string]any) map[string]any {
	mapping := map[string]any{
		"dynamic":    "strict",
		"properties": ExpandProperties(properties),
	}
	if i.typeName != constants.ESDefaultType {
		mapping = map[string]any{i.typeName: mapping}
	}
	return map[string]any{"mappings": mapping}
}

// CreateMapping creates the index with the given field properties,
// optionally deleting an existing index first.
func (i *Index) CreateMapping(ctx context.Context, properties map[string]any, deleteIndex bool) error {
	if deleteIndex {
		if _, err := i.DeleteIndex(ctx); err != nil {
			return err
		}
	}

	body, err := jsonBody(i.mappingBody(properties))
	if err != nil {
		return err
	}

	es := i.client.client
	status, raw, err := readResponse(es.Indices.Create(i.name,
		es.Indices.Create.WithBody(body),
		es.Indices.Create.WithContext(ctx),
	))
	if err != nil {
		return fmt.Errorf("failed to create index %s: %s", i.name, err)
	}
	return decodeResponse(status, raw, nil)
}
