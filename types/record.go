/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import "sort"

// Record is a single document or row keyed by field name. Values are plain
// JSON-like Go values: string, numbers, bool, nil, map[string]any and []any,
// plus driver scalars such as time.Time for SQL rows.
type Record map[string]any

// Keys returns the field names in sorted order
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ExtractID removes the identifier from the record and returns it. Both
// "id" and "_id" are removed; "_id" wins when both are present. A nil,
// empty-string or zero value counts as absent.
func (r Record) ExtractID() (any, bool) {
	var id any
	if v, found := r["id"]; found {
		id = v
		delete(r, "id")
	}
	if v, found := r["_id"]; found {
		id = v
		delete(r, "_id")
	}

	if IsEmpty(id) {
		return nil, false
	}
	return id, true
}

// IsEmpty reports whether v is a zero-ish value: nil, "", 0, false or an
// empty map/slice.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []byte:
		return len(val) == 0
	case bool:
		return !val
	case int:
		return val == 0
	case int8:
		return val == 0
	case int16:
		return val == 0
	case int32:
		return val == 0
	case int64:
		return val == 0
	case uint:
		return val == 0
	case uint8:
		return val == 0
	case uint16:
		return val == 0
	case uint32:
		return val == 0
	case uint64:
		return val == 0
	case float32:
		return val == 0
	case float64:
		return val == 0
	case map[string]any:
		return len(val) == 0
	case Record:
		return len(val) == 0
	case []any:
		return len(val) == 0
	default:
		return false
	}
}
