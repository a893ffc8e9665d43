// Package jsonutil reads and writes MongoDB extended JSON so that values
// like ObjectID and DateTime survive a trip through text.
package jsonutil

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Dump renders v as relaxed extended JSON. v must be document-like: a map,
// a struct, bson.D or bson.Raw. Non-ASCII characters are kept as is.
func Dump(v any) (string, error) {
	data, err := bson.MarshalExtJSON(v, false, false)
	if err != nil {
		return "", fmt.Errorf("failed to marshal extended json: %s", err)
	}
	return string(data), nil
}

// Load parses an extended JSON document into a bson.M. Nested documents
// decode as bson.M and arrays as bson.A.
func Load(s string) (bson.M, error) {
	out := bson.M{}
	if err := LoadInto(s, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadInto parses an extended JSON document into out, which must be a pointer.
func LoadInto(s string, out any) error {
	if err := bson.UnmarshalExtJSON([]byte(s), false, out); err != nil {
		return fmt.Errorf("failed to unmarshal extended json: %s", err)
	}
	return nil
}
