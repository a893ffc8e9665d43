package utils

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var (
	ulidMutex   sync.Mutex
	ulidEntropy = ulid.Monotonic(rand.Reader, 0)
)

// Ternary returns a when cond holds, b otherwise
func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

// ULID returns a new lexically sortable unique id
func ULID() string {
	ulidMutex.Lock()
	defer ulidMutex.Unlock()

	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String())
}

// ExistInArray reports whether value is an element of set
func ExistInArray[T comparable](set []T, value T) bool {
	for _, elem := range set {
		if elem == value {
			return true
		}
	}
	return false
}
