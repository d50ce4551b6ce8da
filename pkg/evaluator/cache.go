package evaluator

import (
	"encoding/binary"
	"hash/fnv"
	"strconv"

	"github.com/rinha-lang/rinha-go/pkg/ast"
)

// Cache memoizes the results of pure function calls for the duration of one
// evaluation run. Keys combine the callee body's structural fingerprint with
// the hashes of the argument values; entries are added and never evicted.
type Cache map[string]Value

// NewCache creates an empty cache.
func NewCache() Cache {
	return make(Cache)
}

// cacheKey derives the cache key for a call. It returns ok=false when any
// argument is unhashable (a closure, possibly nested in a tuple), in which
// case the call must be evaluated without the cache. The key depends only on
// the body's own content and the argument values, never on the rest of the
// calling environment.
func cacheKey(body ast.Term, arguments []Value) (string, bool) {
	hashes := make([]uint64, len(arguments))
	for i, arg := range arguments {
		h, err := HashValue(arg)
		if err != nil {
			return "", false
		}
		hashes[i] = h
	}

	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], ast.Fingerprint(body))
	h.Write(buf[:])
	for _, argHash := range hashes {
		binary.BigEndian.PutUint64(buf[:], argHash)
		h.Write(buf[:])
	}
	return strconv.FormatUint(h.Sum64(), 16), true
}
