package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Key hashes a raw cache key (normalized URL plus variant) into a short
// fixed-width identifier
func Key(raw string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(raw))
}
