package domain

import (
	"github.com/minio/highwayhash"
)

var shardKey = []byte("ocdsmap-shard-key-0123456789ABCD")

// Shard selects the business keys one worker owns. Keys are partitioned by hash,
// so all rows of a release land on the same worker.
type Shard struct {
	Index int
	Total int
}

// Owns reports whether key belongs to this shard. A zero or single shard owns everything.
func (s Shard) Owns(key string) bool {
	if s.Total <= 1 {
		return true
	}

	h, err := highwayhash.New64(shardKey)
	if err != nil {
		return true
	}

	_, _ = h.Write([]byte(key))

	return h.Sum64()%uint64(s.Total) == uint64(s.Index)
}
