package corpus

import "fmt"

// Key prefixes inside a corpus index
const (
	chunkRecordPrefix = "chkrec"
)

// makeChunkKey generates the key for a chunk record by ID.
func makeChunkKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}
