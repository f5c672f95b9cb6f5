package badger

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/poiesic/secondbrain/core"
)

// Key prefixes for different data types
const (
	cardPrefix        = "card"
	cardDatePrefix    = "cardd"
	cardTagPrefix     = "cardt"
	cardContentPrefix = "cardc"
)

// makeCardKey generates a key for a card by ID.
func makeCardKey(id string) []byte {
	return []byte(cardPrefix + ":" + id)
}

// makeCardDateKey generates a composite key for the creation date index.
// Format: prefix:timestamp:id
func makeCardDateKey(createdAt time.Time, id string) []byte {
	prefix := []byte(cardDatePrefix + ":")
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	// BigEndian keeps lexicographic order equal to time order
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// makePartialCardTagKey generates the prefix shared by all entries for a tag.
// Format: prefix:tag:
func makePartialCardTagKey(tag string) []byte {
	return []byte(cardTagPrefix + ":" + strings.ToLower(strings.TrimSpace(tag)) + ":")
}

// makeCardTagKey generates a composite key for the tag index.
// Format: prefix:tag:id
func makeCardTagKey(tag, id string) []byte {
	return append(makePartialCardTagKey(tag), id...)
}

// makeCardContentKey generates a key for the content hash index.
// Format: prefix:hash
func makeCardContentKey(content string) []byte {
	prefix := []byte(cardContentPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(content)))
	return buf
}
