// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/secondbrain/core"
)

// cardVersion prefixes every encoded card so the layout can evolve.
const cardVersion = 1

// MarshalCard serializes a Card to bytes.
func MarshalCard(card *core.Card) []byte {
	buf := make([]byte, cardSize(card))
	n := varint.Int.Marshal(cardVersion, buf)
	n += ord.String.Marshal(card.ID, buf[n:])
	n += ord.String.Marshal(card.Title, buf[n:])
	n += ord.String.Marshal(card.Content, buf[n:])
	n += ord.String.Marshal(card.Summary, buf[n:])
	n += varint.Int.Marshal(int(card.Type), buf[n:])
	n += ord.String.Marshal(card.Source, buf[n:])
	n += varint.Int.Marshal(len(card.Tags), buf[n:])
	for _, tag := range card.Tags {
		n += ord.String.Marshal(tag, buf[n:])
	}
	n += varint.Int64.Marshal(timeToMicros(card.CreatedAt), buf[n:])
	n += varint.Int64.Marshal(timeToMicros(card.UpdatedAt), buf[n:])
	n += ord.String.Marshal(card.Language, buf[n:])
	n += ord.String.Marshal(card.AIModel, buf[n:])
	n += ord.String.Marshal(card.SummaryType, buf[n:])
	n += ord.String.Marshal(card.ThumbnailURL, buf[n:])
	varint.Int.Marshal(card.PageCount, buf[n:])
	return buf
}

func cardSize(card *core.Card) int {
	size := varint.Int.Size(cardVersion)
	size += ord.String.Size(card.ID)
	size += ord.String.Size(card.Title)
	size += ord.String.Size(card.Content)
	size += ord.String.Size(card.Summary)
	size += varint.Int.Size(int(card.Type))
	size += ord.String.Size(card.Source)
	size += varint.Int.Size(len(card.Tags))
	for _, tag := range card.Tags {
		size += ord.String.Size(tag)
	}
	size += varint.Int64.Size(timeToMicros(card.CreatedAt))
	size += varint.Int64.Size(timeToMicros(card.UpdatedAt))
	size += ord.String.Size(card.Language)
	size += ord.String.Size(card.AIModel)
	size += ord.String.Size(card.SummaryType)
	size += ord.String.Size(card.ThumbnailURL)
	size += varint.Int.Size(card.PageCount)
	return size
}

// cardReader walks an encoded card, remembering the first error.
type cardReader struct {
	data []byte
	off  int
	err  error
}

func (r *cardReader) readString() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.data[r.off:])
	r.off += n
	r.err = err
	return v
}

func (r *cardReader) readInt() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.data[r.off:])
	r.off += n
	r.err = err
	return v
}

func (r *cardReader) readTime() time.Time {
	if r.err != nil {
		return time.Time{}
	}
	v, n, err := varint.Int64.Unmarshal(r.data[r.off:])
	r.off += n
	r.err = err
	return microsToTime(v)
}

// UnmarshalCard deserializes a Card from bytes.
func UnmarshalCard(data []byte) (*core.Card, error) {
	r := &cardReader{data: data}
	if version := r.readInt(); r.err == nil && version != cardVersion {
		return nil, fmt.Errorf("%w: unknown card version %d", ErrSerializationFailed, version)
	}

	card := &core.Card{}
	card.ID = r.readString()
	card.Title = r.readString()
	card.Content = r.readString()
	card.Summary = r.readString()
	card.Type = core.CardType(r.readInt())
	card.Source = r.readString()
	tagCount := r.readInt()
	if r.err == nil && (tagCount < 0 || tagCount > len(data)) {
		return nil, fmt.Errorf("%w: invalid tag count %d", ErrSerializationFailed, tagCount)
	}
	if tagCount > 0 {
		card.Tags = make([]string, 0, tagCount)
		for i := 0; i < tagCount && r.err == nil; i++ {
			card.Tags = append(card.Tags, r.readString())
		}
	}
	card.CreatedAt = r.readTime()
	card.UpdatedAt = r.readTime()
	card.Language = r.readString()
	card.AIModel = r.readString()
	card.SummaryType = r.readString()
	card.ThumbnailURL = r.readString()
	card.PageCount = r.readInt()

	if r.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, r.err)
	}
	return card, nil
}

// timeToMicros keeps the zero time distinct from the Unix epoch.
func timeToMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microsToTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}
