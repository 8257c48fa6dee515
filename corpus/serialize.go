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


package corpus

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/parley/core"
)

// record is the persisted form of an indexed chunk: the chunk fields plus
// its normalized embedding vector.
type record struct {
	Id     uint64
	Source string
	Text   string
	Vector []float32
}

var vectorSer = ord.NewSliceSer[float32](varint.Float32)

// marshalRecord serializes a record to bytes in MUS format.
func marshalRecord(r *record) []byte {
	size := varint.Uint64.Size(r.Id) +
		ord.String.Size(r.Source) +
		ord.String.Size(r.Text) +
		vectorSer.Size(r.Vector)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(r.Id, buf)
	n += ord.String.Marshal(r.Source, buf[n:])
	n += ord.String.Marshal(r.Text, buf[n:])
	vectorSer.Marshal(r.Vector, buf[n:])
	return buf
}

// unmarshalRecord deserializes a record from bytes.
func unmarshalRecord(data []byte) (*record, error) {
	var (
		r   record
		n   int
		err error
	)

	r.Id, n, err = varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	var m int
	r.Source, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	r.Text, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	r.Vector, _, err = vectorSer.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// recordFromChunk pairs a chunk with its embedding vector.
func recordFromChunk(chunk core.Chunk, vector []float32) *record {
	return &record{
		Id:     uint64(chunk.Id),
		Source: chunk.Source,
		Text:   chunk.Text,
		Vector: vector,
	}
}
