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


package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for indexed chunks.
// It is generated from chunk content, so identical content maps to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the author of a conversation message.
type Role int

const (
	// RoleHuman represents the human user.
	RoleHuman Role = iota + 1
	// RoleAssistant represents the AI assistant.
	RoleAssistant
)

// String returns the conventional lowercase name for the role.
func (r Role) String() string {
	switch r {
	case RoleHuman:
		return "human"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Message is one half of a conversation turn. Messages are immutable once
// appended to a session.
type Message struct {
	Role    Role
	Content string
}

// SourceKind classifies an ingestion source by the extractor it needs.
type SourceKind int

const (
	// SourceUnknown is an unrecognized source type. Unknown sources are
	// skipped during ingestion, not treated as errors.
	SourceUnknown SourceKind = iota
	// SourcePDF is a PDF file.
	SourcePDF
	// SourceText is a plain text file.
	SourceText
	// SourceCSV is a tabular comma-separated file.
	SourceCSV
	// SourceDocx is a word-processing document.
	SourceDocx
	// SourceURL is a web page address.
	SourceURL
)

// String returns a short tag for the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourcePDF:
		return "pdf"
	case SourceText:
		return "text"
	case SourceCSV:
		return "csv"
	case SourceDocx:
		return "docx"
	case SourceURL:
		return "url"
	default:
		return "unknown"
	}
}

// SourceItem is one unit of ingestion input: a filesystem path or a URL,
// tagged with the extractor kind derived from it.
type SourceItem struct {
	Identifier string
	Kind       SourceKind
}

// Chunk is a bounded span of normalized text plus its source provenance.
// Chunks are produced by the ingestion pipeline and owned by the corpus
// index build step.
type Chunk struct {
	Id     ID
	Source string
	Text   string
}

// Session holds one conversation's state. The session store is the only
// component permitted to mutate a Session.
type Session struct {
	Id        string
	Messages  []Message // oldest first
	UpdatedAt time.Time
	TTL       time.Duration
}

// Audio is a mono PCM audio clip exchanged with the speech services.
type Audio struct {
	SampleRate int
	Samples    []float32
}

// ChatRequest describes one conversational turn to run.
type ChatRequest struct {
	SessionID string
	Question  string
	Audio     *Audio // audio question, used when Question is empty
	SrcLang   string
	TgtLang   string
	CorpusID  string
	FreeChat  bool // answer from general knowledge instead of a corpus
	WantAudio bool // synthesize the final answer when possible
}

// ChatResult is the outcome of one conversational turn. A result is always
// well formed: on failure Success is false, Err carries the cause and the
// fields computed before the failing stage are retained.
type ChatResult struct {
	Question string
	AnswerEN string // English-normalized answer
	Answer   string // final answer in the target language
	Success  bool
	Err      error
	Elapsed  time.Duration
	Audio    *Audio
}
