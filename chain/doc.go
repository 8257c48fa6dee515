// Package chain assembles prompt-driven answer chains over corpus
// retrievers. A retrieval chain rephrases the question against chat
// history, pulls relevant chunks, and answers grounded in them; a
// free-chat chain talks from history alone.
package chain
