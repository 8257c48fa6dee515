package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Ready reports whether the embedding service can currently serve requests.
	Ready(ctx context.Context) bool
}

// GenerateOptions tunes a single generation call. A nil *GenerateOptions
// means DefaultGenerateOptions.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
}

// DefaultGenerateOptions returns the generation parameters used when the
// caller does not override them.
func DefaultGenerateOptions() *GenerateOptions {
	return &GenerateOptions{
		MaxTokens:   200,
		Temperature: 0.1,
		TopP:        0.95,
		TopK:        20,
	}
}

// Generator produces text completions from prompts.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate runs one completion for the prompt. opts may be nil.
	Generate(ctx context.Context, prompt string, opts *GenerateOptions) (string, error)

	// Ready reports whether the generation backend can currently serve requests.
	Ready(ctx context.Context) bool
}

// Translator translates text between languages identified by BCP-47-style
// tags such as "en" or "de".
type Translator interface {
	// Translate translates text from srcLang to tgtLang.
	Translate(ctx context.Context, text, srcLang, tgtLang string) (string, error)

	// Ready reports whether the translation service can currently serve requests.
	Ready(ctx context.Context) bool
}

// Transcript is the result of speech recognition: the recognized text and
// the language the recognizer detected.
type Transcript struct {
	Text     string
	Language string
}

// Transcriber converts speech audio into text.
type Transcriber interface {
	// Transcribe recognizes the samples and returns the transcript along
	// with the detected language.
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (*Transcript, error)

	// Ready reports whether the transcription service can currently serve requests.
	Ready(ctx context.Context) bool
}

// Synthesis is the result of speech synthesis.
type Synthesis struct {
	SampleRate int
	Samples    []float32
}

// Synthesizer converts text into speech audio.
type Synthesizer interface {
	// Synthesize renders text in the given language as audio.
	Synthesize(ctx context.Context, text, language string) (*Synthesis, error)

	// Ready reports whether the synthesis service can currently serve requests.
	Ready(ctx context.Context) bool
}

// Status is a consolidated readiness report across the inference services.
type Status struct {
	Generator   bool
	Translator  bool
	Embedder    bool
	Transcriber bool
	Synthesizer bool
}

// StatusClient reports aggregate readiness of the inference services.
type StatusClient interface {
	// Status returns the readiness of each service. A transport failure is
	// reported as everything-down, not as an error, because callers only
	// branch on readiness.
	Status(ctx context.Context) *Status
}

// Provider aggregates the inference services for convenient initialization
// and lifecycle management.
type Provider interface {
	// Generator returns the text generation service.
	Generator() Generator

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Translator returns the translation service.
	Translator() Translator

	// Transcriber returns the speech recognition service.
	Transcriber() Transcriber

	// Synthesizer returns the speech synthesis service.
	Synthesizer() Synthesizer

	// StatusClient returns the aggregate readiness reporter.
	StatusClient() StatusClient

	// Close releases resources held by the provider and its services.
	Close() error
}
