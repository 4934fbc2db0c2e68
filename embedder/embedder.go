package embedder

import "context"

// Embedder turns text into fixed-dimension vectors. EmbedBatch is
// order-preserving and returns one vector per input text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
