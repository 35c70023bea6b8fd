// Package mock provides test doubles for the ai package.
//
// MockEmbedder implements ai.Embedder for use in unit tests. It allows tests
// to run without an embedding service and gives controlled, deterministic
// vectors.
//
// # Usage in Tests
//
//	// Default behavior: deterministic unit vectors derived from the text hash
//	embedder := mock.NewMockEmbedderWithDimension(8)
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Fixed vectors for known texts
//	embedder := mock.NewStaticEmbedder(map[string][]float32{
//	    "heart": {1, 0, 0},
//	})
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("service down")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
package mock
