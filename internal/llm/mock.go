package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	Err      error
	Calls    int
	LastSent []ChatMessage
}

func (m *MockClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	m.Calls++
	m.LastSent = messages
	return m.Response, m.Err
}

// MockEmbedder permite tests sin servicio de embeddings.
type MockEmbedder struct {
	Vector []float32
	Err    error
}

func (m *MockEmbedder) Embed(ctx context.Context, input string) ([]float32, error) {
	return m.Vector, m.Err
}
