package search

import "context"

// Embedder turns query text into a vector. Satisfied by the Azure
// OpenAI client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever answers "given query text, return the top-k rule
// documents" by chaining embedding and similarity search. No caching,
// no dedup.
type Retriever struct {
	embedder Embedder
	client   *Client
}

func NewRetriever(embedder Embedder, client *Client) *Retriever {
	return &Retriever{embedder: embedder, client: client}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]Document, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.client.SimilaritySearch(ctx, vector, k)
}
