package knowledge

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
	"github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingsModel is used when no model is configured.
const DefaultEmbeddingsModel = "text-embedding-3-small"

// NewOpenAIEmbeddingFunc embeds text through any OpenAI compatible
// embeddings endpoint (OpenAI, LocalAI, Ollama).
func NewOpenAIEmbeddingFunc(client *openai.Client, model string) chromem.EmbeddingFunc {
	if model == "" {
		model = DefaultEmbeddingsModel
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: openai.EmbeddingModel(model),
		})
		if err != nil {
			return nil, fmt.Errorf("create embeddings: %w", err)
		}

		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("create embeddings: empty response")
		}

		return resp.Data[0].Embedding, nil
	}
}
