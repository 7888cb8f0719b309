package factory

import (
	"fmt"

	"ai-docs-assistant-be/pkg/embedding"
	"ai-docs-assistant-be/pkg/embedding/jina"
)

func NewEmbeddingProvider(providerType, baseURL, model, geminiKey, jinaKey string) (embedding.EmbeddingProvider, error) {
	switch providerType {
	case "ollama":
		return embedding.NewOllamaProvider(baseURL, model), nil
	case "gemini":
		return embedding.NewGeminiProvider(geminiKey), nil
	case "jina":
		return jina.NewJinaProvider(jinaKey), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
