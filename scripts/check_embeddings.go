//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"math"

	"ai-docs-assistant-be/internal/config"
	"ai-docs-assistant-be/pkg/embedding"
	embeddingFactory "ai-docs-assistant-be/pkg/embedding/factory"
)

// CosineSimilarity calculates similarity between two vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func main() {
	cfg := config.Load()
	fmt.Printf("Loaded Config > Embedding Provider: %s\n", cfg.Ai.EmbeddingProvider)
	fmt.Printf("Loaded Config > Ollama URL: %s\n", cfg.Ai.OllamaBaseURL)
	fmt.Printf("Loaded Config > Ollama Model: %s\n", cfg.Ai.OllamaModel)

	provider, err := embeddingFactory.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
		cfg.Ai.GoogleGeminiKey,
		cfg.Ai.JinaKey,
	)
	if err != nil {
		log.Fatalf("Error initializing provider: %v", err)
	}

	ctx := context.Background()

	// Domain texts: 1 and 2 should land close, 3 should not.
	text1 := "Buckets labelled retention:long keep objects for seven years"
	text2 := "How long are objects kept before moving to cold storage?"
	text3 := "The SMTP relay needs a sender address for alert mail"

	fmt.Println("\n--- Generating Embeddings ---")

	generate := func(label, text string) []float32 {
		resp, err := provider.Generate(ctx, text, embedding.TaskDocument)
		if err != nil {
			log.Fatalf("Error generating embedding for %s: %v", label, err)
		}
		fmt.Printf("[%s] %q -> %d dimensions\n", label, text, len(resp.Embedding.Values))
		return resp.Embedding.Values
	}

	v1 := generate("Text 1", text1)
	v2 := generate("Text 2", text2)
	v3 := generate("Text 3", text3)

	if len(v1) > 5 {
		fmt.Printf("\nFirst 5 values of Text 1: %v...\n", v1[:5])
	}

	fmt.Println("\n--- Semantic Similarity Comparison ---")
	fmt.Println("(Higher is better, 1.0 = identical)")
	simRelated := CosineSimilarity(v1, v2)
	simUnrelated := CosineSimilarity(v1, v3)
	fmt.Printf("Similarity (Text 1 vs Text 2 - Related):   %.4f\n", simRelated)
	fmt.Printf("Similarity (Text 1 vs Text 3 - Unrelated): %.4f\n", simUnrelated)

	fmt.Println("\n--- Conclusion ---")
	if simRelated > simUnrelated {
		fmt.Println("✅ Provider ranks the related pair above the unrelated pair.")
	} else {
		fmt.Println("⚠️  Related pair did NOT outrank the unrelated pair. Retrieval quality will suffer; check the model.")
	}
}
