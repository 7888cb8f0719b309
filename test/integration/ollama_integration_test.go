// Exercises the Ollama-backed providers against a live local server.
// Everything here skips when Ollama is not reachable, so the suite stays
// green on machines without a model pulled.

package integration

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"ai-docs-assistant-be/pkg/embedding"
	"ai-docs-assistant-be/pkg/llm"
	llmOllama "ai-docs-assistant-be/pkg/llm/ollama"

	"github.com/joho/godotenv"
)

func ollamaBaseURL() string {
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:11434"
}

func requireOllama(t *testing.T) string {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	baseURL := ollamaBaseURL()
	client := &http.Client{Timeout: 5 * time.Second}
	res, err := client.Get(baseURL)
	if err != nil {
		t.Skipf("Skipping integration test: Ollama not running at %s: %v", baseURL, err)
	}
	res.Body.Close()
	return baseURL
}

// TestOllamaEmbedding verifies the embedding provider returns usable vectors.
func TestOllamaEmbedding(t *testing.T) {
	baseURL := requireOllama(t)

	model := os.Getenv("OLLAMA_EMBEDDING_MODEL")
	if model == "" {
		model = "nomic-embed-text"
	}
	provider := embedding.NewOllamaProvider(baseURL, model)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resp, err := provider.Generate(ctx, "bucket lifecycle policy for long retention", embedding.TaskQuery)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	dims := len(resp.Embedding.Values)
	t.Logf("✅ Generated embedding with %d dimensions", dims)

	if dims == 0 {
		t.Fatal("Embedding should not be empty")
	}

	// nomic-embed-text produces 768 dimensions
	if model == "nomic-embed-text" && dims != 768 {
		t.Errorf("Expected 768 dimensions for nomic-embed-text, got %d", dims)
	}
}

// TestOllamaGenerate verifies single-prompt generation through the LLM provider.
func TestOllamaGenerate(t *testing.T) {
	baseURL := requireOllama(t)

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "llama3"
	}
	provider := llmOllama.NewOllamaProvider(baseURL, model)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	response, err := provider.Generate(ctx, "Say 'Ollama works!' in one sentence.")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	t.Logf("✅ Response: %s", response)

	if response == "" {
		t.Error("Response should not be empty")
	}
}

// TestOllamaMultiTurnChat verifies context retention across turns.
func TestOllamaMultiTurnChat(t *testing.T) {
	baseURL := requireOllama(t)

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "llama3"
	}
	provider := llmOllama.NewOllamaProvider(baseURL, model)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	history := []llm.Message{
		{Role: "user", Content: "My name is John"},
		{Role: "assistant", Content: "Nice to meet you, John!"},
		{Role: "user", Content: "What is my name?"},
	}

	response, err := provider.Chat(ctx, history)
	if err != nil {
		t.Fatalf("Multi-turn chat failed: %v", err)
	}

	t.Logf("✅ Response: %s", response)

	if !strings.Contains(response, "John") {
		t.Logf("⚠️ Response may not correctly remember the name. Response: %s", response)
	}
}

// TestOllamaGroundedAnswer checks the model stays on the supplied context,
// the same shape of prompt the vector tier sends.
func TestOllamaGroundedAnswer(t *testing.T) {
	baseURL := requireOllama(t)

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "llama3"
	}
	provider := llmOllama.NewOllamaProvider(baseURL, model)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	prompt := `Answer using only the context below.

Context:
bucket: finance-reports | department: finance | label: audit | size: 18GB

Question: Which department owns the finance-reports bucket?`

	response, err := provider.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	t.Logf("✅ Response: %s", response)

	if !strings.Contains(strings.ToLower(response), "finance") {
		t.Logf("⚠️ Expected the answer to mention finance. Response: %s", response)
	}
}
