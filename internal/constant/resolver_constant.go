package constant

const (
	// TIER PROMPTS - rendered with fmt.Sprintf(template, context, question)

	// QuickSearchAnswerPrompt phrases an answer over the exact metadata
	// lines the structured index matched.
	QuickSearchAnswerPrompt = `Based on this bucket information:
%s

Question: %s
Answer:`

	// VectorAnswerPrompt is the retrieval-QA stuffing prompt over the
	// embedded chunks.
	VectorAnswerPrompt = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

%s

Question: %s
Helpful Answer:`

	// FulltextAnswerPrompt phrases an answer over the scored corpus lines.
	FulltextAnswerPrompt = `Based on this information:
%s

Question: %s
Answer:`

	// Ollama Configuration
	OllamaDefaultBaseURL     = "http://localhost:11434"
	OllamaChatEndpoint       = "/api/chat"
	OllamaEmbeddingsEndpoint = "/api/embeddings"
)
