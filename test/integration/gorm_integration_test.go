package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-docs-assistant-be/internal/entity"
	"ai-docs-assistant-be/internal/repository/implementation"
	"ai-docs-assistant-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

// testVector produces a 768-dim vector pointing along one axis. The axis
// choice keeps planted rows far away from any real embedding.
func testVector(axis int, value float32) []float32 {
	v := make([]float32, 768)
	v[axis] = value
	return v
}

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB")

	chunkRepo := implementation.NewDocumentChunkRepository(gormDB)
	usageRepo := implementation.NewUsageStatRepository(gormDB)

	ctx := context.Background()

	// Verify Data Access (implies tables and the vector extension exist)
	t.Run("Check Document Chunk Repository", func(t *testing.T) {
		count, err := chunkRepo.Count(ctx)
		assert.NoError(t, err)
		t.Logf("DocumentChunk count: %d", count)
	})

	t.Run("Similarity Search Round Trip", func(t *testing.T) {
		// Plant three chunks along separate axes so ordering is unambiguous.
		chunks := []*entity.DocumentChunk{
			{Source: "it-test-lifecycle.md", ChunkIndex: 0, Content: "retention policy chunk", Embedding: testVector(700, 1)},
			{Source: "it-test-quota.txt", ChunkIndex: 0, Content: "quota chunk", Embedding: testVector(710, 1)},
			{Source: "it-test-cdn.md", ChunkIndex: 0, Content: "cdn chunk", Embedding: testVector(720, 1)},
		}

		err := chunkRepo.CreateBulk(ctx, chunks)
		assert.NoError(t, err)

		defer func() {
			gormDB.Exec("DELETE FROM document_chunks WHERE source LIKE 'it-test-%'")
		}()

		// Nearest neighbour to the lifecycle axis must be the lifecycle chunk.
		results, err := chunkRepo.SearchSimilar(ctx, testVector(700, 1), 1)
		assert.NoError(t, err)
		if assert.NotEmpty(t, results) {
			assert.Equal(t, "it-test-lifecycle.md", results[0].Source)
		}

		// Scored variant: the planted exact match scores ~1.0 and outranks
		// everything else; threshold filters the orthogonal plants out.
		scored, err := chunkRepo.SearchSimilarWithScore(ctx, testVector(710, 1), 5, 0.9)
		assert.NoError(t, err)
		if assert.NotEmpty(t, scored) {
			assert.Equal(t, "it-test-quota.txt", scored[0].Chunk.Source)
			assert.InDelta(t, 1.0, scored[0].Similarity, 0.01)
		}
	})

	t.Run("Usage Stat Snapshot Round Trip", func(t *testing.T) {
		stat := &entity.UsageStat{
			TotalQueries: 42,
			BySource: map[string]entity.SourceUsage{
				"cache":        {Count: 30, TotalMs: 90, MinMs: 1, MaxMs: 12},
				"quick_search": {Count: 12, TotalMs: 5400, MinMs: 150, MaxMs: 900},
			},
		}

		err := usageRepo.Create(ctx, stat)
		assert.NoError(t, err)
		assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", stat.Id.String())

		defer func() {
			gormDB.Exec("DELETE FROM usage_stats WHERE id = ?", stat.Id)
		}()

		latest, err := usageRepo.FindLatest(ctx)
		assert.NoError(t, err)
		if assert.NotNil(t, latest) {
			assert.Equal(t, stat.Id, latest.Id)
			assert.Equal(t, int64(42), latest.TotalQueries)
			assert.Equal(t, int64(30), latest.BySource["cache"].Count)
			assert.Equal(t, float64(900), latest.BySource["quick_search"].MaxMs)
		}
	})
}
