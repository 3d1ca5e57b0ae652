package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"afcon-assistant-be/internal/entity"
	"afcon-assistant-be/internal/repository/implementation"
	"afcon-assistant-be/pkg/database"
	"afcon-assistant-be/pkg/embedding"
	"afcon-assistant-be/pkg/store"
	"afcon-assistant-be/pkg/utils"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// seedDocument is the shape of the scraped JSON files under the data dir.
type seedDocument struct {
	Source   string `json:"source"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
	Sections []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"sections"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	dataDir := os.Getenv("SEED_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var embedder embedding.EmbeddingProvider
	if os.Getenv("EMBEDDING_PROVIDER") == "gemini" {
		embedder = embedding.NewGeminiProvider(os.Getenv("GEMINI_API_KEY"))
	} else {
		embedder = embedding.NewOllamaProvider(
			os.Getenv("OLLAMA_BASE_URL"),
			os.Getenv("OLLAMA_EMBED_MODEL"),
		)
	}

	repo := implementation.NewFragmentRepository(db)
	ctx := context.Background()

	files, err := filepath.Glob(filepath.Join(dataDir, "*.json"))
	if err != nil || len(files) == 0 {
		log.Fatalf("Error: No seed files found under %s", dataDir)
	}

	totalFragments := 0
	for _, file := range files {
		doc, err := loadSeedDocument(file)
		if err != nil {
			color.Red("✗ %s: %v", file, err)
			continue
		}

		fragments, err := buildFragments(doc, embedder)
		if err != nil {
			color.Red("✗ %s: %v", file, err)
			continue
		}

		if err := repo.CreateBulk(ctx, fragments); err != nil {
			color.Red("✗ %s: store failed: %v", file, err)
			continue
		}

		totalFragments += len(fragments)
		color.Green("✓ %s: %d fragments", filepath.Base(file), len(fragments))
	}

	color.Green("Seeding completed: %d fragments stored", totalFragments)
}

func loadSeedDocument(path string) (*seedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc seedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func buildFragments(doc *seedDocument, embedder embedding.EmbeddingProvider) ([]*entity.Fragment, error) {
	var fragments []*entity.Fragment
	for _, section := range doc.Sections {
		chunks := utils.SplitText(section.Content, 1500, 200)
		for i, chunk := range chunks {
			res, err := embedder.Generate(chunk, "RETRIEVAL_DOCUMENT")
			if err != nil {
				return nil, err
			}
			fragments = append(fragments, &entity.Fragment{
				Id:             uuid.New(),
				Content:        chunk,
				EmbeddingValue: res.Embedding.Values,
				Metadata: store.FragmentMetadata{
					Source:      doc.Source,
					Category:    doc.Category,
					Priority:    doc.Priority,
					Section:     section.Title,
					ChunkIndex:  i,
					TotalChunks: len(chunks),
				},
				CreatedAt: time.Now(),
			})
		}
	}
	return fragments, nil
}
