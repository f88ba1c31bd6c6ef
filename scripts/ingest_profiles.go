package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/config"
	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
	"alfredoptarigan/talent-matcher/internal/services"
)

// Usage: go run scripts/ingest_profiles.go <organization-id> <resume-dir>
func main() {
	log.Println("🚀 Starting profile ingestion...")

	if len(os.Args) < 3 {
		log.Fatalf("❌ Usage: ingest_profiles <organization-id> <resume-dir>")
	}
	orgID, dir := os.Args[1], os.Args[2]

	// Load configuration
	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	profileRepo := repositories.NewProfileRepository(db)

	pdfParser := services.NewPDFParserService()
	prompts := services.NewPromptBuilder()

	var geminiService services.GeminiService
	if cfg.Gemini.Enabled() {
		geminiService, err = services.NewGeminiService(cfg.Gemini, cfg.Worker.RetryInitialDelay)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Gemini: %v", err)
		}
	} else {
		log.Println("⚠️  GEMINI_API_KEY not set, profiles will only carry resume text")
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		log.Fatalf("❌ Failed to list resumes: %v", err)
	}

	ctx := context.Background()
	successCount := 0
	failCount := 0

	for _, path := range paths {
		log.Printf("\n📄 Processing: %s", filepath.Base(path))

		content, err := pdfParser.ExtractTextWithMetaData(path)
		if err != nil {
			log.Printf("   ❌ Failed to extract text: %v", err)
			failCount++
			continue
		}
		log.Printf("   ✅ Extracted %d pages, %d characters", content.PageCount, len(content.Text))

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		document := map[string]any{"summary": content.Text}

		if geminiService != nil {
			prompt := prompts.BuildProfileExtractionPrompt(content.Text)
			response, err := geminiService.GenerateTextWithRetry(ctx, prompt, 0, cfg.Worker.RetryMaxAttempts)
			if err != nil {
				log.Printf("   ⚠️  Structuring failed, storing text only: %v", err)
			} else if doc, err := decodeDocument(response); err != nil {
				log.Printf("   ⚠️  Unreadable structured profile, storing text only: %v", err)
			} else {
				document = doc
				if n, ok := doc["name"].(string); ok && n != "" {
					name = n
				}
			}
		}

		profile := &models.CandidateProfile{
			ID:             uuid.New(),
			OrganizationID: orgID,
			Name:           name,
			Document:       document,
			ResumeText:     content.Text,
		}
		if err := profileRepo.Create(profile); err != nil {
			log.Printf("   ❌ Failed to store profile: %v", err)
			failCount++
			continue
		}

		log.Printf("   ✅ Stored profile %s (%s)", profile.ID, name)
		successCount++
	}

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Ingestion Summary:")
	log.Printf("   ✅ Successful: %d profiles", successCount)
	log.Printf("   ❌ Failed: %d profiles", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some resumes failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All resumes ingested successfully!")
}

// decodeDocument strips markdown fences the model may add around its JSON.
func decodeDocument(response string) (map[string]any, error) {
	text := strings.TrimSpace(response)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var doc map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
