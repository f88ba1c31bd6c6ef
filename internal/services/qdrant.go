package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"alfredoptarigan/talent-matcher/internal/config"
)

// EmbeddingCache stores text embeddings keyed by model and text, so
// repeated DESCRIPTIVE comparisons do not call the embedding API again.
type EmbeddingCache interface {
	InitCollection(ctx context.Context) error
	Get(ctx context.Context, model, text string) ([]float32, bool, error)
	Put(ctx context.Context, model, text string, embedding []float32) error
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

// embeddingNamespace seeds the deterministic point ids.
var embeddingNamespace = uuid.MustParse("6f1c9a52-3b0e-4d8a-9c39-8a3b7f6de021")

func NewQdrantService(cfg config.QdrantConfig) (EmbeddingCache, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" && p != "6333" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: cfg.Collection,
		vectorSize:     cfg.VectorSize,
	}, nil
}

// InitCollection implements EmbeddingCache.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

func embeddingPointID(model, text string) string {
	return uuid.NewSHA1(embeddingNamespace, []byte(model+"\x00"+text)).String()
}

// Get implements EmbeddingCache.
func (q *qdrantService) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName,
		Ids:            []*qdrant.PointId{qdrant.NewID(embeddingPointID(model, text))},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached embedding: %w", err)
	}
	if len(points) == 0 {
		return nil, false, nil
	}

	vector := points[0].GetVectors().GetVector()
	if dense := vector.GetDense(); dense != nil {
		return dense.GetData(), true, nil
	}
	if data := vector.GetData(); len(data) > 0 {
		return data, true, nil
	}
	return nil, false, nil
}

// Put implements EmbeddingCache.
func (q *qdrantService) Put(ctx context.Context, model, text string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(embeddingPointID(model, text)),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"model": model,
			"text":  text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}
