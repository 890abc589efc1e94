package embedcache

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// qdrant payload keys for cached template embeddings
const (
	payloadTemplateID = "template_id"
	payloadModel      = "model"
)

// QdrantStore persists the embedding cache as points in a Qdrant collection,
// one point per template keyed by a deterministic UUID derived from the
// template id.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantStore creates a new Qdrant cache store.
// url should be in format "host:port" (e.g., "localhost:6334").
func NewQdrantStore(ctx context.Context, url, collection string) (*QdrantStore, error) {
	host, portStr, err := net.SplitHostPort(url)
	if err != nil {
		// If no port specified, assume default
		host = url
		portStr = "6334"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port in qdrant url: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	if collection == "" {
		collection = "template_embeddings"
	}

	return &QdrantStore{client: client, collection: collection}, nil
}

// Close closes the Qdrant client connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// pointID returns the deterministic point UUID for a template id.
func pointID(templateID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("template:"+templateID)).String()
}

func (s *QdrantStore) ensureCollection(ctx context.Context, dimension int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Load scrolls all points recorded for the given model and returns their
// vectors keyed by template id. A missing collection yields an empty map.
func (s *QdrantStore) Load(ctx context.Context, model string) (map[string][]float32, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return map[string][]float32{}, nil
	}

	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(payloadModel, model),
			},
		},
		Limit:       qdrant.PtrOf(uint32(4096)),
		WithPayload: qdrant.NewWithPayload(true),
		WithVectors: qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll embeddings: %w", err)
	}

	embeddings := make(map[string][]float32, len(points))
	for _, point := range points {
		payload := point.GetPayload()
		if payload == nil {
			continue
		}
		templateID := payload[payloadTemplateID].GetStringValue()
		if templateID == "" {
			continue
		}

		vector := point.GetVectors().GetVector().GetData()
		if len(vector) == 0 {
			continue
		}
		embeddings[templateID] = vector
	}

	return embeddings, nil
}

// Save upserts one point per cached template.
func (s *QdrantStore) Save(ctx context.Context, model string, embeddings map[string][]float32) error {
	if len(embeddings) == 0 {
		return nil
	}

	dimension := 0
	for _, vec := range embeddings {
		dimension = len(vec)
		break
	}
	if err := s.ensureCollection(ctx, dimension); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(embeddings))
	for templateID, vec := range embeddings {
		points = append(points, &qdrant.PointStruct{
			Id: qdrant.NewIDUUID(pointID(templateID)),
			Payload: map[string]*qdrant.Value{
				payloadTemplateID: qdrant.NewValueString(templateID),
				payloadModel:      qdrant.NewValueString(model),
			},
			Vectors: qdrant.NewVectors(vec...),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert embeddings: %w", err)
	}

	return nil
}

// Ensure QdrantStore implements CacheStore
var _ CacheStore = (*QdrantStore)(nil)
