// Package knowledgebases manages document collections used for retrieval
package knowledgebases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/internal/transport"
)

const basePath = "/v1/knowledge_bases"

var ErrNameRequired = errors.New("knowledge base name is required")

type Ingestion struct {
	BatchSize           int            `json:"batch_size"`
	DefaultChunkSize    int            `json:"default_chunk_size"`
	DefaultChunkOverlap int            `json:"default_chunk_overlap"`
	EnrichChunksMode    string         `json:"enrich_chunks_mode"`
	EnrichPreMadeQA     bool           `json:"enrich_pre_made_qa"`
	Methods             map[string]any `json:"methods"`
}

type Retrieval struct {
	Type             string         `json:"type"`
	HybridSettings   map[string]any `json:"hybrid_settings"`
	RerankerSettings map[string]any `json:"reranker_settings"`
}

// Settings controls which sources a knowledge base accepts and how they are
// chunked, embedded and retrieved
type Settings struct {
	AllowedSources []string       `json:"allowed_sources"`
	Ingestion      Ingestion      `json:"ingestion"`
	Retrieval      Retrieval      `json:"retrieval"`
	Embeddings     map[string]any `json:"embeddings"`
}

type KnowledgeBase struct {
	ID                  string         `json:"id"`
	GroupID             string         `json:"group_id"`
	Name                string         `json:"name"`
	Status              string         `json:"status"`
	Description         string         `json:"description"`
	DocumentTypes       []string       `json:"document_types"`
	KBType              string         `json:"kb_type"`
	Size                int            `json:"size"`
	NumDocs             int            `json:"num_docs"`
	CreatedAt           string         `json:"created_at"`
	UpdatedAt           string         `json:"updated_at"`
	Error               map[string]any `json:"error"`
	TotalDocuments      int            `json:"total_documents"`
	TrainingDocuments   int            `json:"training_documents"`
	TrainedDocuments    int            `json:"trained_documents"`
	ErrorDocuments      int            `json:"error_documents"`
	UploadedDocuments   int            `json:"uploaded_documents"`
	SourceTypes         map[string]any `json:"source_types"`
	TrainingSourceTypes []string       `json:"training_source_types"`
	Settings            Settings       `json:"settings_"`
	Retrieval           map[string]any `json:"retrieval"`
	Embeddings          map[string]any `json:"embeddings"`
}

// Training reports whether documents are still being ingested
func (kb *KnowledgeBase) Training() bool {
	return kb.TrainingDocuments > 0
}

type Service struct {
	requester *transport.Requester
	logger    *slog.Logger
}

func NewService(r *transport.Requester, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{requester: r, logger: logger}
}

// List returns one page of knowledge bases
func (s *Service) List(ctx context.Context, page, size int) ([]KnowledgeBase, error) {
	out, err := transport.GetPage[KnowledgeBase](ctx, s.requester, basePath, page, size, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list knowledge bases")
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := s.requester.Get(ctx, fmt.Sprintf("%s/%s", basePath, id), nil, &kb); err != nil {
		return nil, errors.Wrapf(err, "failed to get knowledge base %s", id)
	}
	return &kb, nil
}

type createRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	DocumentTypes []string `json:"document_types"`
	Settings      Settings `json:"settings_"`
}

func (s *Service) Create(ctx context.Context, name, description string, documentTypes []string, settings Settings) (*KnowledgeBase, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if documentTypes == nil {
		documentTypes = []string{}
	}
	var kb KnowledgeBase
	err := s.requester.Post(ctx, basePath, createRequest{
		Name:          name,
		Description:   description,
		DocumentTypes: documentTypes,
		Settings:      settings,
	}, &kb)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create knowledge base %q", name)
	}
	s.logger.Info("Knowledge base created.", "kb_id", kb.ID, "name", kb.Name)
	return &kb, nil
}

// Refresh overwrites kb with the backend copy
func (s *Service) Refresh(ctx context.Context, kb *KnowledgeBase) error {
	fresh, err := s.Get(ctx, kb.ID)
	if err != nil {
		return err
	}
	*kb = *fresh
	return nil
}
