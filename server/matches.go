package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/talentsense/ai"
	"github.com/hrygo/talentsense/match"
	"github.com/hrygo/talentsense/store"
)

// matchRequest is the POST /jobs/:jobID/matches payload. Either an embedding
// vector or the raw job text must be supplied; text is embedded server-side.
type matchRequest struct {
	Requirements match.JobRequirements `json:"requirements"`
	JobEmbedding []float32             `json:"job_embedding,omitempty"`
	JobText      string                `json:"job_text,omitempty"`

	TopK     int `json:"top_k,omitempty"`
	PoolSize int `json:"pool_size,omitempty"`
	// MinSimilarity overrides the configured floor when set; an explicit
	// zero disables the floor entirely.
	MinSimilarity *float64            `json:"min_similarity,omitempty"`
	Weights       *match.WeightConfig `json:"weights,omitempty"`
	HardFilter    *bool               `json:"hard_filter,omitempty"`
}

func (s *Server) runMatch(c echo.Context) error {
	jobID, err := parseID(c.Param("jobID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid job id")
	}

	var req matchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	req.Requirements.JobID = jobID

	ctx := c.Request().Context()

	embedding := req.JobEmbedding
	if len(embedding) == 0 {
		if req.JobText == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "job_embedding or job_text required")
		}
		if s.embedder == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "no embedding service configured; supply job_embedding")
		}
		// Long job descriptions are chunked and the chunk vectors
		// averaged into one query vector.
		embedding, err = ai.EmbedDocument(ctx, s.embedder, req.JobText)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, "failed to embed job text").SetInternal(err)
		}
	}

	opts := match.Options{
		TopK:          firstPositive(req.TopK, s.Profile.MatchTopK),
		PoolSize:      firstPositive(req.PoolSize, s.Profile.MatchPoolSize),
		MinSimilarity: s.Profile.MatchMinSimilarity,
		Weights:       req.Weights,
		HardFilter:    s.Profile.MatchHardFilter,
		Concurrency:   s.Profile.MatchConcurrency,
	}
	if req.MinSimilarity != nil {
		if *req.MinSimilarity < 0 || *req.MinSimilarity > 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "min_similarity must be between 0 and 1")
		}
		opts.MinSimilarity = *req.MinSimilarity
	}
	if req.HardFilter != nil {
		opts.HardFilter = *req.HardFilter
	}

	report, err := s.Pipeline.Match(ctx, req.Requirements, embedding, opts)
	if err != nil {
		if match.IsRetrievalError(err) {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "match run failed").SetInternal(err)
	}

	return c.JSON(http.StatusOK, report)
}

func (s *Server) listMatches(c echo.Context) error {
	jobID, err := parseID(c.Param("jobID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid job id")
	}

	find := &store.FindMatchRecord{JobID: &jobID}
	if raw := c.QueryParam("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_score")
		}
		find.MinScore = &minScore
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		find.Limit = limit
	}

	records, err := s.Store.ListMatchRecords(c.Request().Context(), find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list matches").SetInternal(err)
	}

	return c.JSON(http.StatusOK, records)
}

// createCandidateRequest ingests one candidate: structured profile, CV text,
// and optional pre-computed chunk embeddings.
type createCandidateRequest struct {
	Profile              match.CandidateProfile `json:"profile"`
	CVText               string                 `json:"cv_text"`
	ExtractionConfidence float64                `json:"extraction_confidence"`
	ChunkEmbeddings      [][]float32            `json:"chunk_embeddings,omitempty"`
	EmbeddingModel       string                 `json:"embedding_model,omitempty"`
}

func (s *Server) createCandidate(c echo.Context) error {
	var req createCandidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	ctx := c.Request().Context()
	now := time.Now().Unix()

	candidate, err := s.Store.CreateCandidate(ctx, &store.Candidate{
		Name:                 req.Profile.Name,
		CVText:               req.CVText,
		Profile:              req.Profile,
		ExtractionConfidence: req.ExtractionConfidence,
		CreatedTs:            now,
		UpdatedTs:            now,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create candidate").SetInternal(err)
	}

	embeddings := req.ChunkEmbeddings
	if len(embeddings) == 0 && s.embedder != nil && req.CVText != "" {
		// One stored embedding per chunk; retrieval aggregates them
		// back to a mean similarity per candidate.
		embeddings, err = ai.EmbedDocumentChunks(ctx, s.embedder, req.CVText)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, "failed to embed cv text").SetInternal(err)
		}
	}

	model := req.EmbeddingModel
	if model == "" {
		model = s.Profile.AIEmbeddingModel
	}
	for i, vector := range embeddings {
		if _, err := s.Store.UpsertCandidateEmbedding(ctx, &store.CandidateEmbedding{
			CandidateID: candidate.ID,
			ChunkIndex:  int32(i),
			Embedding:   vector,
			Model:       model,
			CreatedTs:   now,
		}); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to store embedding").SetInternal(err)
		}
	}

	return c.JSON(http.StatusCreated, map[string]any{"id": candidate.ID})
}

func parseID(raw string) (int32, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
