// Package recommend orchestrates the vehicle recommendation pipeline:
// intent extraction, persona building, vector retrieval, scoring and
// justification.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/embeddings"
	"github.com/fyrsmithlabs/matchd/internal/intent"
	"github.com/fyrsmithlabs/matchd/internal/persona"
	"github.com/fyrsmithlabs/matchd/internal/reasons"
	"github.com/fyrsmithlabs/matchd/internal/scoring"
	"github.com/fyrsmithlabs/matchd/internal/vehicles"
)

// DefaultRetrieveK is how many candidates are pulled from the index
// before scoring narrows them down.
const DefaultRetrieveK = 20

// Searcher retrieves vehicle candidates by vector similarity.
type Searcher interface {
	Search(ctx context.Context, vector []float32, limit int, filter *vehicles.SearchFilter) ([]vehicles.Candidate, error)
}

// Record is one served recommendation, kept for later analysis.
type Record struct {
	UserID          string
	UserEmail       string
	UserDescription string
	Persona         persona.Persona
	Matches         []scoring.Match
}

// Recorder persists served recommendations. Implementations must be
// safe to call concurrently.
type Recorder interface {
	Save(ctx context.Context, rec Record) error
}

// Request is a free-text vehicle query with optional caller metadata.
type Request struct {
	UserText    string
	Constraints map[string]interface{}
}

// Response carries the derived persona and the ranked matches.
type Response struct {
	Persona persona.Persona `json:"persona"`
	Matches []scoring.Match `json:"matches"`
}

// Service runs the recommendation pipeline end to end.
type Service struct {
	extractor *intent.Extractor
	reasoner  *reasons.Generator
	scorer    *scoring.Scorer
	embedder  embeddings.Provider
	index     Searcher
	recorder  Recorder
	metrics   *Metrics
	logger    *zap.Logger
	retrieveK int
}

// Options configures a Service.
type Options struct {
	Extractor *intent.Extractor
	Reasoner  *reasons.Generator
	Scorer    *scoring.Scorer
	Embedder  embeddings.Provider
	Index     Searcher
	// Recorder is optional. When nil, recommendations are not logged.
	Recorder Recorder
	// Metrics is optional. When nil, no metrics are recorded.
	Metrics   *Metrics
	Logger    *zap.Logger
	RetrieveK int
}

// NewService validates the wiring and returns a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Extractor == nil {
		return nil, fmt.Errorf("intent extractor is required")
	}
	if opts.Reasoner == nil {
		return nil, fmt.Errorf("reason generator is required")
	}
	if opts.Scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if opts.Embedder == nil {
		return nil, fmt.Errorf("embedding provider is required")
	}
	if opts.Index == nil {
		return nil, fmt.Errorf("vehicle index is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RetrieveK <= 0 {
		opts.RetrieveK = DefaultRetrieveK
	}
	return &Service{
		extractor: opts.Extractor,
		reasoner:  opts.Reasoner,
		scorer:    opts.Scorer,
		embedder:  opts.Embedder,
		index:     opts.Index,
		recorder:  opts.Recorder,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		retrieveK: opts.RetrieveK,
	}, nil
}

// Recommend turns a free-text query into ranked vehicle matches. The
// only hard failures are embedding and retrieval errors; intent and
// justification degrade to their fallbacks instead.
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	text := strings.TrimSpace(req.UserText)
	if text == "" {
		return nil, fmt.Errorf("user description is empty")
	}

	in := s.extractor.Extract(ctx, text)
	p := persona.Build(in)
	s.logger.Debug("derived persona",
		zap.String("label", p.Label),
		zap.Strings("primary_needs", p.PrimaryNeeds),
		zap.Bool("heuristic_intent", in.Heuristic()),
	)

	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		s.metrics.observe("error", time.Since(start))
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var filter *vehicles.SearchFilter
	if in.BudgetBand != "" {
		filter = &vehicles.SearchFilter{PriceBand: in.BudgetBand}
	}
	candidates, err := s.index.Search(ctx, vector, s.retrieveK, filter)
	if err != nil {
		s.metrics.observe("error", time.Since(start))
		return nil, fmt.Errorf("retrieving candidates: %w", err)
	}
	s.metrics.observeCandidates(len(candidates))

	matches := s.scorer.Score(in, p, candidates)
	s.attachReasons(ctx, text, p, matches)

	s.record(ctx, req, p, matches)

	s.metrics.observe("ok", time.Since(start))
	s.logger.Info("served recommendation",
		zap.String("persona", p.Label),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Response{Persona: p, Matches: matches}, nil
}

// attachReasons guarantees every match carries exactly one reason,
// generated when the model cooperates and templated otherwise.
func (s *Service) attachReasons(ctx context.Context, text string, p persona.Persona, matches []scoring.Match) {
	generated := s.reasoner.Generate(ctx, text, p, matches)
	for i := range matches {
		reason, ok := generated[matches[i].ID]
		if !ok || reason == "" {
			reason = reasons.Fallback(p, matches[i].Candidate)
		}
		matches[i].Reasons = []string{reason}
	}
}

// record saves the recommendation best-effort. Failures are logged and
// never surface to the caller.
func (s *Service) record(ctx context.Context, req Request, p persona.Persona, matches []scoring.Match) {
	if s.recorder == nil {
		return
	}
	rec := Record{
		UserID:          constraintString(req.Constraints, "user_id"),
		UserEmail:       constraintString(req.Constraints, "user_email"),
		UserDescription: strings.TrimSpace(req.UserText),
		Persona:         p,
		Matches:         matches,
	}
	if err := s.recorder.Save(ctx, rec); err != nil {
		s.metrics.observeRecordError()
		s.logger.Warn("failed to save recommendation", zap.Error(err))
	}
}

func constraintString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
