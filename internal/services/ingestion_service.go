package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chameleon/server/internal/models"
	"github.com/chameleon/server/internal/observability"
)

// IngestionService turns external recipe sources into unsaved drafts. The
// parsers are mocks standing in for a real scraper and OCR pipeline; they
// wait a configured delay and return placeholder drafts. The client edits the
// draft and submits it through the normal save path.
type IngestionService struct {
	delay   time.Duration
	metrics *observability.RecipeMetrics
}

// NewIngestionService creates an ingestion service with the given artificial
// parsing latency.
func NewIngestionService(delay time.Duration) *IngestionService {
	return &IngestionService{delay: delay}
}

// SetMetrics attaches business metrics instruments
func (s *IngestionService) SetMetrics(metrics *observability.RecipeMetrics) {
	s.metrics = metrics
}

// ErrInvalidIngestURL is returned for URLs the parser refuses to fetch
var ErrInvalidIngestURL = models.RecipeError{Message: "ingestion requires an absolute http or https url"}

// ParseURL extracts a recipe draft from a web page
func (s *IngestionService) ParseURL(ctx context.Context, rawURL string) (*models.ParsedRecipe, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidIngestURL
	}

	if err := sleepCtx(ctx, s.delay); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordIngestDraft(ctx, "url")
	}

	// TODO: replace with a real scraper once one is chosen; this mirrors the
	// mock parser output the clients already handle.
	return &models.ParsedRecipe{
		Title: fmt.Sprintf("Parsed Recipe from %s", parsed.Host),
		Ingredients: []string{
			"2 cups flour",
			"1 cup sugar",
			"1 tsp baking powder",
		},
		Steps: []string{
			"Mix dry ingredients",
			"Add wet ingredients",
			"Bake at 350°F for 30 minutes",
		},
		OriginalSource: parsed.String(),
	}, nil
}

// ParseScan extracts a recipe draft from a scanned page image
func (s *IngestionService) ParseScan(ctx context.Context) (*models.ParsedRecipe, error) {
	if err := sleepCtx(ctx, s.delay); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordIngestDraft(ctx, "scan")
	}

	return &models.ParsedRecipe{
		Title: "Scanned Recipe",
		Ingredients: []string{
			"3 eggs",
			"1 cup milk",
			"Cookbook page scanned via OCR",
		},
		Steps: []string{
			"Step parsed from image",
			"Another step from OCR",
		},
		OriginalSource: "scan",
	}, nil
}
