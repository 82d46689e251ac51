package services

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/chameleon/server/internal/models"
)

// ImageGenerator produces an image URL for a recipe. Implementations must
// honor context cancellation; generation can be slow.
type ImageGenerator interface {
	Generate(ctx context.Context, recipe *models.Recipe, themeStyle string) (string, error)
}

// GenerationError wraps a generator failure. The recipe stays ungenerated and
// a later call may retry.
type GenerationError struct {
	RecipeID string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("image generation failed for recipe %s: %v", e.RecipeID, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

var titleSlugPattern = regexp.MustCompile(`\s+`)

// titleSlug lowercases the title and collapses whitespace runs into hyphens,
// matching the keyword format the placeholder image provider expects.
func titleSlug(title string) string {
	return titleSlugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
}

// MockImageGenerator simulates a text-to-image API. It waits a configured
// delay and returns a stock-photo URL keyed off the recipe title. The theme
// style would feed the generation prompt in a real provider, so it is
// accepted and ignored here.
type MockImageGenerator struct {
	delay time.Duration
}

// NewMockImageGenerator creates a mock generator with the given artificial
// latency.
func NewMockImageGenerator(delay time.Duration) *MockImageGenerator {
	return &MockImageGenerator{delay: delay}
}

// Generate returns a placeholder URL after the configured delay
func (g *MockImageGenerator) Generate(ctx context.Context, recipe *models.Recipe, themeStyle string) (string, error) {
	if err := sleepCtx(ctx, g.delay); err != nil {
		return "", err
	}

	// Prompt a real provider would receive:
	//   "<title>, <first ingredients>, <models.ThemeStyleDescription(themeStyle)>"
	return fmt.Sprintf("https://source.unsplash.com/800x600/?%s,food", titleSlug(recipe.Title)), nil
}

// LocalImageGenerator renders a theme-colored placeholder JPEG to disk and
// returns the path it is served from. Useful for offline development where
// external image URLs are undesirable.
type LocalImageGenerator struct {
	outputDir string
	baseURL   string
}

// NewLocalImageGenerator creates a generator writing into outputDir. Files
// are served under baseURL (typically "/images").
func NewLocalImageGenerator(outputDir, baseURL string) (*LocalImageGenerator, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image output dir: %w", err)
	}
	return &LocalImageGenerator{
		outputDir: outputDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}, nil
}

// Generate renders an 800x600 placeholder in the theme's accent color
func (g *LocalImageGenerator) Generate(ctx context.Context, recipe *models.Recipe, themeStyle string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	accent := color.NRGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff}
	if theme, ok := models.GetTheme(themeStyle); ok {
		if parsed, err := parseHexColor(theme.Accent); err == nil {
			accent = parsed
		}
	}

	img := imaging.New(800, 600, accent)

	// Lighter center panel so the placeholder reads as a card, not a swatch.
	panel := imaging.New(720, 520, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x50})
	img = imaging.OverlayCenter(img, panel, 1.0)
	img = imaging.Blur(img, 1.5)

	name := fmt.Sprintf("%s-%s.jpg", titleSlug(recipe.Title), uuid.New().String())
	path := filepath.Join(g.outputDir, name)

	if err := imaging.Save(img, path, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to save placeholder image: %w", err)
	}

	return g.baseURL + "/" + name, nil
}

// OutputDir returns the directory generated files are written to, for the
// static file route.
func (g *LocalImageGenerator) OutputDir() string {
	return g.outputDir
}

func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	var r, gc, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &gc, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: r, G: gc, B: b, A: 0xff}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
