package models

// Theme represents a predefined visual theme. The style description feeds the
// image-generation prompt; the accent color is used by the local placeholder
// generator.
type Theme struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	StyleDescription string `json:"styleDescription"`
	Accent           string `json:"accent"`
}

const (
	ThemeRustic       = "theme-rustic"
	ThemeModern       = "theme-modern"
	ThemeGrandma      = "theme-grandma"
	ThemeZen          = "theme-zen"
	ThemeDarkAcademia = "theme-dark-academia"
)

// defaultStyleDescription is used when a recipe image is generated without a
// recognized theme.
const defaultStyleDescription = "appetizing food photography"

var systemThemes = []Theme{
	{
		ID:               ThemeRustic,
		Name:             "Rustic",
		StyleDescription: "rustic farmhouse style, warm earthy tones, textured parchment background",
		Accent:           "#a16207",
	},
	{
		ID:               ThemeModern,
		Name:             "Modern",
		StyleDescription: "clean modern style, bright airy aesthetic, minimalist composition",
		Accent:           "#667eea",
	},
	{
		ID:               ThemeGrandma,
		Name:             "Grandma",
		StyleDescription: "nostalgic scrapbook style, vintage floral patterns, cozy homemade feel",
		Accent:           "#db2777",
	},
	{
		ID:               ThemeZen,
		Name:             "Zen",
		StyleDescription: "zen minimalist style, natural peaceful tones, serene composition",
		Accent:           "#10b981",
	},
	{
		ID:               ThemeDarkAcademia,
		Name:             "Dark Academia",
		StyleDescription: "dark academia aesthetic, moody elegant atmosphere, vintage literary feel",
		Accent:           "#78350f",
	},
}

// SystemThemes returns the five built-in themes
func SystemThemes() []Theme {
	themes := make([]Theme, len(systemThemes))
	copy(themes, systemThemes)
	return themes
}

// GetTheme looks up a theme by ID
func GetTheme(id string) (Theme, bool) {
	for _, t := range systemThemes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// IsValidTheme checks if a theme ID is one of the built-in themes
func IsValidTheme(id string) bool {
	_, ok := GetTheme(id)
	return ok
}

// ThemeStyleDescription returns the prompt fragment for a theme, falling back
// to a generic description for unknown theme IDs.
func ThemeStyleDescription(id string) string {
	if t, ok := GetTheme(id); ok {
		return t.StyleDescription
	}
	return defaultStyleDescription
}

// Theme errors
type ThemeError struct {
	Message string
}

func (e ThemeError) Error() string {
	return e.Message
}

var (
	ErrInvalidTheme = ThemeError{"invalid theme"}
)
