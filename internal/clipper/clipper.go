package clipper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"dinner-planner/internal/catalog"
	"dinner-planner/internal/llm"
	"dinner-planner/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const agentName = "clipper"

// ErrNoRecipe is returned when a page carries no schema.org Recipe data.
var ErrNoRecipe = errors.New("no recipe found on page")

// prepKeywords mark instructions that have to happen well before cooking.
var prepKeywords = []string{"soak", "marinate", "overnight", "thaw", "defrost", "brine"}

// UsageRecorder persists LLM usage metadata.
type UsageRecorder interface {
	RecordMeta(ctx context.Context, meta llm.Meta) error
}

// Clipper turns recipe web pages into catalog meals.
type Clipper struct {
	httpClient *http.Client
	textGen    llm.TextGenerator
	recorder   UsageRecorder
}

// NewClipper creates a new Clipper. textGen and recorder may be nil; without
// a generator, pages lacking a category are rejected.
func NewClipper(textGen llm.TextGenerator, recorder UsageRecorder) *Clipper {
	return &Clipper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		textGen:    textGen,
		recorder:   recorder,
	}
}

// ClipURL fetches the page and builds a meal from its Recipe JSON-LD.
func (c *Clipper) ClipURL(ctx context.Context, url string) (catalog.Meal, error) {
	doc, err := c.fetch(ctx, url)
	if err != nil {
		return catalog.Meal{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	rec, err := findRecipe(doc)
	if err != nil {
		return catalog.Meal{}, fmt.Errorf("%s: %w", url, err)
	}

	meal := catalog.Meal{
		ID:          normalize(rec.Name),
		Categories:  rec.categories(),
		Ingredients: normalizeAll(rec.Ingredients),
		Prep:        prepSteps(rec.instructions()),
	}
	if meal.Prep == nil {
		meal.Prep = []string{}
	}

	if len(meal.Categories) == 0 && c.textGen != nil && meal.ID != "" {
		category, err := c.guessCategory(ctx, meal)
		if err != nil {
			logger.Warn("category guess failed", zap.String("meal", meal.ID), zap.Error(err))
		} else if category != "" {
			meal.Categories = []string{category}
		}
	}

	if err := meal.Validate(false); err != nil {
		return catalog.Meal{}, err
	}
	logger.Info("clipped meal", zap.String("meal", meal.ID), zap.Strings("categories", meal.Categories), zap.String("url", url))
	return meal, nil
}

func (c *Clipper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "dinner-planner/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func (c *Clipper) guessCategory(ctx context.Context, meal catalog.Meal) (string, error) {
	prompt := fmt.Sprintf(`Name the cuisine or dish category of this dinner in one lowercase word, such as "mexican", "indian", "pasta" or "soup".
Reply with the word only.

Dish: %s
Ingredients: %s
`, meal.ID, strings.Join(meal.Ingredients, ", "))

	start := time.Now()
	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	if c.recorder != nil {
		meta := llm.Meta{AgentName: agentName, Usage: resp.Usage, Latency: time.Since(start)}
		if err := c.recorder.RecordMeta(ctx, meta); err != nil {
			logger.Warn("failed to record llm usage", zap.Error(err))
		}
	}
	return firstWord(resp.Content), nil
}

// recipe is the subset of schema.org/Recipe the clipper reads.
type recipe struct {
	Name         string          `json:"name"`
	Ingredients  []string        `json:"recipeIngredient"`
	Category     json.RawMessage `json:"recipeCategory"`
	Cuisine      json.RawMessage `json:"recipeCuisine"`
	Instructions json.RawMessage `json:"recipeInstructions"`
}

// categories prefers recipeCategory and falls back to recipeCuisine.
func (r recipe) categories() []string {
	if cats := normalizeAll(stringList(r.Category)); len(cats) > 0 {
		return cats
	}
	return normalizeAll(stringList(r.Cuisine))
}

// instructions flattens HowToStep and HowToSection trees into plain text.
func (r recipe) instructions() []string {
	var out []string
	var walk func(v any)
	walk = func(v any) {
		switch x := v.(type) {
		case string:
			if s := strings.TrimSpace(x); s != "" {
				out = append(out, s)
			}
		case []any:
			for _, item := range x {
				walk(item)
			}
		case map[string]any:
			if items, ok := x["itemListElement"]; ok {
				walk(items)
				return
			}
			if text, ok := x["text"].(string); ok {
				walk(text)
			}
		}
	}

	var v any
	if len(r.Instructions) > 0 && json.Unmarshal(r.Instructions, &v) == nil {
		walk(v)
	}
	return out
}

func findRecipe(doc *goquery.Document) (recipe, error) {
	var found *recipe
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return true
		}
		node := recipeNode(v)
		if node == nil {
			return true
		}
		raw, err := json.Marshal(node)
		if err != nil {
			return true
		}
		var r recipe
		if err := json.Unmarshal(raw, &r); err != nil {
			return true
		}
		found = &r
		return false
	})

	if found == nil {
		return recipe{}, ErrNoRecipe
	}
	return *found, nil
}

// recipeNode searches a JSON-LD value, including @graph lists, for a Recipe.
func recipeNode(v any) map[string]any {
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if n := recipeNode(item); n != nil {
				return n
			}
		}
	case map[string]any:
		if isRecipeType(x["@type"]) {
			return x
		}
		if graph, ok := x["@graph"]; ok {
			return recipeNode(graph)
		}
	}
	return nil
}

func isRecipeType(t any) bool {
	switch x := t.(type) {
	case string:
		return x == "Recipe"
	case []any:
		for _, item := range x {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// stringList decodes a JSON value that may be a single string, a
// comma-separated string, or a list of strings.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.Split(single, ",")
	}
	return nil
}

func prepSteps(steps []string) []string {
	var out []string
	for _, step := range steps {
		lower := strings.ToLower(step)
		for _, kw := range prepKeywords {
			if strings.Contains(lower, kw) {
				out = append(out, step)
				break
			}
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func normalizeAll(in []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		n := normalize(s)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func firstWord(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
}
