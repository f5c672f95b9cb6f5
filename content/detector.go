package content

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/service"
)

var categoryIndicators = map[core.ContentCategory][]string{
	core.CategoryAcademic: {
		"abstract", "introduction", "methodology", "literature review", "hypothesis",
		"conclusion", "references", "et al", "journal", "doi", "study", "research",
		"experiment", "analysis", "findings", "data", "results", "university",
	},
	core.CategoryNews: {
		"breaking", "reported", "according to", "sources say", "officials",
		"announced", "statement", "press", "news", "report", "journalist",
		"correspondent", "editor", "headline", "byline", "dateline",
	},
	core.CategoryTechnical: {
		"code", "function", "algorithm", "implementation", "documentation",
		"api", "interface", "framework", "library", "module", "class",
		"method", "variable", "parameter", "return", "value", "object",
		"instance", "prototype", "inheritance", "polymorphism", "encapsulation",
	},
	core.CategoryCreative: {
		"story", "novel", "poem", "fiction", "character", "plot", "setting",
		"theme", "metaphor", "simile", "imagery", "symbolism", "narrative",
		"dialogue", "scene", "chapter", "verse", "stanza", "rhyme",
	},
	core.CategoryBusiness: {
		"company", "business", "market", "industry", "product", "service",
		"customer", "client", "revenue", "profit", "loss", "sales", "marketing",
		"strategy", "management", "executive", "ceo", "cfo", "cto", "board",
	},
	core.CategoryPersonal: {
		"i", "me", "my", "mine", "we", "us", "our", "ours", "you", "your",
		"yours", "feel", "think", "believe", "opinion", "experience", "personal",
		"diary", "journal", "blog", "today", "yesterday", "tomorrow",
	},
}

// indicatorPatterns match whole indicator words only, so "i" does not hit "api".
var indicatorPatterns = compileIndicators()

func compileIndicators() map[core.ContentCategory]*regexp.Regexp {
	out := make(map[core.ContentCategory]*regexp.Regexp, len(categoryIndicators))
	for cat, words := range categoryIndicators {
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		out[cat] = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return out
}

const detectPrompt = "Analyze the following content and determine its type. " +
	"Respond with exactly one of these types: academic, news, technical, creative, business, personal. " +
	"Do not include any explanation, just the type.\n\n"

const detectMaxTokens = 10

// DetectHeuristic classifies text by counting distinct indicator words per
// category. The category with the most hits wins, ties go to the earlier
// category in core.DetectableCategories, and no hits at all is CategoryUnknown.
func DetectHeuristic(text string) core.ContentCategory {
	lower := strings.ToLower(text)

	best, bestHits := core.CategoryUnknown, 0
	for _, cat := range core.DetectableCategories {
		hits := distinctMatches(indicatorPatterns[cat], lower)
		if hits > bestHits {
			best, bestHits = cat, hits
		}
	}
	return best
}

func distinctMatches(re *regexp.Regexp, s string) int {
	seen := make(map[string]struct{})
	for _, m := range re.FindAllString(s, -1) {
		seen[m] = struct{}{}
	}
	return len(seen)
}

// ParseCategoryAnswer reads a model's one-word answer. The first category
// name found in the answer, in declaration order, wins.
func ParseCategoryAnswer(answer string) core.ContentCategory {
	lower := strings.ToLower(strings.TrimSpace(answer))
	for _, cat := range core.DetectableCategories {
		if strings.Contains(lower, cat.String()) {
			return cat
		}
	}
	return core.CategoryUnknown
}

// Detector decides the content category of a text.
type Detector struct {
	gen    Generator
	logger *slog.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithDetectorLogger sets the detector's logger.
func WithDetectorLogger(logger *slog.Logger) DetectorOption {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger.With("component", "category-detector")
		}
	}
}

// NewDetector creates a detector that asks gen about long content.
func NewDetector(gen Generator, opts ...DetectorOption) (*Detector, error) {
	if gen == nil {
		return nil, ErrGeneratorRequired
	}
	d := &Detector{
		gen:    gen,
		logger: slog.Default().With("component", "category-detector"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Detect classifies text. Short text uses DetectHeuristic. Longer text asks
// the model for a single word and falls back to the heuristic when the call
// fails; only cancellation of ctx is returned as an error.
func (d *Detector) Detect(ctx context.Context, text string) (core.ContentCategory, error) {
	if utf8.RuneCountInString(text) < ShortContentThreshold {
		return DetectHeuristic(text), nil
	}

	answer, err := d.gen.Generate(ctx, service.GenerateRequest{
		UserPrompt: detectPrompt + text,
		MaxTokens:  detectMaxTokens,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return core.CategoryUnknown, ctxErr
		}
		cat := DetectHeuristic(text)
		d.logger.Warn("category detection by model failed, using heuristic",
			"kind", ai.KindOf(err).String(),
			"err", err,
			"category", cat.String())
		return cat, nil
	}

	cat := ParseCategoryAnswer(answer)
	d.logger.Debug("category detected", "category", cat.String(), "answer", answer)
	return cat, nil
}
