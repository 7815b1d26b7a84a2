package captions

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
)

var (
	wordPattern = regexp.MustCompile(`[A-Za-z0-9]+`)
	titleCaser  = cases.Title(language.English)
)

var trendingByCategory = map[string][]string{
	"electronics": {"#TechTok", "#GadgetReview", "#TechFinds"},
	"beauty":      {"#BeautyTok", "#MakeupHaul", "#SkincareRoutine"},
	"fashion":     {"#FashionTok", "#OOTD", "#StyleInspo"},
	"fitness":     {"#FitTok", "#WorkoutMotivation", "#FitnessJourney"},
	"home":        {"#HomeTok", "#HomeDecor", "#Organization"},
}

// Hashtags derives the tag line for a product: configured base tags first,
// then category, product keywords, and price or commission signals,
// deduplicated case-insensitively and capped at the configured maximum.
func Hashtags(cfg config.Captions, product *catalog.Product) string {
	var (
		tags []string
		seen = map[string]struct{}{}
	)
	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}

	for _, tag := range cfg.BaseTags {
		add(tag)
	}

	category := strings.ToLower(strings.TrimSpace(product.Category))
	if category != "" {
		add("#" + titleCaser.String(category))
		for _, tag := range trendingByCategory[category] {
			add(tag)
		}
	}

	words := wordPattern.FindAllString(strings.ToLower(product.Title), 3)
	for _, word := range words {
		if len(word) > 3 {
			add("#" + titleCaser.String(word))
		}
	}

	switch {
	case product.Price > 0 && product.Price < 20:
		add("#AffordableFinds")
		add("#BudgetFriendly")
	case product.Price > 100:
		add("#LuxuryFinds")
	}
	if product.CommissionRate >= 15 {
		add("#CreatorPicks")
	}

	if cfg.MaxHashtags > 0 && len(tags) > cfg.MaxHashtags {
		tags = tags[:cfg.MaxHashtags]
	}
	return strings.Join(tags, " ")
}
