package captions

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
)

const titleLimit = 40

var captionTemplates = []string{
	"🔥 OMG! You NEED this %[1]s! Only $%.2[2]f! %[3]s",
	"✨ Best %[4]s find yet! %[1]s for just $%.2[2]f! %[3]s",
	"💸 STEAL ALERT! %[1]s at $%.2[2]f! Limited stock! %[3]s",
	"🎯 This %[1]s changed everything! Only $%.2[2]f! %[3]s",
	"⚡ Wait for it... %[1]s is only $%.2[2]f! %[3]s",
	"🛒 Everyone's getting this %[1]s! Just $%.2[2]f! %[3]s",
	"💎 Hidden gem alert! %[1]s - $%.2[2]f! You're welcome! %[3]s",
	"🚨 Don't scroll! This %[1]s is $%.2[2]f and AMAZING! %[3]s",
}

var callsToAction = []string{
	"Link in bio! 👆",
	"Tap the link! 🔗",
	"Shop now! 🛍️",
	"Grab yours! ⚡",
	"Click to buy! 💳",
	"Get it now! 🏃",
}

// TemplateGenerator fills a randomly chosen caption template with product
// details. No credentials, no network.
type TemplateGenerator struct {
	cfg  *config.Config
	pick func(n int) int
}

// NewTemplate builds a template generator.
func NewTemplate(cfg *config.Config) *TemplateGenerator {
	return &TemplateGenerator{cfg: cfg, pick: rand.IntN}
}

// Caption renders a caption for the product.
func (t *TemplateGenerator) Caption(_ context.Context, product *catalog.Product) (string, error) {
	title := product.Title
	if len(title) > titleLimit {
		title = strings.TrimSpace(title[:titleLimit])
	}
	category := strings.ToLower(product.Category)
	if category == "" {
		category = "product"
	}

	template := captionTemplates[t.pick(len(captionTemplates))]
	cta := callsToAction[t.pick(len(callsToAction))]
	return fmt.Sprintf(template, title, product.Price, cta, category), nil
}
