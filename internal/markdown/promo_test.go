package markdown

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestPromoMatches(t *testing.T) {
	p := PromoRule{Domains: []string{"shop.example.com", "Partner.IO"}}

	assert.True(t, p.Matches("https://shop.example.com/item/1"))
	assert.True(t, p.Matches("https://www.partner.io/deal"), "host comparison is case-insensitive")
	assert.True(t, p.Matches("https://eu.shop.example.com/item"), "subdomains match")
	assert.False(t, p.Matches("https://other.example.com/"))
	assert.False(t, p.Matches("https://notshop.example.com.evil.net/"))
	assert.False(t, p.Matches("/relative/path"))
	assert.False(t, p.Matches("::bad url::"))

	assert.False(t, PromoRule{}.Matches("https://shop.example.com/"), "empty rule matches nothing")
}

func TestPromoDecorate(t *testing.T) {
	p := PromoRule{Domains: []string{"shop.example.com"}, Source: "blog", Campaign: "spring"}

	t.Run("appends campaign params", func(t *testing.T) {
		got := p.Decorate("https://shop.example.com/item?id=5")
		assert.Contains(t, got, "utm_source=blog")
		assert.Contains(t, got, "utm_campaign=spring")
		assert.Contains(t, got, "id=5")
	})

	t.Run("author-set params win", func(t *testing.T) {
		got := p.Decorate("https://shop.example.com/item?utm_source=newsletter")
		assert.Contains(t, got, "utm_source=newsletter")
		assert.NotContains(t, got, "utm_source=blog")
	})
}

func TestPromoFromConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("promo.domains", []string{"shop.example.com"})
	cfg.Set("promo.utm_source", "blog")
	cfg.Set("promo.utm_campaign", "spring")

	p := PromoFromConfig(cfg)
	assert.Equal(t, []string{"shop.example.com"}, p.Domains)
	assert.Equal(t, "blog", p.Source)
	assert.Equal(t, "spring", p.Campaign)
}
