package markdown

import (
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// PromoRule decides which links are promotional and how they get decorated.
// A link matches when its host equals a configured domain or is a subdomain
// of one; matching links receive campaign query parameters and promo styling,
// and a paragraph consisting of nothing but a matching link is rendered as a
// standalone promo card.
type PromoRule struct {
	Domains  []string
	Source   string
	Campaign string
}

func PromoFromConfig(cfg *viper.Viper) PromoRule {
	return PromoRule{
		Domains:  cfg.GetStringSlice("promo.domains"),
		Source:   cfg.GetString("promo.utm_source"),
		Campaign: cfg.GetString("promo.utm_campaign"),
	}
}

// Matches reports whether rawurl points at a configured promo host.
func (p PromoRule) Matches(rawurl string) bool {
	if len(p.Domains) == 0 {
		return false
	}
	u, err := url.Parse(rawurl)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range p.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Decorate appends the campaign parameters to a matching link. Parameters
// already present in the URL are left alone so authors can override them.
func (p PromoRule) Decorate(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return rawurl
	}
	q := u.Query()
	if p.Source != "" && q.Get("utm_source") == "" {
		q.Set("utm_source", p.Source)
	}
	if p.Campaign != "" && q.Get("utm_campaign") == "" {
		q.Set("utm_campaign", p.Campaign)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
