package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// CheckConfigValidity collects every problem with the resolved config so the
// user sees them all at once instead of one per run.
func CheckConfigValidity(v *viper.Viper) error {
	var problems []string

	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		problems = append(problems, "data_dir is required")
	}
	if base := strings.TrimSpace(v.GetString("cms.base_url")); base != "" {
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("cms.base_url is not a valid URL: %q", base))
		}
	}
	if v.GetInt("cms.page_size") <= 0 {
		problems = append(problems, "cms.page_size must be greater than 0")
	}
	if v.GetInt("site.per_page") <= 0 {
		problems = append(problems, "site.per_page must be greater than 0")
	}
	switch v.GetString("site.default_view") {
	case "card", "list":
	default:
		problems = append(problems, "site.default_view must be card or list")
	}
	for _, d := range v.GetStringSlice("promo.domains") {
		if strings.Contains(d, "/") {
			problems = append(problems, fmt.Sprintf("promo domain %q must be a bare host, not a URL", d))
		}
	}
	cert := strings.TrimSpace(v.GetString("tls.cert_file"))
	key := strings.TrimSpace(v.GetString("tls.key_file"))
	if (cert == "") != (key == "") {
		problems = append(problems, "tls.cert_file and tls.key_file must be set together")
	}
	if cert != "" && strings.TrimSpace(v.GetString("tls.domain")) != "" {
		problems = append(problems, "tls.domain and tls.cert_file are mutually exclusive")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid config:\n  " + strings.Join(problems, "\n  "))
}
