package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"lunchdesk/internal/services"
)

// LoadPricingRules reads promo codes and delivery zones from a YAML file.
// An empty path or a missing file yields the built-in defaults. Sections
// left out of the file keep their defaults.
func LoadPricingRules(path, currency string) (services.PricingRules, error) {
	rules := services.DefaultPricingRules()
	if currency != "" {
		rules.Currency = currency
	}
	if strings.TrimSpace(path) == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return rules, nil
		}
		return services.PricingRules{}, err
	}

	var file services.PricingRules
	if err := yaml.Unmarshal(data, &file); err != nil {
		return services.PricingRules{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if file.Currency != "" {
		rules.Currency = strings.ToUpper(file.Currency)
	}
	if file.PromoCodes != nil {
		rules.PromoCodes = make(map[string]services.PromoRule, len(file.PromoCodes))
		for code, rule := range file.PromoCodes {
			key := services.NormalizePromoCode(code)
			if _, dup := rules.PromoCodes[key]; dup {
				return services.PricingRules{}, fmt.Errorf("invalid %s: promo code %q is listed more than once", path, key)
			}
			rules.PromoCodes[key] = rule
		}
	}
	if file.Zones != nil {
		rules.Zones = file.Zones
	}

	if err := rules.Validate(); err != nil {
		return services.PricingRules{}, fmt.Errorf("invalid %s: %w", path, err)
	}
	return rules, nil
}
