package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PromoType selects how a promo code discount is computed.
type PromoType string

const (
	PromoPercent PromoType = "percent"
	PromoFlat    PromoType = "flat"
)

// PromoRule is one entry of the promo code table. Value is a percentage for
// PromoPercent and minor units for PromoFlat.
type PromoRule struct {
	Type        PromoType `yaml:"type" json:"type"`
	Value       int64     `yaml:"value" json:"value"`
	MinSubtotal int64     `yaml:"minSubtotal" json:"minSubtotal"`
}

// DeliveryZone matches addresses by case-insensitive keyword substrings.
type DeliveryZone struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// PricingRules holds the static promo and delivery tables. Zones are matched
// in order; the first hit wins.
type PricingRules struct {
	Currency   string               `yaml:"currency" json:"currency"`
	PromoCodes map[string]PromoRule `yaml:"promoCodes" json:"promoCodes"`
	Zones      []DeliveryZone       `yaml:"zones" json:"zones"`
}

func DefaultPricingRules() PricingRules {
	return PricingRules{
		Currency: "GEL",
		PromoCodes: map[string]PromoRule{
			"WELCOME10": {Type: PromoPercent, Value: 10},
			"LUNCH500":  {Type: PromoFlat, Value: 500, MinSubtotal: 3000},
			"TEAM15":    {Type: PromoPercent, Value: 15, MinSubtotal: 15000},
		},
		Zones: []DeliveryZone{
			{Name: "center", Keywords: []string{"rustaveli", "руставели", "freedom square", "old town", "chavchavadze", "чавчавадзе"}},
			{Name: "new-boulevard", Keywords: []string{"new boulevard", "sherif khimshiashvili", "химшиашвили", "angisa"}},
			{Name: "airport", Keywords: []string{"airport", "аэропорт", "kakhaberi"}},
		},
	}
}

// Validate rejects tables that would produce nonsense quotes.
func (r PricingRules) Validate() error {
	if strings.TrimSpace(r.Currency) == "" {
		return fmt.Errorf("pricing rules: currency is required")
	}
	for code, rule := range r.PromoCodes {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("pricing rules: empty promo code")
		}
		if code != NormalizePromoCode(code) {
			return fmt.Errorf("pricing rules: promo %q must be upper case without spaces around it", code)
		}
		switch rule.Type {
		case PromoPercent:
			if rule.Value < 0 || rule.Value > 100 {
				return fmt.Errorf("pricing rules: promo %s: percent must be within 0..100", code)
			}
		case PromoFlat:
			if rule.Value < 0 {
				return fmt.Errorf("pricing rules: promo %s: negative value", code)
			}
		default:
			return fmt.Errorf("pricing rules: promo %s: unknown type %q", code, rule.Type)
		}
		if rule.MinSubtotal < 0 {
			return fmt.Errorf("pricing rules: promo %s: negative minimum subtotal", code)
		}
	}
	for i, zone := range r.Zones {
		if strings.TrimSpace(zone.Name) == "" {
			return fmt.Errorf("pricing rules: zone %d has no name", i)
		}
		if len(zone.Keywords) == 0 {
			return fmt.Errorf("pricing rules: zone %s has no keywords", zone.Name)
		}
	}
	return nil
}

// NormalizePromoCode is the canonical form of a promo code, both as a
// table key and as user input.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PromoResult is the outcome of a promo lookup. Error is a user-facing
// message, never a Go error.
type PromoResult struct {
	Code     string
	Discount int64
	Error    string
}

// ApplyPromo computes the discount for code against subtotal. It depends on
// nothing but its arguments and the rule table.
func (r PricingRules) ApplyPromo(code string, subtotal int64) PromoResult {
	normalized := NormalizePromoCode(code)
	if normalized == "" {
		return PromoResult{}
	}

	result := PromoResult{Code: normalized}
	rule, ok := r.PromoCodes[normalized]
	if !ok {
		result.Error = "code not found"
		return result
	}

	if subtotal < rule.MinSubtotal {
		result.Error = fmt.Sprintf("minimum order for this code is %s %s",
			decimal.New(rule.MinSubtotal, -2).StringFixed(2), r.Currency)
		return result
	}

	var discount int64
	switch rule.Type {
	case PromoPercent:
		// integer division floors for non-negative operands
		discount = subtotal * rule.Value / 100
	case PromoFlat:
		discount = rule.Value
	}
	result.Discount = max(min(discount, subtotal), 0)
	return result
}

// ZoneResult is the outcome of matching an address to a delivery zone.
type ZoneResult struct {
	Zone      string
	Available bool
	Warning   string
}

func (r PricingRules) ResolveZone(address string) ZoneResult {
	normalized := strings.ToLower(strings.TrimSpace(address))
	if normalized == "" {
		return ZoneResult{Warning: "address required"}
	}
	for _, zone := range r.Zones {
		for _, keyword := range zone.Keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword != "" && strings.Contains(normalized, keyword) {
				return ZoneResult{Zone: zone.Name, Available: true}
			}
		}
	}
	return ZoneResult{Warning: "address is outside delivery area"}
}
