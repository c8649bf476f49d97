package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunchdesk/internal/services"
)

func TestApplyPromoIsPureFunctionOfSubtotal(t *testing.T) {
	rules := services.DefaultPricingRules()

	for _, subtotal := range []int64{0, 999, 1999, 3000, 15000, 123457} {
		first := rules.ApplyPromo("WELCOME10", subtotal)
		second := rules.ApplyPromo("WELCOME10", subtotal)
		assert.Equal(t, first, second)
		assert.Equal(t, subtotal*10/100, first.Discount)
	}
}

func TestApplyPromoPercentFloors(t *testing.T) {
	result := services.DefaultPricingRules().ApplyPromo("welcome10", 1999)
	assert.Equal(t, int64(199), result.Discount)
	assert.Equal(t, "WELCOME10", result.Code)
}

func TestApplyPromoUnknownCode(t *testing.T) {
	result := services.DefaultPricingRules().ApplyPromo("NOPE", 5000)
	assert.Zero(t, result.Discount)
	assert.Equal(t, "code not found", result.Error)
}

func TestApplyPromoBlankCode(t *testing.T) {
	result := services.DefaultPricingRules().ApplyPromo("  ", 5000)
	assert.Equal(t, services.PromoResult{}, result)
}

func TestApplyPromoBelowMinimum(t *testing.T) {
	result := services.DefaultPricingRules().ApplyPromo("LUNCH500", 2999)
	assert.Zero(t, result.Discount)
	assert.Equal(t, "minimum order for this code is 30.00 GEL", result.Error)

	result = services.DefaultPricingRules().ApplyPromo("LUNCH500", 3000)
	assert.Equal(t, int64(500), result.Discount)
	assert.Empty(t, result.Error)
}

func TestApplyPromoDiscountCappedAtSubtotal(t *testing.T) {
	rules := services.PricingRules{
		Currency: "GEL",
		PromoCodes: map[string]services.PromoRule{
			"BIG": {Type: services.PromoFlat, Value: 5000},
		},
	}

	result := rules.ApplyPromo("BIG", 1200)
	assert.Equal(t, int64(1200), result.Discount)
}

func TestApplyPromoMatchesOnlyNormalizedKeys(t *testing.T) {
	rules := services.PricingRules{
		Currency: "GEL",
		PromoCodes: map[string]services.PromoRule{
			"SAVE": {Type: services.PromoPercent, Value: 10},
		},
	}

	for _, code := range []string{"save", " Save ", "SAVE"} {
		result := rules.ApplyPromo(code, 1000)
		assert.Equal(t, "SAVE", result.Code)
		assert.Equal(t, int64(100), result.Discount, code)
	}
	assert.Equal(t, "code not found", rules.ApplyPromo("SAVES", 1000).Error)
}

func TestResolveZone(t *testing.T) {
	rules := services.DefaultPricingRules()

	cases := []struct {
		address   string
		zone      string
		available bool
		warning   string
	}{
		{"12 Rustaveli Ave", "center", true, ""},
		{"ул. Руставели, 5", "center", true, ""},
		{"NEW BOULEVARD tower 2", "new-boulevard", true, ""},
		{"Batumi Airport, cargo", "airport", true, ""},
		{"Kobuleti beach", "", false, "address is outside delivery area"},
		{"   ", "", false, "address required"},
	}

	for _, tc := range cases {
		t.Run(tc.address, func(t *testing.T) {
			result := rules.ResolveZone(tc.address)
			assert.Equal(t, tc.zone, result.Zone)
			assert.Equal(t, tc.available, result.Available)
			assert.Equal(t, tc.warning, result.Warning)
		})
	}
}

func TestResolveZoneFirstMatchWins(t *testing.T) {
	rules := services.PricingRules{
		Currency: "GEL",
		Zones: []services.DeliveryZone{
			{Name: "inner", Keywords: []string{"harbor"}},
			{Name: "outer", Keywords: []string{"harbor street"}},
		},
	}

	assert.Equal(t, "inner", rules.ResolveZone("1 Harbor Street").Zone)
}

func TestPricingRulesValidate(t *testing.T) {
	require.NoError(t, services.DefaultPricingRules().Validate())

	cases := map[string]services.PricingRules{
		"missing currency": {},
		"unknown promo type": {
			Currency:   "GEL",
			PromoCodes: map[string]services.PromoRule{"X": {Type: "bogus", Value: 1}},
		},
		"percent above 100": {
			Currency:   "GEL",
			PromoCodes: map[string]services.PromoRule{"X": {Type: services.PromoPercent, Value: 150}},
		},
		"negative minimum": {
			Currency:   "GEL",
			PromoCodes: map[string]services.PromoRule{"X": {Type: services.PromoFlat, Value: 1, MinSubtotal: -1}},
		},
		"lower case promo code": {
			Currency:   "GEL",
			PromoCodes: map[string]services.PromoRule{"spring": {Type: services.PromoPercent, Value: 5}},
		},
		"zone without keywords": {
			Currency: "GEL",
			Zones:    []services.DeliveryZone{{Name: "empty"}},
		},
	}

	for name, rules := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, rules.Validate())
		})
	}
}
