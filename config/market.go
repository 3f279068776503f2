package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Price models understood by the transaction generator.
const (
	ModelUniform = "uniform" // whole-dollar price in [min, max]
	ModelTrend   = "trend"   // (base + step) · (u1 + u2), rising with the step counter
	ModelValley  = "valley"  // u · scale · |pivot − step| / pivot, falling until pivot then rising
)

// PriceModel describes how one symbol is priced at a given generator step.
type PriceModel struct {
	Model string  `yaml:"model"`
	Min   float64 `yaml:"min,omitempty"`
	Max   float64 `yaml:"max,omitempty"`
	Base  float64 `yaml:"base,omitempty"`
	Scale float64 `yaml:"scale,omitempty"`
	Pivot float64 `yaml:"pivot,omitempty"`
}

// MarketProfile maps symbols to price models. Symbols without an entry use
// Default. No generated price exceeds PriceCap.
type MarketProfile struct {
	PriceCap float64               `yaml:"price_cap"`
	Default  PriceModel            `yaml:"default"`
	Symbols  map[string]PriceModel `yaml:"symbols"`
}

// DefaultMarketProfile returns the built-in market: NVDA trends up, MSFT
// falls until step 200 and then recovers, everything else trades between
// $150 and $350. Prices are capped at $400.
func DefaultMarketProfile() *MarketProfile {
	return &MarketProfile{
		PriceCap: 400,
		Default:  PriceModel{Model: ModelUniform, Min: 150, Max: 350},
		Symbols: map[string]PriceModel{
			"NVDA": {Model: ModelTrend, Base: 100},
			"MSFT": {Model: ModelValley, Scale: 200, Pivot: 200},
		},
	}
}

// ModelFor returns the price model for symbol.
func (p *MarketProfile) ModelFor(symbol string) PriceModel {
	if m, ok := p.Symbols[symbol]; ok {
		return m
	}
	return p.Default
}

// LoadMarketProfile reads a YAML market profile. An empty path returns
// DefaultMarketProfile.
func LoadMarketProfile(path string) (*MarketProfile, error) {
	if path == "" {
		return DefaultMarketProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read market profile %s: %w", path, err)
	}
	profile := &MarketProfile{}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to parse market profile %s: %w", path, err)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("market profile %s: %w", path, err)
	}
	return profile, nil
}

// Validate checks every model in the profile.
func (p *MarketProfile) Validate() error {
	if p.PriceCap <= 0 {
		return fmt.Errorf("price_cap must be positive")
	}
	if err := p.Default.validate(); err != nil {
		return fmt.Errorf("default: %w", err)
	}
	for sym, m := range p.Symbols {
		if err := m.validate(); err != nil {
			return fmt.Errorf("symbol %s: %w", sym, err)
		}
	}
	return nil
}

func (m PriceModel) validate() error {
	switch m.Model {
	case ModelUniform:
		if m.Min < 0 || m.Max < m.Min {
			return fmt.Errorf("uniform model needs 0 <= min <= max")
		}
	case ModelTrend:
		if m.Base < 0 {
			return fmt.Errorf("trend model needs a non-negative base")
		}
	case ModelValley:
		if m.Pivot <= 0 || m.Scale < 0 {
			return fmt.Errorf("valley model needs a positive pivot and non-negative scale")
		}
	default:
		return fmt.Errorf("unknown model %q", m.Model)
	}
	return nil
}
