package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/portsure/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config carries everything the risk engine needs at construction: the asset
// class universe, the exposure limit table, the score weight table, the tier
// boundary table, seed portfolios and service settings. Limits, weights and
// tiers are deployment configuration, never hardcoded in the engine.
type Config struct {
	Listen       string
	WalDir       string
	AssetClasses []domain.AssetClass
	Limits       domain.LimitTable
	Weights      domain.WeightTable
	Tiers        domain.TierTable
	Portfolios   []SeedPortfolio
}

// SeedPortfolio is a portfolio registered at startup with its initial
// allocation, replacing the hardcoded starter portfolios of earlier builds.
type SeedPortfolio struct {
	ID         string
	Allocation domain.Allocation
}

// ConfigTmp mirrors the YAML layout; the setup wizard marshals it back out.
type ConfigTmp struct {
	Listen       string            `yaml:"listen,omitempty"`
	WalDir       string            `yaml:"wal_dir,omitempty"`
	AssetClasses []string          `yaml:"asset_classes"`
	Limits       map[string]string `yaml:"limits"`
	Weights      map[string]string `yaml:"weights"`
	Tiers        []TierTmp         `yaml:"tiers"`
	Portfolios   []PortfolioTmp    `yaml:"portfolios,omitempty"`
}

type TierTmp struct {
	Label    string `yaml:"label"`
	Severity string `yaml:"severity"`
	MinScore int    `yaml:"min_score"`
}

type PortfolioTmp struct {
	ID         string            `yaml:"id"`
	Allocation map[string]string `yaml:"allocation"`
}

// Default returns the stock deployment configuration: Equity/Bond/Derivative
// universe, limits 60/70/30, weights 0.7/0.3/1.2, tiers High >= 75 and
// Medium >= 50.
func Default() Config {
	return Config{
		Listen:       ":8087",
		WalDir:       "./wal/evaluations",
		AssetClasses: []domain.AssetClass{"Equity", "Bond", "Derivative"},
		Limits: domain.LimitTable{
			"Equity":     decimal.NewFromInt(60),
			"Bond":       decimal.NewFromInt(70),
			"Derivative": decimal.NewFromInt(30),
		},
		Weights: domain.WeightTable{
			"Equity":     decimal.RequireFromString("0.7"),
			"Bond":       decimal.RequireFromString("0.3"),
			"Derivative": decimal.RequireFromString("1.2"),
		},
		Tiers: domain.TierTable{
			{MinScore: 75, Tier: domain.Tier{Label: "High", Severity: "critical"}},
			{MinScore: 50, Tier: domain.Tier{Label: "Medium", Severity: "elevated"}},
			{MinScore: 0, Tier: domain.Tier{Label: "Low", Severity: "normal"}},
		},
	}
}

// Get loads the configuration from the YAML file at path, or returns the
// defaults when path is empty.
func Get(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return getYaml(path)
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Listen: tmp.Listen,
		WalDir: tmp.WalDir,
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8087"
	}
	if cfg.WalDir == "" {
		cfg.WalDir = "./wal/evaluations"
	}

	for _, c := range tmp.AssetClasses {
		cfg.AssetClasses = append(cfg.AssetClasses, domain.AssetClass(c))
	}

	cfg.Limits = make(domain.LimitTable, len(tmp.Limits))
	for class, v := range tmp.Limits {
		limit, err := decimal.NewFromString(v)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'limits' value for %s in yaml config (must be a decimal): %w", class, err)
		}
		cfg.Limits[domain.AssetClass(class)] = limit
	}

	cfg.Weights = make(domain.WeightTable, len(tmp.Weights))
	for class, v := range tmp.Weights {
		weight, err := decimal.NewFromString(v)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'weights' value for %s in yaml config (must be a decimal): %w", class, err)
		}
		cfg.Weights[domain.AssetClass(class)] = weight
	}

	for _, t := range tmp.Tiers {
		cfg.Tiers = append(cfg.Tiers, domain.TierBoundary{
			MinScore: t.MinScore,
			Tier:     domain.Tier{Label: t.Label, Severity: t.Severity},
		})
	}

	for _, p := range tmp.Portfolios {
		allocation := make(domain.Allocation, len(p.Allocation))
		for class, v := range p.Allocation {
			qty, err := decimal.NewFromString(v)
			if err != nil {
				return Config{}, fmt.Errorf("incorrect allocation value for %s in portfolio %s (must be a decimal): %w", class, p.ID, err)
			}
			allocation[domain.AssetClass(class)] = qty
		}
		cfg.Portfolios = append(cfg.Portfolios, SeedPortfolio{ID: p.ID, Allocation: allocation})
	}

	return cfg, nil
}
