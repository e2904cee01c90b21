// Package seed loads demo books from YAML and applies them to a store.
package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"ibms/assets"
	"ibms/internal/core"
	"ibms/internal/ports"
)

type Seed struct {
	Profile    core.AdminProfile `yaml:"profile"`
	Investors  []core.Investor   `yaml:"investors"`
	Portfolios []core.Portfolio  `yaml:"portfolios"`
}

// Default returns the embedded demo book.
func Default() (Seed, error) {
	return Parse(assets.DefaultSeed)
}

// Load reads a seed file from disk.
func Load(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("unable to read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Seed{}, fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a YAML seed and checks that every record carries an id.
func Parse(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, err
	}

	for i, inv := range s.Investors {
		if inv.ID == "" {
			return Seed{}, fmt.Errorf("investor at index %d missing id", i)
		}
		if inv.KYCStatus == "" {
			s.Investors[i].KYCStatus = core.KYCPending
		}
		for j, deal := range inv.Investments {
			if deal.ID == "" {
				return Seed{}, fmt.Errorf("investment %d of investor %s missing id", j, inv.ID)
			}
		}
	}
	for i, p := range s.Portfolios {
		if p.ID == "" {
			return Seed{}, fmt.Errorf("portfolio at index %d missing id", i)
		}
		for j, sm := range p.SubMarketors {
			if sm.ID == "" {
				return Seed{}, fmt.Errorf("sub-marketor %d of portfolio %s missing id", j, p.ID)
			}
			if sm.PortfolioID == "" {
				s.Portfolios[i].SubMarketors[j].PortfolioID = p.ID
			}
		}
	}
	return s, nil
}

// Apply writes the seed into st unless st already holds investors or
// portfolios. It reports whether anything was written.
func Apply(ctx context.Context, st ports.Store, s Seed) (bool, error) {
	investors, err := st.ListInvestors(ctx)
	if err != nil {
		return false, fmt.Errorf("list investors: %w", err)
	}
	portfolios, err := st.ListPortfolios(ctx)
	if err != nil {
		return false, fmt.Errorf("list portfolios: %w", err)
	}
	if len(investors) > 0 || len(portfolios) > 0 {
		return false, nil
	}

	for _, p := range s.Portfolios {
		if err := st.CreatePortfolio(ctx, p); err != nil {
			return false, fmt.Errorf("seed portfolio %s: %w", p.ID, err)
		}
	}
	for _, inv := range s.Investors {
		if err := st.CreateInvestor(ctx, inv); err != nil {
			return false, fmt.Errorf("seed investor %s: %w", inv.ID, err)
		}
	}
	if s.Profile.Name != "" {
		if err := st.SaveProfile(ctx, s.Profile); err != nil {
			return false, fmt.Errorf("seed profile: %w", err)
		}
	}
	return true, nil
}
