// Package providers wires the concrete data providers into a registry.
package providers

import (
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/config"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/providers/edgar"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/providers/fmp"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/providers/fred"
)

// BuildRegistry registers every provider whose credentials are available.
// EDGAR always registers (keyless, and first, so it is the default facts
// source); FMP and FRED register only when their keys are configured.
func BuildRegistry(cfg *config.Config) (*provider.Registry, error) {
	reg := provider.NewRegistry()

	ed := edgar.New()
	if err := ed.Init(nil); err != nil {
		return nil, err
	}
	if err := reg.Register(ed); err != nil {
		return nil, err
	}

	if cfg.Providers.FMPKey != "" {
		fp := fmp.New()
		if err := fp.Init(map[string]string{"api_key": cfg.Providers.FMPKey}); err != nil {
			return nil, err
		}
		if err := reg.Register(fp); err != nil {
			return nil, err
		}
	}

	if cfg.Providers.FREDKey != "" {
		fr := fred.New()
		if err := fr.Init(map[string]string{"api_key": cfg.Providers.FREDKey}); err != nil {
			return nil, err
		}
		if err := reg.Register(fr); err != nil {
			return nil, err
		}
	}

	return reg, nil
}
