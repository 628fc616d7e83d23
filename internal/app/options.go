package app

import (
	"github.com/YusufSemihCan/Charon-LCBot/internal/config"
	"github.com/YusufSemihCan/Charon-LCBot/internal/navigation"
	"github.com/YusufSemihCan/Charon-LCBot/internal/vision"
)

// NavigatorOptions maps the configuration onto engine options. Rules,
// checklist and sleep keep their built-in defaults.
func NavigatorOptions(cfg config.Config) navigation.Options {
	opts := navigation.DefaultOptions()
	opts.ClickThreshold = cfg.Vision.ClickThreshold
	opts.AnchorThreshold = cfg.Vision.AnchorThreshold

	n := cfg.Navigation
	opts.SettleDelay = n.SettleDelay
	opts.VerifyAttempts = n.VerifyAttempts
	opts.RecoveryRetries = n.RecoveryRetries
	opts.RecoveryDelay = n.RecoveryDelay
	opts.ReconnectDelay = n.ReconnectDelay
	opts.BattleTimeout = n.BattleTimeout
	opts.MaxHops = n.MaxHops
	opts.HumanLike = n.HumanLike
	opts.ClearCursor = n.ClearCursor
	opts.StrictOverlay = n.StrictOverlay

	if cfg.Input.ClickHold > 0 {
		opts.ClickHold = cfg.Input.ClickHold
	}
	if cfg.Input.KeyHold > 0 {
		opts.KeyHold = cfg.Input.KeyHold
	}
	return opts
}

// LocatorOptions maps the configuration onto locator options. scale is the
// factor derived from the capture size; a configured scale overrides it.
func LocatorOptions(cfg config.Config, scale float64) ([]vision.Option, error) {
	mode, err := vision.ParseCacheMode(cfg.Vision.CacheMode)
	if err != nil {
		return nil, err
	}
	if cfg.Vision.Scale > 0 {
		scale = cfg.Vision.Scale
	}
	return []vision.Option{
		vision.WithCacheMode(mode),
		vision.WithCacheSize(cfg.Vision.CacheSize),
		vision.WithScale(scale),
	}, nil
}
