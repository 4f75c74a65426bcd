package engine

import (
	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/store"
)

const (
	BuyModeRisk     = "RISK"
	BuyModeMinOrder = "MIN_ORDER"
)

// Settings is the slice of configuration one cycle reads.
type Settings struct {
	Pair          string
	BaseCoin      string
	QuoteCoin     string
	Timeframe     string
	CandleLimit   int
	ATRPeriod     int
	RiskPerTrade  float64
	ScalingFactor float64
	TPPercentage  float64
	SLPercentage  float64
	BuyMode       string
}

func SettingsFromConfig(cfg *store.Config) Settings {
	return Settings{
		Pair:          cfg.Trading.Pair,
		BaseCoin:      cfg.BaseCoin(),
		QuoteCoin:     cfg.QuoteCoin(),
		Timeframe:     cfg.Trading.Timeframe,
		CandleLimit:   cfg.Trading.CandleLimit,
		ATRPeriod:     cfg.Indicators.ATRPeriod,
		RiskPerTrade:  cfg.Risk.RiskPerTrade,
		ScalingFactor: cfg.Risk.ScalingFactor,
		TPPercentage:  cfg.Risk.TPPercentage,
		SLPercentage:  cfg.Risk.SLPercentage,
		BuyMode:       cfg.Sizing.BuyMode,
	}
}

func New(cfg *store.Config, ex interfaces.Exchange, strat interfaces.Strategy) interfaces.Engine {
	return newEngine(SettingsFromConfig(cfg), ex, strat)
}
