package strategy

import (
	"errors"
	"fmt"
	"strings"

	"signal-trading-bot/internal/interfaces"
)

const (
	NameThreshold = "THRESHOLD"
	NameCrossover = "CROSSOVER"
)

type Params struct {
	ShortEMAPeriod int
	LongEMAPeriod  int
	RSIPeriod      int
	Overbought     float64
	Oversold       float64
}

func (p Params) validate(name string) error {
	var errs []error
	if p.ShortEMAPeriod <= 0 {
		errs = append(errs, fmt.Errorf("short EMA period must be positive, got %d", p.ShortEMAPeriod))
	}
	switch name {
	case NameThreshold:
		if p.RSIPeriod <= 0 {
			errs = append(errs, fmt.Errorf("RSI period must be positive, got %d", p.RSIPeriod))
		}
		if p.Oversold >= p.Overbought {
			errs = append(errs, fmt.Errorf("oversold %.2f must be below overbought %.2f", p.Oversold, p.Overbought))
		}
	case NameCrossover:
		if p.LongEMAPeriod <= p.ShortEMAPeriod {
			errs = append(errs, fmt.Errorf("long EMA period %d must exceed short period %d", p.LongEMAPeriod, p.ShortEMAPeriod))
		}
	}
	return errors.Join(errs...)
}

// New returns the strategy registered under name.
func New(name string, p Params) (interfaces.Strategy, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if err := p.validate(name); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}
	switch name {
	case NameThreshold:
		return NewThresholdStrategy(p), nil
	case NameCrossover:
		return NewCrossoverStrategy(p), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q: must be %s or %s", name, NameThreshold, NameCrossover)
	}
}
