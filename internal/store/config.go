package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode                string `yaml:"mode"`
	ServiceName         string `yaml:"service_name"`
	PollSeconds         int    `yaml:"poll_seconds"`
	CycleTimeoutSeconds int    `yaml:"cycle_timeout_seconds"`
	MetricsAddr         string `yaml:"metrics_addr"`
	Exchange            struct {
		BaseURL        string `yaml:"base_url"`
		Category       string `yaml:"category"`
		AccountType    string `yaml:"account_type"`
		RecvWindowMs   int    `yaml:"recv_window_ms"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"exchange"`
	Trading struct {
		Pair        string `yaml:"pair"`
		Timeframe   string `yaml:"timeframe"`
		CandleLimit int    `yaml:"candle_limit"`
	} `yaml:"trading"`
	Strategy struct {
		Name string `yaml:"name"`
	} `yaml:"strategy"`
	Indicators struct {
		ShortEMAPeriod int `yaml:"short_ema_period"`
		LongEMAPeriod  int `yaml:"long_ema_period"`
		RSIPeriod      int `yaml:"rsi_period"`
		ATRPeriod      int `yaml:"atr_period"`
	} `yaml:"indicators"`
	Thresholds struct {
		Overbought float64 `yaml:"overbought"`
		Oversold   float64 `yaml:"oversold"`
	} `yaml:"thresholds"`
	Risk struct {
		RiskPerTrade  float64 `yaml:"risk_per_trade"`
		ScalingFactor float64 `yaml:"scaling_factor"`
		TPPercentage  float64 `yaml:"tp_percentage"`
		SLPercentage  float64 `yaml:"sl_percentage"`
	} `yaml:"risk"`
	Sizing struct {
		BuyMode string `yaml:"buy_mode"`
	} `yaml:"sizing"`
	Probe struct {
		Side        string  `yaml:"side"`
		Start       float64 `yaml:"start"`
		Step        float64 `yaml:"step"`
		MaxAttempts int     `yaml:"max_attempts"`
	} `yaml:"probe"`
}

// Default returns the configuration used when a field is left out of config.yaml.
func Default() *Config {
	var c Config
	c.Mode = "DRY_RUN"
	c.ServiceName = "signal-trading-bot"
	c.PollSeconds = 60
	c.CycleTimeoutSeconds = 30

	c.Exchange.BaseURL = "https://api.bybit.com"
	c.Exchange.Category = "linear"
	c.Exchange.AccountType = "UNIFIED"
	c.Exchange.RecvWindowMs = 5000
	c.Exchange.TimeoutSeconds = 10

	c.Trading.Pair = "XRP/USDT"
	c.Trading.Timeframe = "1m"
	c.Trading.CandleLimit = 200
	c.Strategy.Name = "THRESHOLD"

	c.Indicators.ShortEMAPeriod = 9
	c.Indicators.LongEMAPeriod = 20
	c.Indicators.RSIPeriod = 14
	c.Indicators.ATRPeriod = 14
	c.Thresholds.Overbought = 70
	c.Thresholds.Oversold = 30

	c.Risk.RiskPerTrade = 1
	c.Risk.ScalingFactor = 2
	c.Risk.TPPercentage = 0.001
	c.Risk.SLPercentage = 0.0005

	c.Sizing.BuyMode = "RISK"

	c.Probe.Side = "SELL"
	c.Probe.Step = 0.1
	c.Probe.MaxAttempts = 20
	return &c
}

// normalize upper-cases the enum fields so config values are case-insensitive.
func (c *Config) normalize() {
	c.Mode = strings.ToUpper(c.Mode)
	c.Strategy.Name = strings.ToUpper(c.Strategy.Name)
	c.Sizing.BuyMode = strings.ToUpper(c.Sizing.BuyMode)
	c.Probe.Side = strings.ToUpper(c.Probe.Side)
}

func (c *Config) Validate() error {
	var errs []error

	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		errs = append(errs, fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode))
	}
	if c.PollSeconds < 1 {
		errs = append(errs, fmt.Errorf("poll_seconds must be positive, got %d", c.PollSeconds))
	}
	if c.CycleTimeoutSeconds < 1 || c.CycleTimeoutSeconds > c.PollSeconds {
		errs = append(errs, fmt.Errorf("cycle_timeout_seconds must be between 1 and poll_seconds (%d), got %d",
			c.PollSeconds, c.CycleTimeoutSeconds))
	}
	if base, quote, ok := strings.Cut(c.Trading.Pair, "/"); !ok || base == "" || quote == "" {
		errs = append(errs, fmt.Errorf("trading.pair must look like BASE/QUOTE, got '%s'", c.Trading.Pair))
	}
	if c.Strategy.Name != "THRESHOLD" && c.Strategy.Name != "CROSSOVER" {
		errs = append(errs, fmt.Errorf("strategy.name must be 'THRESHOLD' or 'CROSSOVER', got '%s'", c.Strategy.Name))
	}

	ind := c.Indicators
	if ind.ShortEMAPeriod < 1 || ind.LongEMAPeriod < 1 || ind.RSIPeriod < 1 || ind.ATRPeriod < 1 {
		errs = append(errs, errors.New("indicator periods must be positive"))
	}
	if ind.LongEMAPeriod <= ind.ShortEMAPeriod {
		errs = append(errs, fmt.Errorf("indicators.long_ema_period (%d) must exceed short_ema_period (%d)",
			ind.LongEMAPeriod, ind.ShortEMAPeriod))
	}
	if c.Thresholds.Oversold < 0 || c.Thresholds.Overbought > 100 || c.Thresholds.Oversold >= c.Thresholds.Overbought {
		errs = append(errs, fmt.Errorf("thresholds must satisfy 0 <= oversold < overbought <= 100, got %.2f/%.2f",
			c.Thresholds.Oversold, c.Thresholds.Overbought))
	}

	if c.Risk.RiskPerTrade <= 0 || c.Risk.RiskPerTrade > 100 {
		errs = append(errs, fmt.Errorf("risk.risk_per_trade must be between 0-100, got %.2f", c.Risk.RiskPerTrade))
	}
	if c.Risk.ScalingFactor <= 0 {
		errs = append(errs, fmt.Errorf("risk.scaling_factor must be positive, got %.2f", c.Risk.ScalingFactor))
	}
	if c.Risk.TPPercentage < 0 || c.Risk.TPPercentage >= 1 || c.Risk.SLPercentage < 0 || c.Risk.SLPercentage >= 1 {
		errs = append(errs, errors.New("risk.tp_percentage and risk.sl_percentage are fractions in [0, 1)"))
	}
	if c.Sizing.BuyMode != "RISK" && c.Sizing.BuyMode != "MIN_ORDER" {
		errs = append(errs, fmt.Errorf("sizing.buy_mode must be 'RISK' or 'MIN_ORDER', got '%s'", c.Sizing.BuyMode))
	}

	if c.Probe.Side != "BUY" && c.Probe.Side != "SELL" {
		errs = append(errs, fmt.Errorf("probe.side must be 'BUY' or 'SELL', got '%s'", c.Probe.Side))
	}
	if c.Probe.Step <= 0 || c.Probe.MaxAttempts < 1 || c.Probe.Start < 0 {
		errs = append(errs, errors.New("probe.step must be positive, probe.max_attempts at least 1 and probe.start non-negative"))
	}

	return errors.Join(errs...)
}

// BaseCoin and QuoteCoin split the configured pair, e.g. XRP/USDT.
func (c *Config) BaseCoin() string {
	base, _, _ := strings.Cut(c.Trading.Pair, "/")
	return base
}

func (c *Config) QuoteCoin() string {
	_, quote, _ := strings.Cut(c.Trading.Pair, "/")
	return quote
}

// Parse overlays b on Default, so keys present in the YAML win even when
// they are zero.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	c.normalize()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}
