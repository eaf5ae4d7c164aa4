package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads the TOML file at path on top of Defaults, then applies ZCSWAP_* environment
// overrides (a .env file in the working directory is loaded first when present). An empty
// path skips the file. Malformed numeric or boolean overrides are reported together; the
// result is otherwise not validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load()

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	var errs []string

	setStr(&cfg.LogLevel, "ZCSWAP_LOG_LEVEL")
	setStr(&cfg.LogFormat, "ZCSWAP_LOG_FORMAT")

	setBool(&cfg.Valuation.ForecastTodaysFixing, "ZCSWAP_VALUATION_FORECAST_TODAYS_FIXING", &errs)
	setBool(&cfg.Valuation.IncludeSettlementDateFlows, "ZCSWAP_VALUATION_INCLUDE_SETTLEMENT_DATE_FLOWS", &errs)

	setInt(&cfg.Batch.Workers, "ZCSWAP_BATCH_WORKERS", &errs)

	setStr(&cfg.Defaults.Calendar, "ZCSWAP_DEFAULTS_CALENDAR")
	setStr(&cfg.Defaults.DayCount, "ZCSWAP_DEFAULTS_DAY_COUNT")
	setStr(&cfg.Defaults.BusinessDayConvention, "ZCSWAP_DEFAULTS_BUSINESS_DAY_CONVENTION")
	setStr(&cfg.Defaults.Averaging, "ZCSWAP_DEFAULTS_AVERAGING")
	setInt(&cfg.Defaults.PaymentDelay, "ZCSWAP_DEFAULTS_PAYMENT_DELAY", &errs)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment overrides:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string, errs *[]string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %q is not an integer", key, v))
		return
	}
	*dst = n
}

func setBool(dst *bool, key string, errs *[]string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %q is not a boolean", key, v))
		return
	}
	*dst = b
}
