package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	FeePolicySelect = "select" // submitter picks the percentage via buttons
	FeePolicyAuto   = "auto"   // fixed percentage applied automatically

	FeeBasisReceived = "received"
	FeeBasisReleased = "released"
)

type Config struct {
	TelegramBotToken  string  `mapstructure:"TELEGRAM_BOT_TOKEN"`
	BotOwnerID        int64   `mapstructure:"BOT_OWNER_ID"`
	DB_URL            string  `mapstructure:"DB_URL"`
	ReportTimezone    string  `mapstructure:"REPORT_TIMEZONE"`
	CryptoFeePolicy   string  `mapstructure:"CRYPTO_FEE_POLICY"`
	CryptoFeePercent  float64 `mapstructure:"CRYPTO_FEE_PERCENT"`
	FeeReportBasis    string  `mapstructure:"FEE_REPORT_BASIS"`
	StagingTTLMinutes int     `mapstructure:"STAGING_TTL_MINUTES"`
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("failed to resolve config path: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("REPORT_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("CRYPTO_FEE_POLICY", FeePolicySelect)
	viper.SetDefault("CRYPTO_FEE_PERCENT", 1.0)
	viper.SetDefault("FEE_REPORT_BASIS", FeeBasisReceived)
	viper.SetDefault("STAGING_TTL_MINUTES", 30)

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("failed to read config: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch config.CryptoFeePolicy {
	case FeePolicySelect, FeePolicyAuto:
	default:
		return config, fmt.Errorf("invalid CRYPTO_FEE_POLICY %q", config.CryptoFeePolicy)
	}
	switch config.FeeReportBasis {
	case FeeBasisReceived, FeeBasisReleased:
	default:
		return config, fmt.Errorf("invalid FEE_REPORT_BASIS %q", config.FeeReportBasis)
	}

	return config, nil
}
