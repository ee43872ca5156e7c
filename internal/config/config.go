// Package config loads process configuration from the environment, with an
// optional .env file. Simulation parameters map onto sim.Config; flags in the
// commands override whatever is loaded here.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/sim"
)

// Config holds all process configuration.
type Config struct {
	Sim     sim.Config
	Steps   int
	Server  ServerConfig
	Logging LoggingConfig
}

// ServerConfig holds the HTTP/WebSocket server parameters.
type ServerConfig struct {
	Addr       string
	DepthLimit int
}

// LoggingConfig holds logging parameters.
type LoggingConfig struct {
	Level string
	// Format is "json" or "console".
	Format string
}

// Load reads configuration from the environment, after loading .env if one
// is present in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Sim:   loadSimConfig(),
		Steps: getEnvInt("MMS_STEPS", 100_000),
		Server: ServerConfig{
			Addr:       getEnvString("MMS_SERVER_ADDR", ":8080"),
			DepthLimit: getEnvInt("MMS_SERVER_DEPTH_LIMIT", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("MMS_LOG_LEVEL", "info"),
			Format: getEnvString("MMS_LOG_FORMAT", "console"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadSimConfig() sim.Config {
	c := sim.DefaultConfig()
	c.Seed = uint64(getEnvInt("MMS_SEED", int(c.Seed)))
	c.TimeStep = book.Timestamp(getEnvInt("MMS_TIME_STEP_NS", int(c.TimeStep)))
	c.SnapshotInterval = getEnvInt("MMS_SNAPSHOT_INTERVAL", c.SnapshotInterval)
	c.AgentSampleInterval = getEnvInt("MMS_AGENT_SAMPLE_INTERVAL", c.AgentSampleInterval)
	c.OutputDir = getEnvString("MMS_OUTPUT_DIR", c.OutputDir)

	c.Maker.Spread = book.Price(getEnvInt("MMS_MAKER_SPREAD", int(c.Maker.Spread)))
	c.Maker.Quantity = book.Qty(getEnvInt("MMS_MAKER_QUANTITY", int(c.Maker.Quantity)))
	c.Maker.RefreshInterval = book.Timestamp(getEnvInt("MMS_MAKER_REFRESH_NS", int(c.Maker.RefreshInterval)))
	c.Maker.MaxInventory = book.Qty(getEnvInt("MMS_MAKER_MAX_INVENTORY", int(c.Maker.MaxInventory)))

	c.Taker.Intensity = getEnvFloat("MMS_TAKER_INTENSITY", c.Taker.Intensity)
	c.Taker.SideBias = getEnvFloat("MMS_TAKER_SIDE_BIAS", c.Taker.SideBias)
	c.Taker.QuantityMean = getEnvFloat("MMS_TAKER_QTY_MEAN", c.Taker.QuantityMean)
	c.Taker.QuantityStd = getEnvFloat("MMS_TAKER_QTY_STD", c.Taker.QuantityStd)
	c.Taker.UseMarketOrders = getEnvBool("MMS_TAKER_MARKET_ORDERS", c.Taker.UseMarketOrders)

	c.Noise.LimitIntensity = getEnvFloat("MMS_NOISE_LIMIT_INTENSITY", c.Noise.LimitIntensity)
	c.Noise.CancelIntensity = getEnvFloat("MMS_NOISE_CANCEL_INTENSITY", c.Noise.CancelIntensity)
	c.Noise.QuantityMean = getEnvFloat("MMS_NOISE_QTY_MEAN", c.Noise.QuantityMean)
	c.Noise.QuantityStd = getEnvFloat("MMS_NOISE_QTY_STD", c.Noise.QuantityStd)
	c.Noise.PriceVolatility = getEnvFloat("MMS_NOISE_PRICE_VOL", c.Noise.PriceVolatility)
	c.Noise.CancelProbability = getEnvFloat("MMS_NOISE_CANCEL_PROB", c.Noise.CancelProbability)
	c.Noise.ReferencePrice = book.Price(getEnvInt("MMS_REFERENCE_PRICE", int(c.Noise.ReferencePrice)))

	return c
}

// Validate checks the loaded values for basic sanity.
func (c *Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("invalid step count: %d", c.Steps)
	}
	if c.Sim.TimeStep <= 0 {
		return fmt.Errorf("invalid time step: %d", c.Sim.TimeStep)
	}
	if c.Sim.SnapshotInterval <= 0 {
		return fmt.Errorf("invalid snapshot interval: %d", c.Sim.SnapshotInterval)
	}
	if c.Server.DepthLimit <= 0 {
		return fmt.Errorf("invalid depth limit: %d", c.Server.DepthLimit)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
