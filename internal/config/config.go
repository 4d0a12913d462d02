package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/climate-index-etl/internal/domain"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	InputPath  string `validate:"required"`
	OutputPath string `validate:"required,nefield=InputPath"`
	XLSXPath   string `validate:"omitempty,nefield=InputPath"`
	SampleRows int    `validate:"gte=0,lte=100"`
	Cutoff     time.Time

	LogLevel  string `validate:"oneof=debug info warn warning error"`
	LogFormat string `validate:"oneof=json text"`

	// MetricsTextfile is where Prometheus metrics are written after a run,
	// for pickup by the node exporter textfile collector.
	MetricsTextfile string

	// Kafka sink configuration.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string `validate:"required_if=KafkaEnabled true"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cutoff, err := domain.ParseCutoff(sharedcfg.EnvOrDefault("SOI_CUTOFF", "1985-01"))
	if err != nil {
		return nil, errors.New("invalid SOI_CUTOFF")
	}

	sampleRows, err := parseSampleRows()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		InputPath:       sharedcfg.EnvOrDefault("SOI_INPUT_PATH", "raw_input_data/enso.txt"),
		OutputPath:      sharedcfg.EnvOrDefault("SOI_OUTPUT_PATH", "output_data/soi_index.csv"),
		XLSXPath:        os.Getenv("SOI_XLSX_PATH"),
		Cutoff:          cutoff,
		SampleRows:      sampleRows,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    brokers,
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "soi-anomalies"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", describe(err))
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func parseSampleRows() (int, error) {
	s := os.Getenv("SOI_SAMPLE_ROWS")
	if s == "" {
		return 5, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid SOI_SAMPLE_ROWS")
	}
	return n, nil
}

// envNames maps struct fields to the variables that set them so validation
// errors name what the operator can change.
var envNames = map[string]string{
	"InputPath":      "SOI_INPUT_PATH",
	"OutputPath":     "SOI_OUTPUT_PATH",
	"XLSXPath":       "SOI_XLSX_PATH",
	"Cutoff":         "SOI_CUTOFF",
	"SampleRows":     "SOI_SAMPLE_ROWS",
	"LogLevel":       "LOG_LEVEL",
	"LogFormat":      "LOG_FORMAT",
	"KafkaBrokers":   "KAFKA_BROKERS",
	"KafkaSinkTopic": "KAFKA_SINK_TOPIC",
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	name, ok := envNames[fe.Field()]
	if !ok {
		name = fe.Field()
	}
	return fmt.Errorf("%s failed %q check", name, fe.Tag())
}
