// Package config loads and validates the gateway's YAML configuration file,
// mirroring the project's embedded-YAML manifest parsing pattern
// (gopkg.in/yaml.v3 unmarshal into a raw struct, then validate/default into
// the struct the rest of the program consumes).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tracker-fw/cloud-gateway/pkg/backoff"
	"github.com/tracker-fw/cloud-gateway/pkg/timestamp"
)

// raw mirrors the on-disk YAML shape (§6's Configuration table) before
// defaulting/validation.
type raw struct {
	BackoffMode             string `yaml:"backoff_mode"`
	BackoffInitialS         *float64 `yaml:"backoff_initial_s"`
	BackoffLinearIncrementS *float64 `yaml:"backoff_linear_increment_s"`
	BackoffMaxS             *float64 `yaml:"backoff_max_s"`
	ConfirmableMessages     *bool    `yaml:"confirmable_messages"`
	WatchdogTimeoutS        *float64 `yaml:"watchdog_timeout_s"`
	MsgProcessingTimeoutS   *float64 `yaml:"msg_processing_timeout_s"`
	TimestampPolicy         string   `yaml:"timestamp_policy"`
	FutureEpochThresholdMS  *int64   `yaml:"future_epoch_threshold_ms"`
}

// GatewayConfig is the fully-parsed, defaulted, and validated configuration
// consumed by the rest of the program (SPEC_FULL §3.1).
type GatewayConfig struct {
	Backoff                backoff.Schedule
	ConfirmableMessages    bool
	WatchdogTimeout        time.Duration
	MsgProcessingTimeout   time.Duration
	TimestampPolicy        timestamp.Policy
	FutureEpochThresholdMS int64
}

// Defaults used for any option absent from the YAML file.
const (
	defaultBackoffInitialS         = 10.0
	defaultBackoffLinearIncrementS = 10.0
	defaultBackoffMaxS             = 300.0
	defaultConfirmableMessages     = true
	defaultWatchdogTimeoutS        = 60.0
	defaultMsgProcessingTimeoutS   = 30.0
	defaultFutureEpochThresholdMS  = 4_000_000_000_000
)

// Load reads and validates a configuration file at path.
func Load(path string) (GatewayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GatewayConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses and validates YAML configuration bytes, returning a fully
// defaulted GatewayConfig or an error. A config that fails validation is
// never returned partially valid.
func Parse(data []byte) (GatewayConfig, error) {
	var r raw
	if err := yaml.Unmarshal(data, &r); err != nil {
		return GatewayConfig{}, fmt.Errorf("parsing gateway config: %w", err)
	}
	return r.build()
}

func (r raw) build() (GatewayConfig, error) {
	mode, err := parseBackoffMode(r.BackoffMode)
	if err != nil {
		return GatewayConfig{}, err
	}

	initial := durationOrDefault(r.BackoffInitialS, defaultBackoffInitialS)
	increment := durationOrDefault(r.BackoffLinearIncrementS, defaultBackoffLinearIncrementS)
	maxDelay := durationOrDefault(r.BackoffMaxS, defaultBackoffMaxS)
	if initial <= 0 {
		return GatewayConfig{}, fmt.Errorf("config: backoff_initial_s must be positive")
	}
	if maxDelay < initial {
		return GatewayConfig{}, fmt.Errorf("config: backoff_max_s must be >= backoff_initial_s")
	}

	watchdogTimeout := durationOrDefault(r.WatchdogTimeoutS, defaultWatchdogTimeoutS)
	msgTimeout := durationOrDefault(r.MsgProcessingTimeoutS, defaultMsgProcessingTimeoutS)
	if !(msgTimeout < watchdogTimeout) {
		return GatewayConfig{}, fmt.Errorf("config: msg_processing_timeout_s (%s) must be < watchdog_timeout_s (%s)", msgTimeout, watchdogTimeout)
	}

	policy, err := parseTimestampPolicy(r.TimestampPolicy)
	if err != nil {
		return GatewayConfig{}, err
	}

	threshold := int64OrDefault(r.FutureEpochThresholdMS, defaultFutureEpochThresholdMS)

	confirmable := defaultConfirmableMessages
	if r.ConfirmableMessages != nil {
		confirmable = *r.ConfirmableMessages
	}

	return GatewayConfig{
		Backoff: backoff.Schedule{
			Mode:            mode,
			Initial:         initial,
			Max:             maxDelay,
			LinearIncrement: increment,
		},
		ConfirmableMessages:    confirmable,
		WatchdogTimeout:        watchdogTimeout,
		MsgProcessingTimeout:   msgTimeout,
		TimestampPolicy:        policy,
		FutureEpochThresholdMS: threshold,
	}, nil
}

func parseBackoffMode(s string) (backoff.Mode, error) {
	switch s {
	case "", "exponential":
		return backoff.ModeExponential, nil
	case "linear":
		return backoff.ModeLinear, nil
	case "none":
		return backoff.ModeNone, nil
	default:
		return 0, fmt.Errorf("config: unrecognized backoff_mode %q", s)
	}
}

func parseTimestampPolicy(s string) (timestamp.Policy, error) {
	switch s {
	case "", "Keep":
		return timestamp.PolicyKeep, nil
	case "Now":
		return timestamp.PolicyNow, nil
	case "NoTimestamp":
		return timestamp.PolicyNoTimestamp, nil
	case "Drop":
		return timestamp.PolicyDrop, nil
	default:
		return 0, fmt.Errorf("config: unrecognized timestamp_policy %q", s)
	}
}

func durationOrDefault(v *float64, def float64) time.Duration {
	if v == nil {
		return time.Duration(def * float64(time.Second))
	}
	return time.Duration(*v * float64(time.Second))
}

func int64OrDefault(v *int64, def int64) int64 {
	if v == nil {
		return def
	}
	return *v
}
