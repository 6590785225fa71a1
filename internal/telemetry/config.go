package telemetry

import (
	"strconv"
	"strings"
	"time"
)

const (
	envPrefix      = "PLAYTERM_TRACE_OTEL_"
	envEndpoint    = envPrefix + "ENDPOINT"
	envInsecure    = envPrefix + "INSECURE"
	envHeaders     = envPrefix + "HEADERS"
	envService     = envPrefix + "SERVICE"
	envDialTimeout = envPrefix + "TIMEOUT"
	envSample      = envPrefix + "SAMPLE"
)

type Config struct {
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	ServiceName string
	Version     string
	DialTimeout time.Duration
	// SampleRatio is the fraction of dispatches traced, in [0,1].
	SampleRatio float64
}

func Default() Config {
	return Config{
		ServiceName: "playterm",
		DialTimeout: 5 * time.Second,
		SampleRatio: 1,
	}
}

// Enabled reports whether an exporter endpoint is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// ConfigFromEnv overlays PLAYTERM_TRACE_OTEL_* variables on the defaults.
// Invalid values are ignored.
func ConfigFromEnv(getenv func(string) string) Config {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	cfg := Default()
	val := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if v := val(envEndpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := val(envInsecure); v != "" {
		if parsed, ok := parseBool(v); ok {
			cfg.Insecure = parsed
		}
	}
	if v := val(envService); v != "" {
		cfg.ServiceName = v
	}
	if v := val(envDialTimeout); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			cfg.DialTimeout = dur
		}
	}
	if v := val(envSample); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil && ratio >= 0 && ratio <= 1 {
			cfg.SampleRatio = ratio
		}
	}
	if v := val(envHeaders); v != "" {
		cfg.Headers = ParseHeaders(v)
	}
	return cfg
}

// ParseHeaders converts comma separated key=value pairs into a header map.
func ParseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(entry), "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(value)
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
