package config

import (
    "errors"
    "fmt"
    "os"
    "strconv"
    "time"
)

// Reasoning modes. Rules never calls out; live uses the configured model.
const (
    ModeRules = "rules"
    ModeLive  = "live"
)

type Config struct {
    Env          string
    ListenAddr   string
    DatabaseURL  string
    AuditWorkers int
    LogLevel     string

    ReasoningMode  string
    OpenAIKey      string
    OpenAIModel    string
    OpenAIBaseURL  string
    TextgenTimeout time.Duration
    TextgenRPS     float64

    RedisURL      string
    DictionaryTTL time.Duration
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// Load reads the environment. The returned error is a soft warning: cfg is
// always usable, callers decide what is fatal.
func Load() (Config, error) {
    cfg := Config{
        Env:          getenv("APP_ENV", "development"),
        ListenAddr:   getenv("LISTEN_ADDR", ":8080"),
        DatabaseURL:  os.Getenv("DATABASE_URL"),
        AuditWorkers: getenvInt("AUDIT_WORKERS", 0),
        LogLevel:     getenv("LOG_LEVEL", "info"),

        ReasoningMode:  getenv("REASONING_MODE", ModeRules),
        OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
        OpenAIModel:    getenv("OPENAI_MODEL", "gpt-4o"),
        OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
        TextgenTimeout: getenvDuration("TEXTGEN_TIMEOUT", 20*time.Second),
        TextgenRPS:     getenvFloat("TEXTGEN_RPS", 2),

        RedisURL:      os.Getenv("REDIS_URL"),
        DictionaryTTL: getenvDuration("DICTIONARY_TTL", 5*time.Minute),
    }

    var warns []error
    switch cfg.ReasoningMode {
    case ModeRules:
    case ModeLive:
        if cfg.OpenAIKey == "" {
            cfg.ReasoningMode = ModeRules
            warns = append(warns, fmt.Errorf("REASONING_MODE=live without OPENAI_API_KEY, using rules"))
        }
    default:
        warns = append(warns, fmt.Errorf("unknown REASONING_MODE %q, using rules", cfg.ReasoningMode))
        cfg.ReasoningMode = ModeRules
    }
    if cfg.DatabaseURL == "" {
        // Not fatal for offline runs; warn via error value so callers can decide.
        warns = append(warns, fmt.Errorf("DATABASE_URL not set"))
    }
    return cfg, errors.Join(warns...)
}

// Live reports whether the model-backed capability should be wired.
func (c Config) Live() bool { return c.ReasoningMode == ModeLive }

func getenvInt(key string, def int) int {
    if v := os.Getenv(key); v != "" {
        var out int
        _, err := fmt.Sscanf(v, "%d", &out)
        if err == nil { return out }
    }
    return def
}

func getenvFloat(key string, def float64) float64 {
    if v := os.Getenv(key); v != "" {
        if f, err := strconv.ParseFloat(v, 64); err == nil { return f }
    }
    return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
    if v := os.Getenv(key); v != "" {
        if d, err := time.ParseDuration(v); err == nil { return d }
    }
    return def
}
