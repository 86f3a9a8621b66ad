package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	DatabaseURL string
	RedisURL    string
	HTTPPort    string
	MetricsPort string
	WorkerCount int
	CampaignID  string

	LLM    LLMConfig
	Prompt PromptConfig
}

type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Persona     string
}

type PromptConfig struct {
	TopN          int
	ContextFields []string
	NameField     string
	ARPUField     string
	RulesFile     string
	RulesText     string
	MinDrivers    int
	RankDrivers   bool
	CacheTTL      time.Duration
}

const defaultContextFields = "state_name,previous_classification,arpu_90_days,network_age_years"

func Load() *Config {
	// .env at the repo root when run from cmd/<binary>
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		HTTPPort:    getEnv("HTTP_PORT", "8000"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		WorkerCount: getInt("WORKER_COUNT", 5),
		CampaignID:  getEnv("CAMPAIGN_ID", "default"),
		LLM: LLMConfig{
			APIKey:      getEnv("LLM_API_KEY", os.Getenv("OPENAI_API_KEY")),
			BaseURL:     getEnv("LLM_BASE_URL", "https://api.deepseek.com/v1"),
			Model:       getEnv("LLM_MODEL", "deepseek-chat"),
			Temperature: float32(getFloat("LLM_TEMPERATURE", 0.6)),
			MaxTokens:   getInt("LLM_MAX_TOKENS", 600),
			Persona:     getEnv("LLM_PERSONA", "You are an AI assistant for telemarketing strategy."),
		},
		Prompt: PromptConfig{
			TopN:          getInt("TOP_N", 10),
			ContextFields: getList("CONTEXT_FIELDS", defaultContextFields),
			NameField:     os.Getenv("NAME_FIELD"),
			ARPUField:     getEnv("ARPU_FIELD", "arpu_90_days"),
			RulesFile:     os.Getenv("RULES_FILE"),
			RulesText:     os.Getenv("RULES_TEXT"),
			MinDrivers:    getInt("MIN_DRIVERS", 0),
			RankDrivers:   getBool("RANK_DRIVERS", true),
			CacheTTL:      getDuration("PROMPT_CACHE_TTL", 30*time.Minute),
		},
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return i
}

func getFloat(k string, d float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return d
	}
	return f
}

func getBool(k string, d bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func getDuration(k string, d time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return d
	}
	return dur
}

// getList splits a comma-separated variable, dropping blanks. An explicitly
// empty variable is not distinguishable from an unset one.
func getList(k, d string) []string {
	raw := getEnv(k, d)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
