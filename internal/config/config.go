package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Error reports a configuration value that failed validation at startup.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s", e.Key, e.Reason)
}

func invalid(key, reason string) error {
	return &Error{Key: key, Reason: reason}
}

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Gemini configures the summarizer.
type Gemini struct {
	GeminiAPIKey       string
	GeminiModel        string
	SummaryMaxRequests int
	SummaryMaxTokens   int
}

// Worker holds configuration for the Kafka -> Elasticsearch enrichment worker.
type Worker struct {
	Common
	Gemini
	KafkaBrokers     []string
	KafkaTopic       string
	KafkaConsumer    string
	KeywordLimit     int
	KeywordMinLength int
	DedupeCapacity   int
	DedupeTTL        time.Duration
	BatchSize        int
	CommitInterval   time.Duration
	ScrapeTimeout    time.Duration
	ScrapeMinChars   int
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr        string
	DefaultPage     int
	MaxPage         int
	KafkaBrokers    []string
	KafkaTopic      string
	NewsAPIKey      string
	NewsAPIBaseURL  string
	NewsLanguage    string
	NewsPageSize    int
	UsersFile       string
	SessionTTL      time.Duration
	SessionCapacity int
	FeedbackLog     string
	NumTopics       int
	TopK            int
	TopicsTimeout   time.Duration
	TopicsMaxDocs   int
	TopicsInFlight  int
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

// Console configures the interactive terminal client.
type Console struct {
	Gemini
	UsersFile      string
	NewsAPIKey     string
	NewsAPIBaseURL string
	FeedsFile      string
	SamplesFile    string
	NewsLanguage   string
	NewsPageSize   int
	FeedbackLog    string
	ExportDir      string
	LogFile        string
	NumTopics      int
	TopK           int
	TopicsTimeout  time.Duration
	ScrapeTimeout  time.Duration
	ScrapeMinChars int
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "articles"),
	}
}

func loadGemini() Gemini {
	return Gemini{
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		SummaryMaxRequests: getInt("SUMMARY_MAX_REQUESTS", 0),
		SummaryMaxTokens:   getInt("SUMMARY_MAX_TOKENS", 150),
	}
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:           loadCommon(),
		Gemini:           loadGemini(),
		KafkaBrokers:     splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "articles_raw"),
		KafkaConsumer:    getEnv("KAFKA_CONSUMER_GROUP", "article-worker"),
		KeywordLimit:     getInt("WORKER_KEYWORD_LIMIT", 8),
		KeywordMinLength: getInt("WORKER_KEYWORD_MIN_LEN", 4),
		DedupeCapacity:   getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:        getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:        getInt("WORKER_BATCH_SIZE", 10),
		CommitInterval:   getDuration("WORKER_COMMIT_INTERVAL", "2s"),
		ScrapeTimeout:    getDuration("SCRAPE_TIMEOUT", "15s"),
		ScrapeMinChars:   getInt("SCRAPE_MIN_CHARS", 400),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, invalid("KAFKA_BROKERS", "must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, invalid("WORKER_BATCH_SIZE", "must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, invalid("WORKER_DEDUPE_CAPACITY", "must be positive")
	}
	if c.KeywordLimit <= 0 {
		return nil, invalid("WORKER_KEYWORD_LIMIT", "must be positive")
	}
	if c.KeywordMinLength < 0 {
		return nil, invalid("WORKER_KEYWORD_MIN_LEN", "cannot be negative")
	}
	if err := c.Gemini.validate(true); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:          loadCommon(),
		BindAddr:        getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultPage:     getInt("API_PAGE_SIZE", 20),
		MaxPage:         getInt("API_MAX_PAGE_SIZE", 100),
		KafkaBrokers:    splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "articles_raw"),
		NewsAPIKey:      getEnv("NEWSAPI_API_KEY", ""),
		NewsAPIBaseURL:  getEnv("NEWSAPI_BASE_URL", "https://newsapi.org"),
		NewsLanguage:    getEnv("NEWS_LANGUAGE", "en"),
		NewsPageSize:    getInt("NEWS_PAGE_SIZE", 100),
		UsersFile:       getEnv("USERS_FILE", "config/users.yaml"),
		SessionTTL:      getDuration("API_SESSION_TTL", "12h"),
		SessionCapacity: getInt("API_SESSION_CAPACITY", 1000),
		FeedbackLog:     getEnv("FEEDBACK_LOG", "feedback_log.jsonl"),
		NumTopics:       getInt("TOPICS_DEFAULT", 5),
		TopK:            getInt("TOPICS_TOP_K", 10),
		TopicsTimeout:   getDuration("API_TOPICS_TIMEOUT", "30s"),
		TopicsMaxDocs:   getInt("API_TOPICS_MAX_DOCS", 200),
		TopicsInFlight:  getInt("API_TOPICS_IN_FLIGHT", 2),
	}

	if c.DefaultPage <= 0 {
		return nil, invalid("API_PAGE_SIZE", "must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, invalid("API_MAX_PAGE_SIZE", "must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, invalid("API_PAGE_SIZE", "cannot exceed API_MAX_PAGE_SIZE")
	}
	if len(c.KafkaBrokers) == 0 {
		return nil, invalid("KAFKA_BROKERS", "must contain at least one broker")
	}
	if c.NewsAPIKey == "" {
		return nil, invalid("NEWSAPI_API_KEY", "is required")
	}
	if c.UsersFile == "" {
		return nil, invalid("USERS_FILE", "is required")
	}
	if c.SessionCapacity <= 0 {
		return nil, invalid("API_SESSION_CAPACITY", "must be positive")
	}
	if err := validateNews(c.NewsPageSize); err != nil {
		return nil, err
	}
	if err := validateTopics(c.NumTopics, c.TopK); err != nil {
		return nil, err
	}
	if c.TopicsMaxDocs <= 0 {
		return nil, invalid("API_TOPICS_MAX_DOCS", "must be positive")
	}
	if c.TopicsInFlight <= 0 {
		return nil, invalid("API_TOPICS_IN_FLIGHT", "must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "168h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, invalid("RETENTION_MAX_AGE", "must be positive")
	}
	if c.Interval <= 0 {
		return nil, invalid("RETENTION_CRON", "must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, invalid("RETENTION_BATCH_SIZE", "must be positive")
	}

	return c, nil
}

// LoadConsole builds the terminal client config from environment variables.
// At least one article source (NewsAPI key, feeds file or samples file) is
// required; the Gemini key is optional and only enables live summaries.
func LoadConsole() (*Console, error) {
	c := &Console{
		Gemini:         loadGemini(),
		UsersFile:      getEnv("USERS_FILE", "config/users.yaml"),
		NewsAPIKey:     getEnv("NEWSAPI_API_KEY", ""),
		NewsAPIBaseURL: getEnv("NEWSAPI_BASE_URL", "https://newsapi.org"),
		FeedsFile:      getEnv("FEEDS_FILE", ""),
		SamplesFile:    getEnv("SAMPLES_FILE", ""),
		NewsLanguage:   getEnv("NEWS_LANGUAGE", "en"),
		NewsPageSize:   getInt("NEWS_PAGE_SIZE", 20),
		FeedbackLog:    getEnv("FEEDBACK_LOG", "feedback_log.jsonl"),
		ExportDir:      getEnv("EXPORT_DIR", "."),
		LogFile:        getEnv("CONSOLE_LOG_FILE", "console.log"),
		NumTopics:      getInt("TOPICS_DEFAULT", 5),
		TopK:           getInt("TOPICS_TOP_K", 10),
		TopicsTimeout:  getDuration("CONSOLE_TOPICS_TIMEOUT", "60s"),
		ScrapeTimeout:  getDuration("SCRAPE_TIMEOUT", "15s"),
		ScrapeMinChars: getInt("SCRAPE_MIN_CHARS", 400),
	}

	if c.UsersFile == "" {
		return nil, invalid("USERS_FILE", "is required")
	}
	if c.NewsAPIKey == "" && c.FeedsFile == "" && c.SamplesFile == "" {
		return nil, invalid("NEWSAPI_API_KEY", "is required when neither FEEDS_FILE nor SAMPLES_FILE is set")
	}
	if err := validateNews(c.NewsPageSize); err != nil {
		return nil, err
	}
	if err := validateTopics(c.NumTopics, c.TopK); err != nil {
		return nil, err
	}
	if err := c.Gemini.validate(false); err != nil {
		return nil, err
	}

	return c, nil
}

func (g Gemini) validate(requireKey bool) error {
	if requireKey && g.GeminiAPIKey == "" {
		return invalid("GEMINI_API_KEY", "is required")
	}
	if g.GeminiModel == "" {
		return invalid("GEMINI_MODEL", "cannot be empty")
	}
	if g.SummaryMaxRequests < 0 {
		return invalid("SUMMARY_MAX_REQUESTS", "cannot be negative")
	}
	if g.SummaryMaxTokens <= 0 {
		return invalid("SUMMARY_MAX_TOKENS", "must be positive")
	}
	return nil
}

func validateNews(pageSize int) error {
	// NewsAPI rejects page sizes above 100.
	if pageSize <= 0 || pageSize > 100 {
		return invalid("NEWS_PAGE_SIZE", "must be between 1 and 100")
	}
	return nil
}

func validateTopics(numTopics, topK int) error {
	if numTopics < 1 {
		return invalid("TOPICS_DEFAULT", "must be at least 1")
	}
	if topK < 1 {
		return invalid("TOPICS_TOP_K", "must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err == nil {
		return d
	}
	fd, ferr := time.ParseDuration(fallback)
	if ferr != nil {
		panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
	}
	return fd
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
