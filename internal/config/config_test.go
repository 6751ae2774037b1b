package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/DeafMist/news-research-radar/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("SUMMARY_MAX_REQUESTS", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "articles", cfg.ElasticsearchIndex)
	require.Len(t, cfg.KafkaBrokers, 1)
	require.Equal(t, "kafka:9092", cfg.KafkaBrokers[0])
	require.Equal(t, "articles_raw", cfg.KafkaTopic)
	require.Equal(t, "article-worker", cfg.KafkaConsumer)
	require.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	require.Equal(t, 0, cfg.SummaryMaxRequests)
	require.Equal(t, 15*time.Second, cfg.ScrapeTimeout)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9999")
	t.Setenv("ELASTICSEARCH_INDEX", "custom")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092,broker-b:29093")
	t.Setenv("KAFKA_TOPIC", "custom_topic")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("WORKER_KEYWORD_LIMIT", "12")
	t.Setenv("WORKER_KEYWORD_MIN_LEN", "5")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")
	t.Setenv("WORKER_BATCH_SIZE", "3")
	t.Setenv("WORKER_COMMIT_INTERVAL", "5s")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_MODEL", "gemini-pro")
	t.Setenv("SUMMARY_MAX_REQUESTS", "7")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9999", cfg.ElasticsearchAddr)
	require.Equal(t, "custom", cfg.ElasticsearchIndex)
	require.Len(t, cfg.KafkaBrokers, 2)
	require.Equal(t, "broker-a:29092", cfg.KafkaBrokers[0])
	require.Equal(t, "custom_topic", cfg.KafkaTopic)
	require.Equal(t, "custom-group", cfg.KafkaConsumer)
	require.Equal(t, 12, cfg.KeywordLimit)
	require.Equal(t, 5, cfg.KeywordMinLength)
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 3, cfg.BatchSize)
	require.Equal(t, 5*time.Second, cfg.CommitInterval)
	require.Equal(t, "gemini-pro", cfg.GeminiModel)
	require.Equal(t, 7, cfg.SummaryMaxRequests)
}

func TestLoadWorkerRequiresGeminiKey(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := config.LoadWorker()
	require.Error(t, err)

	var cfgErr *config.Error
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, "GEMINI_API_KEY", cfgErr.Key)
}

func TestLoadAPI(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("API_PAGE_SIZE", "15")
	t.Setenv("API_MAX_PAGE_SIZE", "200")
	t.Setenv("ELASTICSEARCH_ADDR", "http://api-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "api-index")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("NEWSAPI_API_KEY", "news-key")
	t.Setenv("USERS_FILE", "/etc/radar/users.yaml")
	t.Setenv("API_SESSION_TTL", "1h")
	t.Setenv("TOPICS_DEFAULT", "3")
	t.Setenv("API_TOPICS_TIMEOUT", "")
	t.Setenv("API_TOPICS_IN_FLIGHT", "")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 15, cfg.DefaultPage)
	require.Equal(t, 200, cfg.MaxPage)
	require.Equal(t, "http://api-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "api-index", cfg.ElasticsearchIndex)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "news-key", cfg.NewsAPIKey)
	require.Equal(t, "/etc/radar/users.yaml", cfg.UsersFile)
	require.Equal(t, time.Hour, cfg.SessionTTL)
	require.Equal(t, 3, cfg.NumTopics)
	require.Equal(t, 30*time.Second, cfg.TopicsTimeout)
	require.Equal(t, 2, cfg.TopicsInFlight)
}

func TestLoadAPIValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		key  string
	}{
		{name: "missing news key", env: map[string]string{"NEWSAPI_API_KEY": ""}, key: "NEWSAPI_API_KEY"},
		{name: "page above max", env: map[string]string{"API_PAGE_SIZE": "50", "API_MAX_PAGE_SIZE": "10"}, key: "API_PAGE_SIZE"},
		{name: "zero topics", env: map[string]string{"TOPICS_DEFAULT": "0"}, key: "TOPICS_DEFAULT"},
		{name: "no clustering slots", env: map[string]string{"API_TOPICS_IN_FLIGHT": "0"}, key: "API_TOPICS_IN_FLIGHT"},
		{name: "news page too large", env: map[string]string{"NEWS_PAGE_SIZE": "500"}, key: "NEWS_PAGE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NEWSAPI_API_KEY", "news-key")
			t.Setenv("API_PAGE_SIZE", "")
			t.Setenv("API_MAX_PAGE_SIZE", "")
			t.Setenv("TOPICS_DEFAULT", "")
			t.Setenv("NEWS_PAGE_SIZE", "")
			t.Setenv("API_TOPICS_IN_FLIGHT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.LoadAPI()
			var cfgErr *config.Error
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, tt.key, cfgErr.Key)
		})
	}
}

func TestLoadRetention(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://ret-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "ret-index")
	t.Setenv("RETENTION_CRON", "12h")
	t.Setenv("RETENTION_MAX_AGE", "36h")
	t.Setenv("RETENTION_BATCH_SIZE", "123")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 36*time.Hour, cfg.MaxAge)
	require.Equal(t, 123, cfg.BatchSize)
	require.Equal(t, "http://ret-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "ret-index", cfg.ElasticsearchIndex)
}

func TestLoadConsoleNeedsASource(t *testing.T) {
	t.Setenv("NEWSAPI_API_KEY", "")
	t.Setenv("FEEDS_FILE", "")
	t.Setenv("SAMPLES_FILE", "")

	_, err := config.LoadConsole()
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "NEWSAPI_API_KEY", cfgErr.Key)

	t.Setenv("SAMPLES_FILE", "samples.json")
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := config.LoadConsole()
	require.NoError(t, err)
	require.Equal(t, "samples.json", cfg.SamplesFile)
	require.Empty(t, cfg.GeminiAPIKey)
	require.Equal(t, 5, cfg.NumTopics)
}
