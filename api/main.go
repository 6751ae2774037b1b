package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/DeafMist/news-research-radar/internal/auth"
	"github.com/DeafMist/news-research-radar/internal/config"
	"github.com/DeafMist/news-research-radar/internal/elasticsearch"
	"github.com/DeafMist/news-research-radar/internal/feedback"
	"github.com/DeafMist/news-research-radar/internal/logger"
	"github.com/DeafMist/news-research-radar/internal/models"
	"github.com/DeafMist/news-research-radar/internal/newsapi"
	"github.com/DeafMist/news-research-radar/internal/queue"
	"github.com/DeafMist/news-research-radar/internal/research"
	"github.com/DeafMist/news-research-radar/internal/sentiment"
	"github.com/DeafMist/news-research-radar/internal/topics"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, nil, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	users, err := auth.LoadStore(cfg.UsersFile)
	if err != nil {
		log.Error("load users", slog.Any("err", err))
		os.Exit(1)
	}

	news, err := newsapi.NewClient(newsapi.Config{BaseURL: cfg.NewsAPIBaseURL, APIKey: cfg.NewsAPIKey, MaxRetries: 2}, log)
	if err != nil {
		log.Error("init newsapi", slog.Any("err", err))
		os.Exit(1)
	}

	publisher := queue.NewPublisher(queue.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic), log)
	defer publisher.Close()

	srv := &server{
		log:       log,
		cfg:       cfg,
		store:     esClient,
		sessions:  auth.NewSessions(users, cfg.SessionCapacity, cfg.SessionTTL),
		publisher: publisher,
		feedback:  feedback.NewLog(cfg.FeedbackLog),
		research: research.New(research.Deps{
			Sources: []research.Source{news},
		}, research.Settings{
			Language:       cfg.NewsLanguage,
			PageSize:       cfg.NewsPageSize,
			TopicsInFlight: cfg.TopicsInFlight,
		}, log),
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.TopicsTimeout + 15*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr), slog.Int("users", users.Len()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type articleStore interface {
	Health(ctx context.Context) error
	SearchArticles(ctx context.Context, params elasticsearch.SearchParams) (*elasticsearch.SearchResult, error)
}

type articlePublisher interface {
	PublishArticles(ctx context.Context, query string, articles []models.Article) (int, error)
}

type researcher interface {
	SearchIn(ctx context.Context, query, language string, pageSize int) ([]models.Article, error)
	Topics(ctx context.Context, docs []string, numTopics, topK int) ([]topics.Topic, error)
}

type sessionStore interface {
	Login(username, password string) (string, error)
	User(token string) (string, bool)
	Logout(token string)
}

type feedbackRecorder interface {
	Record(user, text string) (feedback.Entry, error)
}

type server struct {
	log       *slog.Logger
	cfg       *config.API
	store     articleStore
	sessions  sessionStore
	publisher articlePublisher
	research  researcher
	feedback  feedbackRecorder
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ctxKey struct{}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Post("/logout", s.handleLogout)
		r.Get("/news", s.handleSearch)
		r.Post("/news/fetch", s.handleFetch)
		r.Post("/topics", s.handleTopics)
		r.Post("/feedback", s.handleFeedback)
	})
	return r
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (s *server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.sessions.User(bearerToken(r))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "login required", Code: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func userFrom(ctx context.Context) string {
	user, _ := ctx.Value(ctxKey{}).(string)
	return user
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := s.sessions.Login(req.Username, req.Password)
	if err != nil {
		s.log.Info("login rejected", slog.String("username", req.Username))
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid username or password", Code: "invalid_credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	sentimentFilter := strings.ToLower(strings.TrimSpace(q.Get("sentiment")))
	if sentimentFilter != "" && !sentiment.Label(sentimentFilter).Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown sentiment " + strconv.Quote(sentimentFilter), Code: "bad_request"})
		return
	}

	params := elasticsearch.SearchParams{
		Query:     strings.TrimSpace(q.Get("q")),
		Keywords:  parseCSV(q.Get("keywords")),
		Source:    strings.TrimSpace(q.Get("source")),
		Sentiment: sentimentFilter,
		From:      clampInt(q.Get("from"), 0, 10_000),
		Size:      clampInt(q.Get("size"), s.cfg.DefaultPage, s.cfg.MaxPage),
		Sort:      strings.TrimSpace(q.Get("sort")),
		Start:     parseTime(q.Get("start")),
		End:       parseTime(q.Get("end")),
	}

	result, err := s.store.SearchArticles(ctx, params)
	if err != nil {
		s.log.Error("search articles", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type fetchRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
	PageSize int    `json:"page_size"`
}

func (s *server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required", Code: "bad_request"})
		return
	}
	if req.PageSize <= 0 || req.PageSize > s.cfg.NewsPageSize {
		req.PageSize = s.cfg.NewsPageSize
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	articles, err := s.research.SearchIn(ctx, req.Query, req.Language, req.PageSize)
	if err != nil {
		s.log.Error("fetch articles", slog.String("query", req.Query), slog.Any("err", err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Code: "source_error"})
		return
	}

	queued, err := s.publisher.PublishArticles(ctx, req.Query, articles)
	if err != nil {
		s.log.Error("queue articles", slog.String("query", req.Query), slog.Any("err", err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Code: "queue_error"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"query": req.Query, "found": len(articles), "queued": queued})
}

type topicsRequest struct {
	Documents []string `json:"documents"`
	Query     string   `json:"query"`
	NumTopics *int     `json:"num_topics"`
	TopK      int      `json:"top_k"`
}

type topicsResponse struct {
	Documents int            `json:"documents"`
	Topics    []topics.Topic `json:"topics"`
}

func (s *server) handleTopics(w http.ResponseWriter, r *http.Request) {
	var req topicsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.TopicsTimeout)
	defer cancel()

	docs := req.Documents
	if len(docs) == 0 && strings.TrimSpace(req.Query) != "" {
		res, err := s.store.SearchArticles(ctx, elasticsearch.SearchParams{Query: req.Query, Size: s.cfg.TopicsMaxDocs})
		if err != nil {
			s.log.Error("load documents for topics", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		docs = research.DocumentTexts(res.Items)
	}
	if len(docs) > s.cfg.TopicsMaxDocs {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error: "too many documents, limit is " + strconv.Itoa(s.cfg.TopicsMaxDocs),
			Code:  "too_many_documents",
		})
		return
	}

	numTopics := s.cfg.NumTopics
	if req.NumTopics != nil {
		numTopics = *req.NumTopics
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	result, err := s.research.Topics(ctx, docs, numTopics, topK)
	if err != nil {
		status, code := topicsErrorStatus(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("cluster topics", slog.Any("err", err))
		}
		writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
		return
	}
	writeJSON(w, http.StatusOK, topicsResponse{Documents: len(docs), Topics: result})
}

func topicsErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, topics.ErrEmptyCorpus):
		return http.StatusUnprocessableEntity, "empty_corpus"
	case errors.Is(err, topics.ErrEmptyVocabulary):
		return http.StatusUnprocessableEntity, "empty_vocabulary"
	case errors.Is(err, topics.ErrInvalidParameter):
		return http.StatusUnprocessableEntity, "invalid_parameter"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

type feedbackRequest struct {
	Text string `json:"text"`
}

func (s *server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := s.feedback.Record(userFrom(r.Context()), req.Text)
	if err != nil {
		if errors.Is(err, feedback.ErrEmpty) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "bad_request"})
			return
		}
		s.log.Error("record feedback", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": entry.ID})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<20))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error(), Code: "bad_request"})
		return false
	}
	return true
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	return nil
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func clampInt(raw string, fallback, max int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
