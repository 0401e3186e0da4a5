package api

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"campaignpulse/internal/campaign"
	"campaignpulse/internal/classifier"
	"campaignpulse/internal/domain"
	"campaignpulse/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	defaultPageSize = 50
	maxPageSize     = 500
	maxBatchSize    = 1000
)

// QueryStore manages the search queries the scraper tracks.
type QueryStore interface {
	AddQuery(ctx context.Context, query string) error
	RemoveQuery(ctx context.Context, query string) error
	GetQueries(ctx context.Context) ([]string, error)
	QueryExists(ctx context.Context, query string) (bool, error)
}

// CountSource reports per-topic totals for a campaign.
type CountSource interface {
	TopicCounts(ctx context.Context, campaign string) (map[string]int64, error)
}

type Server struct {
	echo      *echo.Echo
	repo      storage.CommentRepository
	counts    CountSource
	queries   QueryStore
	engine    *classifier.Engine
	campaign  campaign.Metadata
	templates *template.Template
	sse       *SSEBroker
	logger    *zap.Logger
}

type ServerDeps struct {
	Repo     storage.CommentRepository
	Queries  QueryStore
	// Counts defaults to Repo when nil.
	Counts   CountSource
	Engine   *classifier.Engine
	Campaign campaign.Metadata
	Logger   *zap.Logger
}

type SSEBroker struct {
	clients map[chan string]bool
	mu      sync.RWMutex
}

func NewSSEBroker() *SSEBroker {
	return &SSEBroker{clients: make(map[chan string]bool)}
}

func (b *SSEBroker) Subscribe() chan string {
	ch := make(chan string, 10)
	b.mu.Lock()
	b.clients[ch] = true
	b.mu.Unlock()
	return ch
}

func (b *SSEBroker) Unsubscribe(ch chan string) {
	b.mu.Lock()
	delete(b.clients, ch)
	close(ch)
	b.mu.Unlock()
}

// Broadcast fans msg out to every subscriber; slow subscribers miss it.
func (b *SSEBroker) Broadcast(msg string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}

type CommentView struct {
	ID       string
	Username string
	Content  string
	Topic    string
	TimeAgo  string
}

type classifyRequest struct {
	Comment any `json:"comment"`
}

type batchRequest struct {
	Comments []any `json:"comments"`
}

func NewServer(d ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	l := d.Logger
	if l == nil {
		l = zap.NewNop()
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	tmpl := template.Must(template.ParseFS(templateFS, "templates/*.html"))

	var counts CountSource = d.Repo
	if d.Counts != nil {
		counts = d.Counts
	}

	s := &Server{
		echo:      e,
		repo:      d.Repo,
		counts:    counts,
		queries:   d.Queries,
		engine:    d.Engine,
		campaign:  d.Campaign,
		templates: tmpl,
		sse:       NewSSEBroker(),
		logger:    l,
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.echo.GET("/", s.index)
	s.echo.GET("/health", s.health)

	s.echo.POST("/api/classify", s.classify)
	s.echo.POST("/api/classify/batch", s.classifyBatch)
	s.echo.GET("/api/campaign", s.getCampaign)

	s.echo.GET("/api/stats", s.stats)
	s.echo.GET("/api/comments", s.getComments)
	s.echo.GET("/api/comments/:id", s.getComment)
	s.echo.GET("/api/events", s.events)

	// Tracked search queries
	s.echo.GET("/api/queries", s.getQueries)
	s.echo.POST("/api/queries", s.addQuery)
	s.echo.DELETE("/api/queries/:query", s.removeQuery)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

func (s *Server) Broadcast(msg string) {
	s.sse.Broadcast(msg)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) index(c echo.Context) error {
	ctx := c.Request().Context()

	comments, err := s.repo.FindAll(ctx, 20, 0)
	if err != nil {
		s.logger.Warn("load comments failed", zap.Error(err))
	}
	queries, err := s.queries.GetQueries(ctx)
	if err != nil {
		s.logger.Warn("load queries failed", zap.Error(err))
	}
	counts, err := s.topicCounts(ctx)
	if err != nil {
		s.logger.Warn("load stats failed", zap.Error(err))
	}

	views := make([]CommentView, len(comments))
	for i, m := range comments {
		views[i] = CommentView{
			ID:       m.ID,
			Username: m.Username,
			Content:  m.Content,
			Topic:    m.Topic,
			TimeAgo:  timeAgo(m.CreatedAt),
		}
	}

	data := map[string]any{
		"Campaign": s.campaign,
		"Stats":    counts,
		"Comments": views,
		"Queries":  queries,
	}

	return s.render(c, "index.html", data)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) classify(c echo.Context) error {
	var req classifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	return c.JSON(http.StatusOK, s.engine.ExplainValue(req.Comment))
}

func (s *Server) classifyBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if len(req.Comments) > maxBatchSize {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"error": fmt.Sprintf("at most %d comments per batch", maxBatchSize),
		})
	}

	results := make([]classifier.Match, len(req.Comments))
	for i, comment := range req.Comments {
		results[i] = s.engine.ExplainValue(comment)
	}

	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

func (s *Server) getCampaign(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"metadata":      s.campaign.Clone(),
		"topics":        s.engine.Topics(),
		"default_topic": s.engine.DefaultTopic(),
		"rules":         s.engine.RuleCount(),
		"overlaps":      s.engine.Overlaps(),
	})
}

func (s *Server) stats(c echo.Context) error {
	counts, err := s.topicCounts(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return c.JSON(http.StatusOK, map[string]any{
			"campaign": s.campaign.CampaignName,
			"topics":   counts,
		})
	}
	return s.render(c, "stats", counts)
}

// topicCounts returns a count for every engine topic, zero included, in rule order.
func (s *Server) topicCounts(ctx context.Context) ([]TopicCount, error) {
	raw, err := s.counts.TopicCounts(ctx, s.campaign.CampaignName)
	if err != nil {
		return nil, err
	}

	topics := s.engine.Topics()
	counts := make([]TopicCount, 0, len(topics))
	for _, t := range topics {
		counts = append(counts, TopicCount{Topic: string(t), Count: raw[string(t)]})
	}
	return counts, nil
}

func (s *Server) getComments(c echo.Context) error {
	limit := queryInt(c, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	ctx := c.Request().Context()
	var (
		comments []domain.ClassifiedComment
		err      error
	)

	if topic := c.QueryParam("topic"); topic != "" {
		comments, err = s.repo.FindByTopic(ctx, topic, limit, offset)
	} else {
		comments, err = s.repo.FindAll(ctx, limit, offset)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if comments == nil {
		comments = []domain.ClassifiedComment{}
	}
	return c.JSON(http.StatusOK, comments)
}

func (s *Server) getComment(c echo.Context) error {
	id := c.Param("id")
	comment, err := s.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if comment == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, comment)
}

func (s *Server) getQueries(c echo.Context) error {
	queries, err := s.queries.GetQueries(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return s.render(c, "queries", queries)
}

func (s *Server) addQuery(c echo.Context) error {
	query := strings.TrimSpace(c.FormValue("query"))

	if query == "" {
		return c.HTML(http.StatusBadRequest, `<div class="error">Query required</div>`)
	}

	exists, _ := s.queries.QueryExists(c.Request().Context(), query)
	if exists {
		return c.HTML(http.StatusConflict, `<div class="error">Already tracking</div>`)
	}

	if err := s.queries.AddQuery(c.Request().Context(), query); err != nil {
		return c.HTML(http.StatusInternalServerError, `<div class="error">Failed to add</div>`)
	}

	return s.getQueries(c)
}

func (s *Server) removeQuery(c echo.Context) error {
	query := c.Param("query")
	if unescaped, err := url.PathUnescape(query); err == nil {
		query = unescaped
	}

	if err := s.queries.RemoveQuery(c.Request().Context(), query); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return s.getQueries(c)
}

func (s *Server) events(c echo.Context) error {
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")

	ch := s.sse.Subscribe()
	defer s.sse.Unsubscribe(ch)

	fmt.Fprintf(c.Response(), ": ping\n\n")
	c.Response().Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case msg := <-ch:
			fmt.Fprintf(c.Response(), "event: comment\n")
			for _, line := range strings.Split(msg, "\n") {
				fmt.Fprintf(c.Response(), "data: %s\n", line)
			}
			fmt.Fprintf(c.Response(), "\n")
			c.Response().Flush()
		}
	}
}

func (s *Server) render(c echo.Context, name string, data any) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.templates.ExecuteTemplate(c.Response(), name, data)
	if err != nil {
		s.logger.Error("render failed", zap.String("template", name), zap.Error(err))
	}
	return err
}

func queryInt(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
