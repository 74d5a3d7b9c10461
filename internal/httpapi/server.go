// Package httpapi exposes the read-only event API. All write paths go
// through the CLI; the server never mutates the database.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"fjord.fyi/byplakat/internal/db"
	"fjord.fyi/byplakat/internal/globaltime"
	"fjord.fyi/byplakat/internal/normalize"
	"fjord.fyi/byplakat/internal/scraperhealth"
)

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	RunHistoryDays  int
}

type Server struct {
	pool   *db.Pool
	logger zerolog.Logger
	opts   Options
}

// eventItem is the public representation of one event. The local start
// offset is derived per event so clients render Bergen wall-clock time
// without shipping tzdata.
type eventItem struct {
	EventUUID       string     `json:"event_uuid"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	VenueName       string     `json:"venue_name"`
	Bydel           string     `json:"bydel"`
	Category        string     `json:"category"`
	StartsAt        time.Time  `json:"starts_at"`
	StartOffset     string     `json:"start_offset"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	Price           *string    `json:"price,omitempty"`
	TicketURL       *string    `json:"ticket_url,omitempty"`
	SourceURL       string     `json:"source_url"`
	ImageURL        *string    `json:"image_url,omitempty"`
	Description     string     `json:"description,omitempty"`
	DescriptionLang string     `json:"description_lang"`
	Source          string     `json:"source"`
	Status          string     `json:"status"`
}

func NewServer(pool *db.Pool, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	runHistoryDays := opts.RunHistoryDays
	if runHistoryDays <= 0 {
		runHistoryDays = 14
	}

	return &Server{
		pool:   pool,
		logger: logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			AllowedOrigins:  allowedOrigins,
			RunHistoryDays:  runHistoryDays,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/events", s.handleEvents)
	api.GET("/events/:slug", s.handleEventDetail)
	api.GET("/scrapers/health", s.handleScraperHealth)
	api.GET("/stats", s.handleStats)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("byplakat api started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("byplakat api stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "byplakat",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) handleEvents(c echo.Context) error {
	page, err := parsePositiveInt(c.QueryParam("page"), 1, 1, 1_000_000)
	if err != nil {
		return failValidation(c, map[string]string{"page": err.Error()})
	}

	pageSize, err := parsePositiveInt(c.QueryParam("page_size"), defaultPageSize, 1, maxPageSize)
	if err != nil {
		return failValidation(c, map[string]string{"page_size": err.Error()})
	}

	from, err := parseTimeFilter(c.QueryParam("from"), false)
	if err != nil {
		return failValidation(c, map[string]string{"from": "must be RFC3339 or YYYY-MM-DD"})
	}
	to, err := parseTimeFilter(c.QueryParam("to"), true)
	if err != nil {
		return failValidation(c, map[string]string{"to": "must be RFC3339 or YYYY-MM-DD"})
	}
	if from != nil && to != nil && from.After(*to) {
		return failValidation(c, map[string]string{"time_range": "from must be <= to"})
	}

	filter := db.EventListFilter{
		Category: normalizeFilterValue(c.QueryParam("category")),
		Bydel:    strings.TrimSpace(c.QueryParam("bydel")),
		Source:   normalizeFilterValue(c.QueryParam("source")),
		From:     from,
		To:       to,
		Page:     page,
		PageSize: pageSize,
	}

	events, err := s.pool.ListEvents(c.Request().Context(), filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("list events failed")
		return internalError(c, "Failed to load events")
	}

	items := make([]eventItem, 0, len(events))
	for i := range events {
		items = append(items, toEventItem(&events[i]))
	}

	return success(c, map[string]any{
		"items": items,
		"pagination": map[string]any{
			"page":      page,
			"page_size": pageSize,
		},
		"filters": map[string]any{
			"category": filter.Category,
			"bydel":    filter.Bydel,
			"source":   filter.Source,
			"from":     filter.From,
			"to":       filter.To,
		},
	})
}

func (s *Server) handleEventDetail(c echo.Context) error {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return failValidation(c, map[string]string{"slug": "is required"})
	}

	event, err := s.pool.GetEventBySlug(c.Request().Context(), slug)
	if err != nil {
		if db.IsNoRows(err) {
			return failNotFound(c, "Event not found")
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("get event failed")
		return internalError(c, "Failed to load event")
	}

	return success(c, toEventItem(event))
}

func (s *Server) handleScraperHealth(c echo.Context) error {
	since := globaltime.UTC().AddDate(0, 0, -s.opts.RunHistoryDays)
	runs, err := s.pool.FetchRunHistory(c.Request().Context(), since)
	if err != nil {
		s.logger.Error().Err(err).Msg("fetch run history failed")
		return internalError(c, "Failed to load scraper health")
	}

	reports := scraperhealth.Classify(toRunRecords(runs))
	return success(c, map[string]any{
		"items":       reports,
		"window_days": s.opts.RunHistoryDays,
	})
}

func (s *Server) handleStats(c echo.Context) error {
	now := globaltime.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	stats, err := s.pool.QueryTableStats(c.Request().Context(), dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error().Err(err).Msg("query stats failed")
		return internalError(c, "Failed to load stats")
	}
	return success(c, stats)
}

func toEventItem(ev *db.Event) eventItem {
	return eventItem{
		EventUUID:       ev.EventUUID,
		Slug:            ev.Slug,
		Title:           ev.Title,
		VenueName:       ev.VenueName,
		Bydel:           ev.Bydel,
		Category:        ev.Category,
		StartsAt:        ev.StartsAt,
		StartOffset:     normalize.BergenOffset(ev.StartsAt),
		EndsAt:          ev.EndsAt,
		Price:           ev.Price,
		TicketURL:       ev.TicketURL,
		SourceURL:       ev.SourceURL,
		ImageURL:        ev.ImageURL,
		Description:     ev.Description,
		DescriptionLang: ev.DescriptionLang,
		Source:          ev.Source,
		Status:          ev.Status,
	}
}

func toRunRecords(runs []db.ScraperRun) []scraperhealth.RunRecord {
	records := make([]scraperhealth.RunRecord, 0, len(runs))
	for _, run := range runs {
		record := scraperhealth.RunRecord{
			ScraperName: run.ScraperName,
			Found:       run.Found,
			Inserted:    run.Inserted,
			Errored:     run.Errored,
			Skipped:     run.Skipped,
			RunAt:       run.RunAt,
		}
		if run.ErrorMessage != nil {
			record.ErrorMessage = *run.ErrorMessage
		}
		records = append(records, record)
	}
	return records
}

func normalizeFilterValue(raw string) string {
	return strings.TrimSpace(strings.ToLower(raw))
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}

func parseTimeFilter(raw string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	if ts, err := time.Parse(time.RFC3339, trimmed); err == nil {
		utc := ts.UTC()
		return &utc, nil
	}

	if day, err := time.Parse("2006-01-02", trimmed); err == nil {
		utc := day.UTC()
		if endOfDay {
			utc = utc.Add((24 * time.Hour) - time.Nanosecond)
		}
		return &utc, nil
	}

	return nil, fmt.Errorf("invalid time format")
}
