// Package ingest is the single write path for events. Scraper payloads
// enter here after schema validation, get normalized, and are inserted
// idempotently keyed on source_url. Every batch leaves a row in the run
// ledger so the health classifier has something to read.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fjord.fyi/byplakat/internal/db"
	"fjord.fyi/byplakat/internal/globaltime"
	"fjord.fyi/byplakat/internal/langdetect"
	"fjord.fyi/byplakat/internal/normalize"
	"fjord.fyi/byplakat/internal/taxonomy"
	payloadschema "fjord.fyi/byplakat/schema"
)

const maxRunErrorLength = 500

// store is the slice of the db gateway the ingest path writes through.
type store interface {
	ExistsEventBySourceURL(ctx context.Context, sourceURL string) (bool, error)
	InsertEvent(ctx context.Context, ev *db.Event) (bool, error)
	InsertScraperRun(ctx context.Context, run *db.ScraperRun) error
}

type Service struct {
	store  store
	logger zerolog.Logger
}

// BatchResult summarizes one scraper batch after ingestion.
type BatchResult struct {
	Scraper  string `json:"scraper"`
	Found    int    `json:"found"`
	Inserted int    `json:"inserted"`
	Existing int    `json:"existing"`
	Failed   int    `json:"failed"`
}

func NewService(pool *db.Pool, logger zerolog.Logger) *Service {
	return &Service{
		store:  pool,
		logger: logger,
	}
}

// IngestBatch persists one scraper batch. Payloads that fail to build or
// hit a backend error are counted and skipped rather than aborting the
// batch; the ledger row is written regardless of how many payloads made
// it in.
func (s *Service) IngestBatch(ctx context.Context, scraperName string, payloads []payloadschema.EventPayload) (BatchResult, error) {
	if s == nil || s.store == nil {
		return BatchResult{}, fmt.Errorf("ingest service is not initialized")
	}

	scraper := strings.TrimSpace(scraperName)
	if scraper == "" {
		return BatchResult{}, fmt.Errorf("scraper name is required")
	}

	result := BatchResult{
		Scraper: scraper,
		Found:   len(payloads),
	}

	for i := range payloads {
		event, err := buildEvent(&payloads[i])
		if err != nil {
			result.Failed++
			s.logger.Warn().
				Err(err).
				Str("scraper", scraper).
				Str("source_url", payloads[i].SourceURL).
				Msg("payload rejected")
			continue
		}

		exists, err := s.store.ExistsEventBySourceURL(ctx, event.SourceURL)
		if err != nil {
			result.Failed++
			s.logger.Error().
				Err(err).
				Str("scraper", scraper).
				Str("source_url", event.SourceURL).
				Msg("existence check failed")
			continue
		}
		if exists {
			result.Existing++
			continue
		}

		inserted, err := s.store.InsertEvent(ctx, event)
		if err != nil {
			result.Failed++
			s.logger.Error().
				Err(err).
				Str("scraper", scraper).
				Str("source_url", event.SourceURL).
				Msg("insert failed")
			continue
		}
		if inserted {
			result.Inserted++
		} else {
			// Lost the race against a concurrent batch for the same
			// source_url; the conflict guard treats it as existing.
			result.Existing++
		}
	}

	if err := s.recordRun(ctx, scraper, result); err != nil {
		return result, err
	}

	s.logger.Info().
		Str("scraper", scraper).
		Int("found", result.Found).
		Int("inserted", result.Inserted).
		Int("existing", result.Existing).
		Int("failed", result.Failed).
		Msg("batch ingested")

	return result, nil
}

// RecordSkippedRun writes a ledger row for a scraper that deliberately
// did not run, such as a festival source outside its season.
func (s *Service) RecordSkippedRun(ctx context.Context, scraperName string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("ingest service is not initialized")
	}

	run := db.ScraperRun{
		ScraperName: strings.TrimSpace(scraperName),
		Skipped:     true,
		RunAt:       globaltime.UTC(),
	}
	if run.ScraperName == "" {
		return fmt.Errorf("scraper name is required")
	}
	return s.store.InsertScraperRun(ctx, &run)
}

// RecordFailedRun writes a ledger row for a scraper that crashed before
// producing a batch.
func (s *Service) RecordFailedRun(ctx context.Context, scraperName, reason string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("ingest service is not initialized")
	}

	name := strings.TrimSpace(scraperName)
	if name == "" {
		return fmt.Errorf("scraper name is required")
	}

	message := truncateError(reason)
	run := db.ScraperRun{
		ScraperName:  name,
		Errored:      true,
		ErrorMessage: &message,
		RunAt:        globaltime.UTC(),
	}
	return s.store.InsertScraperRun(ctx, &run)
}

func (s *Service) recordRun(ctx context.Context, scraper string, result BatchResult) error {
	run := db.ScraperRun{
		ScraperName: scraper,
		Found:       result.Found,
		Inserted:    result.Inserted,
		RunAt:       globaltime.UTC(),
	}
	if result.Failed > 0 {
		message := truncateError(fmt.Sprintf("%d of %d payloads rejected", result.Failed, result.Found))
		run.ErrorMessage = &message
	}
	if err := s.store.InsertScraperRun(ctx, &run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// buildEvent turns a validated payload into a row ready for insertion.
// Start dates that no parser recognizes reject the payload; end dates
// are best effort and drop to nil when unparseable.
func buildEvent(p *payloadschema.EventPayload) (*db.Event, error) {
	if p == nil {
		return nil, fmt.Errorf("payload is nil")
	}

	title := strings.TrimSpace(p.Title)
	venue := strings.TrimSpace(p.VenueName)

	startsAt, ok := normalize.ParseFlexibleDate(p.DateStart)
	if !ok {
		return nil, fmt.Errorf("unparseable date_start %q", p.DateStart)
	}

	var endsAt *time.Time
	if p.DateEnd != nil {
		if parsed, ok := normalize.ParseFlexibleDate(*p.DateEnd); ok {
			endsAt = &parsed
		}
	}

	description := strings.TrimSpace(derefString(p.Description))
	lang := langdetect.DetectISO6391(description)
	if lang == "" {
		lang = "und"
	}

	event := db.Event{
		Slug:            eventSlug(title, startsAt),
		Title:           title,
		VenueName:       venue,
		Bydel:           taxonomy.MapBydel(venue),
		Category:        taxonomy.MapCategory(derefString(p.Category)),
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		Price:           trimNullable(p.Price),
		TicketURL:       trimNullable(p.TicketURL),
		SourceURL:       strings.TrimSpace(p.SourceURL),
		ImageURL:        trimNullable(p.ImageURL),
		Description:     description,
		DescriptionLang: lang,
		Source:          strings.TrimSpace(p.Source),
		Status:          "upcoming",
	}
	return &event, nil
}

// eventSlug pairs the title slug with the event date so that recurring
// events on different days get distinct slugs.
func eventSlug(title string, startsAt time.Time) string {
	base := normalize.Slug(title)
	if base == "" {
		base = "event"
	}
	return base + "-" + startsAt.UTC().Format("2006-01-02")
}

func truncateError(message string) string {
	runes := []rune(message)
	if len(runes) <= maxRunErrorLength {
		return message
	}
	return string(runes[:maxRunErrorLength])
}

func trimNullable(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
