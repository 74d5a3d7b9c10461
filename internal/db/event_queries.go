package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjord.fyi/byplakat/internal/globaltime"
)

// DedupCandidate is the read model the dedup pass operates on: just the
// fields needed for grouping, matching and scoring.
type DedupCandidate struct {
	EventID     int64
	Title       string
	StartsAt    time.Time
	Source      string
	ImageURL    *string
	TicketURL   *string
	Description string
}

// EventListFilter narrows the public event listing.
type EventListFilter struct {
	Category string
	Bydel    string
	Source   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// ExistsEventBySourceURL is the ingestion-time duplicate guard.
func (p *Pool) ExistsEventBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM byplakat.events WHERE source_url = $1)`

	var exists bool
	if err := p.QueryRow(ctx, q, sourceURL).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists by source_url: %w", err)
	}
	return exists, nil
}

// InsertEvent persists a new event. The insert is idempotent on source_url:
// a conflicting row is silently left untouched and false is returned.
func (p *Pool) InsertEvent(ctx context.Context, ev *Event) (bool, error) {
	if ev == nil {
		return false, fmt.Errorf("event is nil")
	}

	const q = `
INSERT INTO byplakat.events (
	slug,
	title,
	venue_name,
	bydel,
	category,
	starts_at,
	ends_at,
	price,
	ticket_url,
	source_url,
	image_url,
	description,
	description_lang,
	source,
	status,
	created_at,
	updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
ON CONFLICT (source_url) DO NOTHING
`

	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = globaltime.UTC()
	}

	tag, err := p.Exec(
		ctx,
		q,
		ev.Slug,
		ev.Title,
		ev.VenueName,
		ev.Bydel,
		ev.Category,
		ev.StartsAt,
		ev.EndsAt,
		ev.Price,
		ev.TicketURL,
		ev.SourceURL,
		ev.ImageURL,
		ev.Description,
		ev.DescriptionLang,
		ev.Source,
		ev.Status,
		createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert event source_url=%q: %w", ev.SourceURL, err)
	}
	return tag.RowsAffected() == 1, nil
}

// FetchEventsForDedup reads every stored event ascending by start time.
// The order matters: it fixes the anchor order of the greedy clustering and
// the tie-break order of score sorting.
func (p *Pool) FetchEventsForDedup(ctx context.Context) ([]DedupCandidate, error) {
	const q = `
SELECT
	e.event_id,
	e.title,
	e.starts_at,
	e.source,
	e.image_url,
	e.ticket_url,
	e.description
FROM byplakat.events e
ORDER BY e.starts_at ASC, e.event_id ASC
`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch events for dedup: %w", err)
	}
	defer rows.Close()

	candidates := make([]DedupCandidate, 0, 256)
	for rows.Next() {
		var c DedupCandidate
		if err := rows.Scan(
			&c.EventID,
			&c.Title,
			&c.StartsAt,
			&c.Source,
			&c.ImageURL,
			&c.TicketURL,
			&c.Description,
		); err != nil {
			return nil, fmt.Errorf("scan dedup candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dedup candidates: %w", err)
	}
	return candidates, nil
}

// DeleteEventsByIDs hard-deletes the given events and returns the number of
// rows removed. Batching is the caller's concern.
func (p *Pool) DeleteEventsByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := p.Exec(ctx, "DELETE FROM byplakat.events WHERE event_id IN ?", ids)
	if err != nil {
		return 0, fmt.Errorf("delete events by ids: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteEventBySourceURL removes a single event, used by link-health tooling
// when a source page has gone dead.
func (p *Pool) DeleteEventBySourceURL(ctx context.Context, sourceURL string) (int64, error) {
	tag, err := p.Exec(ctx, "DELETE FROM byplakat.events WHERE source_url = $1", sourceURL)
	if err != nil {
		return 0, fmt.Errorf("delete event by source_url: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListEvents returns a page of events for the public API, soonest first.
func (p *Pool) ListEvents(ctx context.Context, filter EventListFilter) ([]Event, error) {
	var (
		conditions []string
		args       []any
	)

	appendCondition := func(column, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		args = append(args, strings.TrimSpace(value))
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	appendCondition("e.category", filter.Category)
	appendCondition("e.bydel", filter.Bydel)
	appendCondition("e.source", filter.Source)

	if filter.From != nil {
		args = append(args, filter.From.UTC())
		conditions = append(conditions, fmt.Sprintf("e.starts_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.UTC())
		conditions = append(conditions, fmt.Sprintf("e.starts_at < $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	args = append(args, pageSize, (page-1)*pageSize)

	q := fmt.Sprintf(`
SELECT
	e.event_id,
	e.event_uuid,
	e.slug,
	e.title,
	e.venue_name,
	e.bydel,
	e.category,
	e.starts_at,
	e.ends_at,
	e.price,
	e.ticket_url,
	e.source_url,
	e.image_url,
	e.description,
	e.description_lang,
	e.source,
	e.status,
	e.created_at,
	e.updated_at
FROM byplakat.events e
%s
ORDER BY e.starts_at ASC, e.event_id ASC
LIMIT $%d OFFSET $%d
`, where, len(args)-1, len(args))

	rows, err := p.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, pageSize)
	for rows.Next() {
		var ev Event
		if err := scanEvent(rows, &ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// GetEventBySlug returns the soonest event with the given slug, or ErrNoRows.
func (p *Pool) GetEventBySlug(ctx context.Context, slug string) (*Event, error) {
	const q = `
SELECT
	e.event_id,
	e.event_uuid,
	e.slug,
	e.title,
	e.venue_name,
	e.bydel,
	e.category,
	e.starts_at,
	e.ends_at,
	e.price,
	e.ticket_url,
	e.source_url,
	e.image_url,
	e.description,
	e.description_lang,
	e.source,
	e.status,
	e.created_at,
	e.updated_at
FROM byplakat.events e
WHERE e.slug = $1
ORDER BY e.starts_at ASC
LIMIT 1
`

	rows, err := p.Query(ctx, q, slug)
	if err != nil {
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get event by slug: %w", err)
		}
		return nil, ErrNoRows
	}

	var ev Event
	if err := scanEvent(rows, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func scanEvent(rows *Rows, ev *Event) error {
	if err := rows.Scan(
		&ev.EventID,
		&ev.EventUUID,
		&ev.Slug,
		&ev.Title,
		&ev.VenueName,
		&ev.Bydel,
		&ev.Category,
		&ev.StartsAt,
		&ev.EndsAt,
		&ev.Price,
		&ev.TicketURL,
		&ev.SourceURL,
		&ev.ImageURL,
		&ev.Description,
		&ev.DescriptionLang,
		&ev.Source,
		&ev.Status,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	); err != nil {
		return fmt.Errorf("scan event: %w", err)
	}
	return nil
}
