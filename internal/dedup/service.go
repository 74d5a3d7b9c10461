// Package dedup collapses stored events that different sources reported for
// the same real-world event into a single canonical record. Matching is
// heuristic: same calendar day plus fuzzy title agreement; the scoring model
// picks which record in a duplicate cluster survives.
package dedup

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"fjord.fyi/byplakat/internal/db"
	"fjord.fyi/byplakat/internal/normalize"
	"fjord.fyi/byplakat/internal/scoring"
)

const DefaultDeleteBatchSize = 100

type Service struct {
	pool            *db.Pool
	logger          zerolog.Logger
	deleteBatchSize int
}

// Result summarizes one dedup pass.
type Result struct {
	Scanned  int
	Days     int
	Clusters int
	Deleted  int64
}

func NewService(pool *db.Pool, logger zerolog.Logger, deleteBatchSize int) *Service {
	if deleteBatchSize <= 0 {
		deleteBatchSize = DefaultDeleteBatchSize
	}
	return &Service{
		pool:            pool,
		logger:          logger,
		deleteBatchSize: deleteBatchSize,
	}
}

// Run executes one full dedup pass over the entire event table. It must run
// after all scrapers in a cycle have finished inserting and must not overlap
// with another pass; the calling driver enforces that ordering, not this
// function.
func (s *Service) Run(ctx context.Context) (Result, error) {
	if s == nil || s.pool == nil {
		return Result{}, fmt.Errorf("dedup service is not initialized")
	}

	events, err := s.pool.FetchEventsForDedup(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{Scanned: len(events)}

	var deleteIDs []int64
	for _, day := range groupByDay(events) {
		if len(day.events) < 2 {
			continue
		}
		result.Days++

		clusters := clusterDay(day.events)
		for _, cluster := range clusters {
			if len(cluster) < 2 {
				continue
			}
			result.Clusters++

			keeper, losers := pickSurvivor(cluster)
			s.logger.Debug().
				Str("day", day.key).
				Int64("keeper_id", keeper.EventID).
				Str("keeper_source", keeper.Source).
				Int("duplicates", len(losers)).
				Msg("duplicate cluster resolved")
			deleteIDs = append(deleteIDs, losers...)
		}
	}

	for start := 0; start < len(deleteIDs); start += s.deleteBatchSize {
		end := min(start+s.deleteBatchSize, len(deleteIDs))
		deleted, err := s.pool.DeleteEventsByIDs(ctx, deleteIDs[start:end])
		if err != nil {
			// A failed batch must not prevent the remaining batches.
			s.logger.Error().Err(err).
				Int("batch_start", start).
				Int("batch_size", end-start).
				Msg("delete batch failed")
			continue
		}
		result.Deleted += deleted
	}

	s.logger.Info().
		Int("scanned", result.Scanned).
		Int("days_with_candidates", result.Days).
		Int("clusters", result.Clusters).
		Int64("deleted", result.Deleted).
		Msg("dedup pass completed")

	return result, nil
}

type dayGroup struct {
	key    string
	events []db.DedupCandidate
}

// groupByDay buckets events by UTC calendar day, preserving the fetch order
// both across and within days.
func groupByDay(events []db.DedupCandidate) []dayGroup {
	groups := make([]dayGroup, 0, 32)
	index := make(map[string]int, 32)
	for _, ev := range events {
		key := ev.StartsAt.UTC().Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, dayGroup{key: key})
		}
		groups[i].events = append(groups[i].events, ev)
	}
	return groups
}

// clusterDay runs the greedy single-pass clustering over one day's events.
// Each not-yet-assigned event becomes the anchor of a new cluster and every
// later unassigned event joins if its title matches the anchor's. Members are
// only ever compared against the anchor, never against each other, so the
// relation is not transitively closed within a pass.
func clusterDay(events []db.DedupCandidate) [][]db.DedupCandidate {
	fingerprints := make([]string, len(events))
	for i, ev := range events {
		fingerprints[i] = normalize.Title(ev.Title)
	}

	used := make([]bool, len(events))
	clusters := make([][]db.DedupCandidate, 0, len(events))
	for i := range events {
		if used[i] {
			continue
		}
		used[i] = true
		cluster := []db.DedupCandidate{events[i]}
		for j := i + 1; j < len(events); j++ {
			if used[j] {
				continue
			}
			if TitlesMatch(fingerprints[i], fingerprints[j]) {
				used[j] = true
				cluster = append(cluster, events[j])
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// pickSurvivor scores every cluster member and keeps the highest. The sort is
// stable, so equal scores fall back to the original fetch order.
func pickSurvivor(cluster []db.DedupCandidate) (db.DedupCandidate, []int64) {
	ranked := make([]db.DedupCandidate, len(cluster))
	copy(ranked, cluster)

	sort.SliceStable(ranked, func(i, j int) bool {
		return scoreCandidate(ranked[i]) > scoreCandidate(ranked[j])
	})

	losers := make([]int64, 0, len(ranked)-1)
	for _, ev := range ranked[1:] {
		losers = append(losers, ev.EventID)
	}
	return ranked[0], losers
}

func scoreCandidate(ev db.DedupCandidate) int {
	return scoring.Score(scoring.Input{
		Source:      ev.Source,
		ImageURL:    derefString(ev.ImageURL),
		TicketURL:   derefString(ev.TicketURL),
		Description: ev.Description,
	})
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
