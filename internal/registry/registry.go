// Package registry resolves, loads and caches trained league artifacts.
package registry

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/artifact"
	"github.com/yourusername/rugby-predictor/internal/logger"
	"github.com/yourusername/rugby-predictor/internal/metrics"
	"github.com/yourusername/rugby-predictor/internal/models"
	"golang.org/x/sync/singleflight"
)

// Status tags the outcome of a resolution
type Status int

const (
	Resolved Status = iota
	NotFound
	DeserializationFailed
	Failed
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case NotFound:
		return "not_found"
	case DeserializationFailed:
		return "deserialization_failed"
	default:
		return "failed"
	}
}

// Resolution is the tagged result of Resolve
type Resolution struct {
	Status   Status
	LeagueID int64
	Artifact *artifact.Artifact
	Location Location
	Tried    []string
	Cached   bool
	Err      error
}

// Registry maps league ids to loaded artifacts. Each league is loaded at most
// once and a loaded entry is never modified; failures are not cached so a
// corrected bundle is picked up on the next call. Put is the only way to
// replace an entry, used when a league is retrained in-process. It installs a
// fresh entry, so artifacts handed out earlier stay valid and unchanged.
type Registry struct {
	resolvers []Resolver
	log       *logger.ModelLogger

	mu    sync.RWMutex
	cache map[int64]*cacheEntry
	group singleflight.Group
}

type cacheEntry struct {
	artifact *artifact.Artifact
	location Location
}

// New creates a registry consulting resolvers in order
func New(log *logrus.Logger, resolvers ...Resolver) *Registry {
	return &Registry{
		resolvers: resolvers,
		log:       logger.NewModelLogger(log),
		cache:     make(map[int64]*cacheEntry),
	}
}

// Resolve returns the artifact for a league, loading it on first use
func (r *Registry) Resolve(ctx context.Context, leagueID int64) Resolution {
	if entry, ok := r.cached(leagueID); ok {
		metrics.RecordModelResolution("cache", "hit")
		return Resolution{Status: Resolved, LeagueID: leagueID, Artifact: entry.artifact, Location: entry.location, Cached: true}
	}

	ch := r.group.DoChan(strconv.FormatInt(leagueID, 10), func() (interface{}, error) {
		return r.load(ctx, leagueID), nil
	})

	select {
	case <-ctx.Done():
		return Resolution{Status: Failed, LeagueID: leagueID, Err: ctx.Err()}
	case res := <-ch:
		return res.Val.(Resolution)
	}
}

// Get resolves a league and converts failures into errors
func (r *Registry) Get(ctx context.Context, leagueID int64) (*artifact.Artifact, error) {
	res := r.Resolve(ctx, leagueID)
	if res.Status != Resolved {
		return nil, res.Err
	}
	return res.Artifact, nil
}

// Put installs a retrained artifact as the league's new entry
func (r *Registry) Put(a *artifact.Artifact, loc Location) {
	r.mu.Lock()
	r.cache[a.LeagueID] = &cacheEntry{artifact: a, location: loc}
	n := len(r.cache)
	r.mu.Unlock()
	metrics.UpdateCachedArtifacts(n)
}

// storeOnce caches a loaded artifact unless the league already has an entry,
// in which case the existing entry wins and is returned
func (r *Registry) storeOnce(leagueID int64, a *artifact.Artifact, loc Location) *cacheEntry {
	r.mu.Lock()
	entry, ok := r.cache[leagueID]
	if !ok {
		entry = &cacheEntry{artifact: a, location: loc}
		r.cache[leagueID] = entry
	}
	n := len(r.cache)
	r.mu.Unlock()
	metrics.UpdateCachedArtifacts(n)
	return entry
}

// Len returns the number of cached artifacts
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

func (r *Registry) cached(leagueID int64) (*cacheEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[leagueID]
	return entry, ok
}

func (r *Registry) load(ctx context.Context, leagueID int64) Resolution {
	if entry, ok := r.cached(leagueID); ok {
		return Resolution{Status: Resolved, LeagueID: leagueID, Artifact: entry.artifact, Location: entry.location, Cached: true}
	}

	start := time.Now()
	var tried []string
	for _, resolver := range r.resolvers {
		tried = append(tried, resolver.Candidates(leagueID)...)

		loc, ok, err := resolver.TryResolve(ctx, leagueID)
		if err != nil {
			if ctx.Err() != nil {
				return Resolution{Status: Failed, LeagueID: leagueID, Tried: tried, Err: ctx.Err()}
			}
			metrics.RecordModelResolution(resolver.Name(), "error")
			r.log.WithFields(logrus.Fields{
				"league_id": leagueID,
				"resolver":  resolver.Name(),
			}).WithError(err).Warn("Resolver failed, trying next")
			continue
		}
		if !ok {
			continue
		}

		a, err := artifact.Load(loc.Path)
		if err != nil {
			metrics.RecordModelResolution(resolver.Name(), "error")
			status := Failed
			if models.Kind(err) == "deserialization" {
				status = DeserializationFailed
			}
			return Resolution{Status: status, LeagueID: leagueID, Location: loc, Tried: tried, Err: err}
		}

		entry := r.storeOnce(leagueID, a, loc)
		metrics.RecordModelResolution(resolver.Name(), "loaded")
		metrics.RecordModelLoad(time.Since(start).Seconds())
		r.log.LogResolution(leagueID, loc.Source, loc.Origin, false)
		return Resolution{Status: Resolved, LeagueID: leagueID, Artifact: entry.artifact, Location: entry.location, Tried: tried}
	}

	metrics.RecordModelResolution("all", "not_found")
	r.log.LogResolutionMiss(leagueID, tried)
	return Resolution{
		Status:   NotFound,
		LeagueID: leagueID,
		Tried:    tried,
		Err:      &models.NotFoundError{Kind: "model artifact", Name: fmt.Sprintf("league %d", leagueID), Tried: tried},
	}
}
