package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/rugby-predictor/internal/blob"
	"github.com/yourusername/rugby-predictor/internal/logger"
	"github.com/yourusername/rugby-predictor/internal/metrics"
	"github.com/yourusername/rugby-predictor/internal/models"
)

// DefaultPatterns are the bundle names tried for a league, in priority order.
// Each pattern receives the league id once.
var DefaultPatterns = []string{
	"league_%d_model.json",
	"league_%d_model.bundle.json",
	"league_%d.json",
	"%d/model.json",
}

// Location is where a bundle was found. Path is always a local file.
type Location struct {
	Source string
	Path   string
	Origin string
}

// Resolver is one storage strategy consulted by the registry
type Resolver interface {
	Name() string
	// Candidates lists every location the resolver would try for a league
	Candidates(leagueID int64) []string
	TryResolve(ctx context.Context, leagueID int64) (Location, bool, error)
}

// LocalResolver looks for bundles under a directory
type LocalResolver struct {
	Dir      string
	Patterns []string
}

// NewLocalResolver creates a resolver over dir using DefaultPatterns
func NewLocalResolver(dir string) *LocalResolver {
	return &LocalResolver{Dir: dir, Patterns: DefaultPatterns}
}

func (r *LocalResolver) Name() string { return "local" }

func (r *LocalResolver) Candidates(leagueID int64) []string {
	out := make([]string, 0, len(r.Patterns))
	for _, p := range r.Patterns {
		out = append(out, filepath.Join(r.Dir, filepath.FromSlash(fmt.Sprintf(p, leagueID))))
	}
	return out
}

func (r *LocalResolver) TryResolve(ctx context.Context, leagueID int64) (Location, bool, error) {
	for _, path := range r.Candidates(leagueID) {
		if err := ctx.Err(); err != nil {
			return Location{}, false, err
		}
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return Location{Source: r.Name(), Path: path, Origin: path}, true, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Location{}, false, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return Location{}, false, nil
}

// RemoteResolver looks for bundles in a blob container and downloads the
// first hit into a scratch directory. Scratch files are reused for the
// lifetime of the process.
type RemoteResolver struct {
	Client     *blob.Client
	ScratchDir string
	Patterns   []string
	Timeout    time.Duration
	Logger     *logger.ModelLogger
}

func (r *RemoteResolver) Name() string { return "remote" }

func (r *RemoteResolver) Candidates(leagueID int64) []string {
	out := make([]string, 0, len(r.patterns()))
	for _, p := range r.patterns() {
		out = append(out, r.Client.URL(fmt.Sprintf(p, leagueID)))
	}
	return out
}

func (r *RemoteResolver) TryResolve(ctx context.Context, leagueID int64) (Location, bool, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	for _, p := range r.patterns() {
		name := fmt.Sprintf(p, leagueID)
		dest := filepath.Join(r.ScratchDir, strings.ReplaceAll(r.Client.Container()+"/"+name, "/", "_"))
		if info, err := os.Stat(dest); err == nil && !info.IsDir() {
			return Location{Source: r.Name(), Path: dest, Origin: r.Client.URL(name)}, true, nil
		}

		ok, err := r.Client.Exists(ctx, name)
		if err != nil {
			return Location{}, false, err
		}
		if !ok {
			continue
		}

		start := time.Now()
		n, err := r.Client.Download(ctx, name, dest)
		if err != nil {
			metrics.RecordModelDownload("failure")
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return Location{}, false, err
		}
		metrics.RecordModelDownload("success")
		if r.Logger != nil {
			r.Logger.LogDownload(leagueID, r.Client.URL(name), n, float64(time.Since(start).Milliseconds()))
		}
		return Location{Source: r.Name(), Path: dest, Origin: r.Client.URL(name)}, true, nil
	}
	return Location{}, false, nil
}

func (r *RemoteResolver) patterns() []string {
	if len(r.Patterns) == 0 {
		return DefaultPatterns
	}
	return r.Patterns
}
