package audit

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// RunFunc executes a single job. Run satisfies it; callers may wrap it with a cache.
type RunFunc func(ctx context.Context, job Job) (*Report, error)

// RunBatch runs jobs with at most limit passes in flight and returns the reports in job order.
// Each pass is still a single sequential read of its file. The first failure cancels the rest.
func RunBatch(ctx context.Context, jobs []Job, limit int, run RunFunc) ([]*Report, error) {
	if run == nil {
		run = Run
	}

	reports := make([]*Report, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			report, err := run(ctx, job)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// ExpandInputs resolves glob patterns (including **) into file paths.
// Patterns without glob syntax are returned as given so that a missing file
// surfaces as an open error later.
func ExpandInputs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			if !seen[pattern] {
				seen[pattern] = true
				paths = append(paths, pattern)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern: %s", pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}

	return paths, nil
}

// Jobs builds one job per path for the given field and classifier
func Jobs(paths []string, field, classifier string) []Job {
	jobs := make([]Job, len(paths))
	for i, p := range paths {
		jobs[i] = Job{Path: p, Field: field, Classifier: classifier}
	}
	return jobs
}
