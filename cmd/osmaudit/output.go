package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/NERVsystems/osmaudit/pkg/audit"
	"github.com/NERVsystems/osmaudit/pkg/clean"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func checkFormat(f string) error {
	if f != formatText && f != formatJSON {
		return fmt.Errorf("unknown output format %q (want %s or %s)", f, formatText, formatJSON)
	}
	return nil
}

// runAudits runs jobs and writes their reports to out in job order.
// A single text report is the bare accumulator.
func runAudits(ctx context.Context, out io.Writer, jobs []audit.Job, limit int, f string) error {
	if err := checkFormat(f); err != nil {
		return err
	}

	reports, err := audit.RunBatch(ctx, jobs, limit, audit.Run)
	if err != nil {
		return err
	}

	if f == formatJSON {
		enc := json.NewEncoder(out)
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	if len(reports) == 1 {
		_, err := fmt.Fprintln(out, reports[0].Buckets)
		return err
	}
	for _, r := range reports {
		if _, err := fmt.Fprintf(out, "%s %s %s: %s\n", r.Path, r.Field, r.Classifier, r.Buckets); err != nil {
			return err
		}
	}
	return nil
}

type cleanResult struct {
	Path    string         `json:"path"`
	Changes []clean.Change `json:"changes"`
}

// runClean runs the cleaning pass once per distinct input path
func runClean(ctx context.Context, out io.Writer, jobs []audit.Job, n *clean.Normalizer, f string) error {
	if err := checkFormat(f); err != nil {
		return err
	}

	seen := make(map[string]bool)
	enc := json.NewEncoder(out)
	for _, job := range jobs {
		if seen[job.Path] {
			continue
		}
		seen[job.Path] = true

		changes, err := clean.File(ctx, job.Path, clean.DefaultRules(n))
		if err != nil {
			return err
		}

		if f == formatJSON {
			if changes == nil {
				changes = []clean.Change{}
			}
			if err := enc.Encode(cleanResult{Path: job.Path, Changes: changes}); err != nil {
				return err
			}
			continue
		}
		for _, c := range changes {
			if _, err := fmt.Fprintf(out, "%s %s %d %s: %q -> %q\n", job.Path, c.ElementType, c.ElementID, c.Key, c.Original, c.Cleaned); err != nil {
				return err
			}
		}
	}
	return nil
}
