package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"rcsarchive/internal/config"
	"rcsarchive/internal/layout"
	"rcsarchive/internal/logging"
	"rcsarchive/internal/services"
	"rcsarchive/internal/session"
)

// Subject is one identity with the source locations present for it.
type Subject struct {
	ID      string
	Sources []layout.Source
}

// Discover returns every subject with at least one present source location,
// sorted by identity. extra is the raw [subjects] configuration table.
func Discover(fsys FS, resolver *layout.Resolver, extra map[string]any, logger *slog.Logger) []Subject {
	logger = logging.NewComponentLogger(logger, "discovery")

	found := resolver.SourceLocations(fsys)
	for _, id := range sortedKeys(extra) {
		paths, err := mappingPaths(extra[id])
		if err != nil {
			logging.WarnWithContext(logger, "malformed subject mapping, skipping subject",
				"subject_mapping_malformed",
				logging.String(logging.FieldSubject, id),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "map the subject to a path string or a list of path strings"),
				logging.String(logging.FieldImpact, "subject is not archived this run"),
			)
			continue
		}
		for _, p := range paths {
			expanded, err := config.ExpandPath(p)
			if err != nil {
				expanded = p
			}
			info, err := fsys.Stat(expanded)
			if err != nil || !info.IsDir() {
				logging.WarnWithContext(logger, "configured source path does not exist, skipping",
					"subject_source_missing",
					logging.String(logging.FieldSubject, id),
					logging.String(logging.FieldSourcePath, expanded),
					logging.String(logging.FieldErrorHint, "check the [subjects] entry or whether the sync client has created it yet"),
					logging.String(logging.FieldImpact, "this source is not archived this run"),
				)
				continue
			}
			kind, _ := resolver.KindOf(expanded)
			found[id] = appendUnique(found[id], layout.Source{Subject: id, Kind: kind, Path: expanded})
		}
	}

	subjects := make([]Subject, 0, len(found))
	for id, sources := range found {
		if len(sources) == 0 {
			continue
		}
		subjects = append(subjects, Subject{ID: id, Sources: sources})
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects
}

// ListSessions returns the names of session folders directly under source, in
// directory order.
func ListSessions(fsys FS, source string) ([]string, error) {
	entries, err := fsys.ReadDir(source)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "discovery", "list sessions", source, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !session.IsSessionName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// mappingPaths accepts a single path string or a list of path strings.
func mappingPaths(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("empty path")
		}
		return []string{v}, nil
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty path list")
		}
		return v, nil
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty path list")
		}
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, fmt.Errorf("list entry %d is %T, want a path string", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value is %T, want a path string or a list of path strings", value)
	}
}

func appendUnique(sources []layout.Source, src layout.Source) []layout.Source {
	for _, existing := range sources {
		if filepath.Clean(existing.Path) == filepath.Clean(src.Path) {
			return sources
		}
	}
	return append(sources, src)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
