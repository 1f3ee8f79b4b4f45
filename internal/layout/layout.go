// Package layout derives source and archive paths from the RC+S naming
// conventions. Everything except SourceLocations is pure string work.
package layout

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"rcsarchive/internal/config"
	"rcsarchive/internal/logging"
)

// Kind is one of the two complementary recording pipelines.
type Kind int

const (
	KindA Kind = iota
	KindB
)

func (k Kind) String() string {
	if k == KindA {
		return "A"
	}
	return "B"
}

// Hemispheres lists the hemisphere markers in the order candidates are built.
var Hemispheres = []string{"L", "R"}

// Source is one subject × kind location in the synced tree.
type Source struct {
	Subject string
	Kind    Kind
	Path    string
}

// StatFS is the existence check SourceLocations needs.
type StatFS interface {
	Stat(name string) (os.FileInfo, error)
}

// Resolver holds the naming conventions for one configuration.
type Resolver struct {
	dataRoot       string
	archiveRoot    string
	summitDir      string
	unsyncedSuffix string
	kindNames      [2]string
	first, last    int
	overrides      map[int]string
	logger         *slog.Logger
}

// New builds a resolver from cfg. The override table is copied so later
// changes to cfg do not leak in.
func New(cfg *config.Config, logger *slog.Logger) *Resolver {
	return &Resolver{
		dataRoot:       cfg.Paths.DataRoot,
		archiveRoot:    cfg.Paths.ArchiveRoot,
		summitDir:      cfg.Layout.SummitDir,
		unsyncedSuffix: cfg.Layout.UnsyncedSuffix,
		kindNames:      [2]string{cfg.Layout.KindA, cfg.Layout.KindB},
		first:          cfg.Archive.FirstPatient,
		last:           cfg.Archive.LastPatient,
		overrides:      cfg.PatientDirOverrides(),
		logger:         logging.NewComponentLogger(logger, "layout"),
	}
}

// KindName returns the directory name used for kind.
func (r *Resolver) KindName(kind Kind) string {
	return r.kindNames[kind]
}

// PatientDir returns the on-disk patient directory for index.
func (r *Resolver) PatientDir(index int) string {
	if name, ok := r.overrides[index]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("RCS%02d", index)
}

// SubjectID returns the identity token for index and hemisphere. The patient
// directory override never applies here.
func (r *Resolver) SubjectID(index int, hemisphere string) string {
	return fmt.Sprintf("RCS%02d%s", index, hemisphere)
}

// Candidates lists every subject × kind path for index whether or not it
// exists.
func (r *Resolver) Candidates(index int) []Source {
	patientDir := r.PatientDir(index)
	out := make([]Source, 0, len(Hemispheres)*len(r.kindNames))
	for _, hemi := range Hemispheres {
		subject := r.SubjectID(index, hemi)
		for _, kind := range []Kind{KindA, KindB} {
			out = append(out, Source{
				Subject: subject,
				Kind:    kind,
				Path:    filepath.Join(r.dataRoot, patientDir, r.summitDir, r.KindName(kind), subject),
			})
		}
	}
	return out
}

// SourceLocations checks every candidate in the patient range and keeps the
// ones that exist as directories. Subjects with no location are omitted.
func (r *Resolver) SourceLocations(fsys StatFS) map[string][]Source {
	out := make(map[string][]Source)
	for index := r.first; index <= r.last; index++ {
		for _, candidate := range r.Candidates(index) {
			info, err := fsys.Stat(candidate.Path)
			if err != nil || !info.IsDir() {
				continue
			}
			out[candidate.Subject] = append(out[candidate.Subject], candidate)
		}
	}
	return out
}

// KindOf inspects sourcePath for a kind marker. Kind A is checked first. When
// neither marker is present it returns KindB and false.
func (r *Resolver) KindOf(sourcePath string) (Kind, bool) {
	switch {
	case strings.Contains(sourcePath, r.kindNames[KindA]):
		return KindA, true
	case strings.Contains(sourcePath, r.kindNames[KindB]):
		return KindB, true
	default:
		return KindB, false
	}
}

// Destination returns the archive directory for one session. It never touches
// the filesystem.
func (r *Resolver) Destination(subject, sessionName, sourcePath string) string {
	kind, ok := r.KindOf(sourcePath)
	if !ok {
		logging.WarnWithContext(r.logger, "could not determine data source kind from path, defaulting",
			"source_kind_ambiguous",
			logging.String(logging.FieldSourcePath, sourcePath),
			logging.String("default_kind", r.KindName(kind)),
			logging.String(logging.FieldErrorHint, fmt.Sprintf("source paths should contain %q or %q", r.kindNames[KindA], r.kindNames[KindB])),
			logging.String(logging.FieldImpact, "session is archived under the default kind directory"),
		)
	}
	return filepath.Join(
		r.archiveRoot,
		PatientCode(subject)+r.unsyncedSuffix,
		r.summitDir,
		r.KindName(kind),
		subject,
		sessionName,
	)
}

// PatientCode strips exactly one trailing hemisphere marker from subject.
func PatientCode(subject string) string {
	if strings.HasSuffix(subject, "L") || strings.HasSuffix(subject, "R") {
		return subject[:len(subject)-1]
	}
	return subject
}
