package gradestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	devenv "gradewatch/dev/env"
	"gradewatch/lib/grades"
	"gradewatch/lib/telemetry"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("lib/gradestore")

// FileStore keeps every snapshot in its own json file, a flat list of grade
// entries named <identity>_<semester>.json.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (FileStore, error) {
	dir, err := devenv.ResolvePath(dir)
	if err != nil {
		return FileStore{}, err
	}
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return FileStore{}, err
	}
	return FileStore{dir: dir}, nil
}

var filenameReplacer = strings.NewReplacer("/", "_", "\\", "_", "..", "_")

func (s FileStore) Path(target Target) string {
	name := fmt.Sprintf("%s_%s.json", target.Identity, target.SemesterID)
	return filepath.Join(s.dir, filenameReplacer.Replace(name))
}

func (s FileStore) Load(ctx context.Context, target Target) (Snapshot, error) {
	_, span := tracer.Start(ctx, "FileStore.Load")
	defer span.End()

	path := s.Path(target)
	span.SetAttributes(attribute.String("gradestore.path", path))

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{Target: target}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stat snapshot")
		return Snapshot{}, err
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read snapshot")
		return Snapshot{}, err
	}

	var list []grades.Grade
	err = json.Unmarshal(contents, &list)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal snapshot")
		return Snapshot{}, fmt.Errorf("%w: %s: %w", ErrCorruptSnapshot, path, err)
	}

	return Snapshot{
		Target:  target,
		TakenAt: info.ModTime(),
		Grades:  list,
	}, nil
}

// Save replaces the stored snapshot. The file is written to a temporary
// name and renamed, so readers never observe a partial snapshot.
func (s FileStore) Save(ctx context.Context, snapshot Snapshot) error {
	_, span := tracer.Start(ctx, "FileStore.Save")
	defer span.End()

	list := snapshot.Grades
	if list == nil {
		list = []grades.Grade{}
	}
	contents, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}

	path := s.Path(snapshot.Target)
	err = writeAtomic(path, contents)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write snapshot")
		return err
	}
	if !snapshot.TakenAt.IsZero() {
		err = stampTakenAt(path, snapshot.TakenAt)
		if err != nil {
			// Load falls back to the write time
			slog.DebugContext(ctx, "failed to stamp snapshot time", "path", path, "err", err)
		}
	}
	return nil
}

// stampTakenAt sets the file's mtime, which is where Load reads TakenAt from.
func stampTakenAt(path string, takenAt time.Time) error {
	return os.Chtimes(path, takenAt, takenAt)
}

func writeAtomic(path string, contents []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(contents)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Sync()
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
