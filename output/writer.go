//go:generate mockgen -package mocks -destination mocks/writer.go github.com/relloyd/makedw/output Writer
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/relloyd/makedw/aws/s3"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/logger"
	"github.com/rs/xid"
)

// Writer persists the artifacts of one table as a unit: all of them or none.
// Implementations are safe for concurrent use.
type Writer interface {
	WriteUnit(ctx context.Context, artifacts []Artifact) error
}

// LocalWriter writes to <Root>/<schema>/<Tables|Stored Procedures>/<name>.sql.
type LocalWriter struct {
	Root   string
	log    logger.Logger
	rename func(oldPath, newPath string) error
}

func NewLocalWriter(log logger.Logger, root string) *LocalWriter {
	return &LocalWriter{Root: root, log: log, rename: os.Rename}
}

// WriteUnit stages every artifact in a temporary file and only renames them into place
// once all of them have been written. Files that existed before are set aside and put
// back if any rename fails, so a unit is never left half replaced.
func (w *LocalWriter) WriteUnit(ctx context.Context, artifacts []Artifact) (err error) {
	suffix := ".tmp-" + xid.New().String()
	staged := make([]string, 0, len(artifacts))
	defer func() {
		if err != nil {
			for _, f := range staged {
				_ = os.Remove(f + suffix)
			}
		}
	}()
	for _, a := range artifacts {
		if err = ctx.Err(); err != nil {
			return err
		}
		fileName := filepath.Join(w.Root, filepath.FromSlash(a.Path()))
		if err = os.MkdirAll(filepath.Dir(fileName), 0755); err != nil {
			return errors.Wrapf(err, "unable to create directory for %v", a.Path())
		}
		if err = os.WriteFile(fileName+suffix, []byte(TidySQL(a.SQL)), 0644); err != nil {
			return errors.Wrapf(err, "unable to write %v", a.Path())
		}
		staged = append(staged, fileName)
	}
	return w.commit(staged, suffix)
}

// commit renames each staged file into place, keeping a backup of any file it replaces.
func (w *LocalWriter) commit(staged []string, suffix string) (err error) {
	backup := suffix + ".bak"
	var backedUp, placed []string
	defer func() {
		if err != nil {
			for _, f := range placed {
				_ = os.Remove(f)
			}
			for _, f := range backedUp {
				if e := w.rename(f+backup, f); e != nil {
					w.log.Error("unable to restore ", f, ": ", e)
				}
			}
			return
		}
		for _, f := range backedUp {
			_ = os.Remove(f + backup)
		}
	}()
	for _, f := range staged {
		if _, e := os.Stat(f); e != nil {
			continue
		}
		if err = w.rename(f, f+backup); err != nil {
			return errors.Wrapf(err, "unable to set aside %v", f)
		}
		backedUp = append(backedUp, f)
	}
	for _, f := range staged {
		if err = w.rename(f+suffix, f); err != nil {
			return errors.Wrapf(err, "unable to move %v into place", f)
		}
		placed = append(placed, f)
		w.log.Debug("wrote ", f)
	}
	return nil
}

// StdoutWriter prints each artifact preceded by a comment naming its path.
type StdoutWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStdoutWriter(w io.Writer) *StdoutWriter {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutWriter{w: w}
}

// WriteUnit prints a unit in one go so units from concurrent tables never interleave.
func (s *StdoutWriter) WriteUnit(ctx context.Context, artifacts []Artifact) error {
	var b []byte
	for _, a := range artifacts {
		b = append(b, fmt.Sprintf("-- %v\n%v\n", a.Path(), TidySQL(a.SQL))...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(b)
	return err
}

// objectStore is the part of the S3 client used to publish scripts.
type objectStore interface {
	s3.Putter
	s3.Deleter
}

// S3Writer uploads artifacts beneath the client's prefix.
type S3Writer struct {
	store objectStore
	log   logger.Logger
}

func NewS3Writer(log logger.Logger, store objectStore) *S3Writer {
	return &S3Writer{store: store, log: log}
}

// WriteUnit deletes any objects it already uploaded for the unit when a later upload fails.
func (s *S3Writer) WriteUnit(ctx context.Context, artifacts []Artifact) error {
	done := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		key := a.Path()
		if err := s.store.Put(ctx, key, []byte(TidySQL(a.SQL))); err != nil {
			for _, k := range done {
				if derr := s.store.Delete(ctx, k); derr != nil {
					s.log.Warn("unable to remove ", k, " after failed upload: ", derr)
				}
			}
			return errors.Wrapf(err, "unable to upload %v", key)
		}
		done = append(done, key)
	}
	return nil
}

// NewWriter picks a writer for dest: "-" is stdout, s3://bucket/prefix is S3 in region,
// anything else is a local directory.
func NewWriter(log logger.Logger, dest string, region string) (Writer, error) {
	switch {
	case dest == constants.OutputStdout:
		return NewStdoutWriter(os.Stdout), nil
	case s3.IsS3URL(dest):
		b, err := s3.ParseDSN(dest, region)
		if err != nil {
			return nil, err
		}
		return NewS3WriterForBucket(log, b)
	case dest == "":
		return nil, errors.New("output destination is empty")
	}
	return NewLocalWriter(log, dest), nil
}

func NewS3WriterForBucket(log logger.Logger, b s3.AwsS3Bucket) (*S3Writer, error) {
	c, err := s3.NewBasicClient(b.Name, b.Region, b.Prefix)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create S3 client")
	}
	return NewS3Writer(log, c), nil
}

// MemoryWriter keeps every unit in memory, in the order they complete.
type MemoryWriter struct {
	mu    sync.Mutex
	units [][]Artifact
}

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

func (m *MemoryWriter) WriteUnit(ctx context.Context, artifacts []Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unit := make([]Artifact, len(artifacts))
	for i, a := range artifacts {
		a.SQL = TidySQL(a.SQL)
		unit[i] = a
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units = append(m.units, unit)
	return nil
}

// Units returns a copy of the units written so far.
func (m *MemoryWriter) Units() [][]Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]Artifact(nil), m.units...)
}
