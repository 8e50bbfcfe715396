package textscan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/nao1215/textscan/compression"
	"github.com/nao1215/textscan/domain/model"
)

// Input is one source added to a Builder. Exactly one of Path, Reader and FS
// is set. Readers need a Name; it drives compression detection and the
// file-name columns.
type Input struct {
	// Path is a file or a directory
	Path string
	// Reader is an in-memory source, read once
	Reader io.Reader
	// Name names Reader
	Name string
	// FS is expanded like a directory, starting at its root
	FS fs.FS
	// Passthrough values are prepended to every row of this input
	Passthrough []any
}

type sourceKind int

const (
	sourcePath sourceKind = iota
	sourceFS
	sourceReader
)

// source is one file to scan, resolved from an Input
type source struct {
	kind        sourceKind
	name        string
	fsys        fs.FS
	reader      io.Reader
	ref         model.FileRef
	passthrough []any
}

// open returns the decompressed stream of the source
func (s *source) open() (io.ReadCloser, error) {
	switch s.kind {
	case sourceFS:
		return compression.OpenFS(s.fsys, s.name)
	case sourceReader:
		return compression.Wrap(io.NopCloser(s.reader), s.name)
	default:
		return compression.Open(s.name)
	}
}

// rewindable makes the next open of a reader source replay what was read
// before. It returns a function to call once the peek is done.
func (s *source) rewindable() func() {
	if s.kind != sourceReader {
		return func() {}
	}
	original := s.reader
	var buf bytes.Buffer
	s.reader = io.TeeReader(original, &buf)
	return func() {
		s.reader = io.MultiReader(&buf, original)
	}
}

// matcher applies include and exclude masks to directory entries.
// A mask holding a slash is matched against the path relative to the
// directory, any other mask against the base name.
type matcher struct {
	include []mask
	exclude []mask
}

type mask struct {
	glob     glob.Glob
	fullPath bool
}

func newMatcher(include, exclude []string) (*matcher, error) {
	m := &matcher{}
	var err error
	if m.include, err = compileMasks(include); err != nil {
		return nil, err
	}
	if m.exclude, err = compileMasks(exclude); err != nil {
		return nil, err
	}
	return m, nil
}

func compileMasks(patterns []string) ([]mask, error) {
	masks := make([]mask, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: invalid file mask %q: %w", model.ErrInvalidConfig, p, err)
		}
		masks = append(masks, mask{glob: g, fullPath: strings.Contains(p, "/")})
	}
	return masks, nil
}

func (m mask) match(rel string) bool {
	if m.fullPath {
		return m.glob.Match(rel)
	}
	return m.glob.Match(path.Base(rel))
}

// match reports whether the slash-separated relative path rel is selected
func (m *matcher) match(rel string) bool {
	for _, x := range m.exclude {
		if x.match(rel) {
			return false
		}
	}
	if len(m.include) == 0 {
		return true
	}
	for _, in := range m.include {
		if in.match(rel) {
			return true
		}
	}
	return false
}

// collector resolves inputs into sources
type collector struct {
	matcher   *matcher
	recursive bool
	validator *validator
}

func (c *collector) collect(ctx context.Context, inputs []Input) ([]*source, error) {
	var sources []*source
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			found []*source
			err   error
		)
		switch {
		case in.Reader != nil, in.Name != "" && in.Path == "" && in.FS == nil:
			if err = c.validator.validateReader(in.Reader, in.Name); err == nil {
				ref := model.NewReaderRef(in.Name)
				found = []*source{{kind: sourceReader, name: in.Name, reader: in.Reader, ref: ref}}
			}
		case in.FS != nil:
			found, err = c.collectFS(ctx, in.FS)
		default:
			found, err = c.collectPath(ctx, in.Path)
		}
		if err != nil {
			return nil, err
		}
		for _, s := range found {
			s.passthrough = in.Passthrough
		}
		sources = append(sources, found...)
	}
	return sources, nil
}

func (c *collector) collectPath(ctx context.Context, p string) ([]*source, error) {
	info, err := c.validator.validatePath(p)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []*source{{kind: sourcePath, name: p, ref: model.NewFileRef(p, info)}}, nil
	}
	return c.collectDirectory(ctx, p, "")
}

// collectDirectory lists root/rel in lexical order
func (c *collector) collectDirectory(ctx context.Context, root, rel string) ([]*source, error) {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var sources []*source
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entryRel := path.Join(rel, entry.Name())
		if entry.IsDir() {
			if !c.recursive {
				continue
			}
			sub, err := c.collectDirectory(ctx, root, entryRel)
			if err != nil {
				return nil, err
			}
			sources = append(sources, sub...)
			continue
		}
		if !entry.Type().IsRegular() || !c.matcher.match(entryRel) {
			continue
		}
		full := filepath.Join(root, filepath.FromSlash(entryRel))
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", full, err)
		}
		sources = append(sources, &source{kind: sourcePath, name: full, ref: model.NewFileRef(full, info)})
	}
	return sources, nil
}

func (c *collector) collectFS(ctx context.Context, fsys fs.FS) ([]*source, error) {
	var sources []*source
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && !c.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if !c.matcher.match(p) {
			return nil
		}
		ref := model.NewReaderRef(p)
		if info, err := d.Info(); err == nil {
			ref.Size = info.Size()
			ref.ModTime = info.ModTime()
		}
		sources = append(sources, &source{kind: sourceFS, name: p, fsys: fsys, ref: ref})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk filesystem: %w", err)
	}
	return sources, nil
}
