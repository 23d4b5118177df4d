package helpers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrTooManyFiles    = errors.New("too many files")
	ErrUnknownKind     = errors.New("unknown upload kind")
)

const (
	KindAvatar   = "avatar"
	KindFeedback = "feedback"
)

// UploadRule limits what may be stored under one kind.
type UploadRule struct {
	// Types are glob patterns over the sniffed content type, e.g. "image/*".
	Types    []string
	MaxBytes int64
	MaxFiles int
}

func DefaultUploadRules() map[string]UploadRule {
	return map[string]UploadRule{
		KindAvatar:   {Types: []string{"image/*"}, MaxBytes: 2 << 20, MaxFiles: 1},
		KindFeedback: {Types: []string{"image/*", "application/pdf"}, MaxBytes: 5 << 20, MaxFiles: 3},
	}
}

type uploadKind struct {
	rule  UploadRule
	types []glob.Glob
}

// UploadStore keeps user files under <root>/<kind>/<uuid><ext>.
type UploadStore struct {
	fs    afero.Fs
	root  string
	kinds map[string]uploadKind
}

func NewUploadStore(fs afero.Fs, root string, rules map[string]UploadRule) (*UploadStore, error) {
	s := &UploadStore{fs: fs, root: path.Clean("/" + root), kinds: make(map[string]uploadKind, len(rules))}

	for name, rule := range rules {
		k := uploadKind{rule: rule}
		for _, pattern := range rule.Types {
			g, err := glob.Compile(pattern, '/')
			if err != nil {
				return nil, fmt.Errorf("upload rule %s: %w", name, err)
			}
			k.types = append(k.types, g)
		}
		s.kinds[name] = k
	}

	return s, nil
}

// NewOSUploadStore stores files below dir on the local disk.
func NewOSUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return NewUploadStore(afero.NewBasePathFs(afero.NewOsFs(), dir), "/", DefaultUploadRules())
}

// Rule returns the limits for kind.
func (s *UploadStore) Rule(kind string) (UploadRule, bool) {
	k, ok := s.kinds[kind]
	return k.rule, ok
}

// Save validates r against the kind's rules and stores it. The returned path is
// relative ("avatar/<uuid>.png") and is what gets persisted on documents.
func (s *UploadStore) Save(kind string, r io.Reader) (string, error) {
	k, ok := s.kinds[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	data, err := io.ReadAll(io.LimitReader(r, k.rule.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > k.rule.MaxBytes {
		return "", fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, k.rule.MaxBytes)
	}

	contentType := sniff(data)
	if !k.allows(contentType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, contentType)
	}

	dir := path.Join(s.root, kind)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	name := uuid.NewString() + extension(contentType)
	if err := afero.WriteFile(s.fs, path.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path.Join(kind, name), nil
}

// Open returns a stored file by its relative path.
func (s *UploadStore) Open(rel string) (afero.File, error) {
	full, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	return s.fs.Open(full)
}

// Remove deletes a stored file. Missing files are ignored.
func (s *UploadStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// FS exposes the backing filesystem for serving files over HTTP.
func (s *UploadStore) FS() http.FileSystem {
	return afero.NewHttpFs(afero.NewBasePathFs(s.fs, s.root))
}

func (s *UploadStore) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	kind, _, _ := strings.Cut(strings.TrimPrefix(clean, "/"), "/")
	if _, ok := s.kinds[kind]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return path.Join(s.root, clean), nil
}

func (k uploadKind) allows(contentType string) bool {
	for _, g := range k.types {
		if g.Match(contentType) {
			return true
		}
	}
	return false
}

func sniff(data []byte) string {
	contentType := http.DetectContentType(data)
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return contentType
}

var extensions = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/bmp":       ".bmp",
	"application/pdf": ".pdf",
}

func extension(contentType string) string {
	if ext, ok := extensions[contentType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
