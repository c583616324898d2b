package document

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// File is a document on the local filesystem
type File struct {
	fp   *os.File
	size int64
	Content
}

var (
	_ Object  = (*File)(nil)
	_ fs.File = (*File)(nil)
)

func NewFile(fname string) (*File, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	fileInfo, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, err
	}
	if fileInfo.IsDir() {
		fp.Close()
		return nil, ErrIsDir
	}
	return &File{
		fp:   fp,
		size: fileInfo.Size(),
		Content: Content{
			meta: map[string]string{
				"source":    "file",
				"file_name": fileInfo.Name(),
				"modtime":   strconv.FormatInt(fileInfo.ModTime().Unix(), 10),
			},
		},
	}, nil
}

func (d *File) Stat() (fs.FileInfo, error) {
	return d.fp.Stat()
}

func (d *File) Read(p []byte) (int, error) {
	return d.fp.Read(p)
}

func (d *File) ReadAt(p []byte, off int64) (int, error) {
	return d.fp.ReadAt(p, off)
}

func (d *File) Size() int64 {
	return d.size
}

func (d *File) Close() error {
	return d.fp.Close()
}

// Dir is a corpus backed by a local directory tree
type Dir struct {
	root string
}

var _ Corpus = (*Dir)(nil)

func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory path
func (d *Dir) Root() string {
	return d.root
}

// List returns slash separated paths relative to the root of every supported
// document, hidden files and directories are skipped
func (d *Dir) List(ctx context.Context) ([]string, error) {
	var ret []string
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p != d.root && strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !Supported(entry.Name()) {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		ret = append(ret, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(ret)
	return ret, nil
}

func (d *Dir) Open(_ context.Context, id string) (Object, error) {
	f, err := NewFile(filepath.Join(d.root, filepath.FromSlash(id)))
	if err != nil {
		return nil, err
	}
	f.meta["id"] = id
	return f, nil
}
