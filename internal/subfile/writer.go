// Package subfile reconstructs the on-disk file tree a packed
// document's !include/!includeraw tags reference, deduplicating
// subfiles that pack to identical bytes and renaming the ones that
// collide on a path without matching content.
package subfile

import (
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Writer implements packer.IncludeSink. Write is called once per
// inclusion site that needs its own file under outdir; it probes a
// content-addressed path→hash map kept across the whole Pack call, so
// two sites packing to byte-identical content share one file while two
// sites that collide on a path with diverging content are split apart
// with a "~N" suffix before the extension.
type Writer struct {
	outdir   string
	fileMode os.FileMode

	written map[string]uint64
}

// NewWriter creates a Writer rooted at outdir, creating the directory
// if it does not already exist.
func NewWriter(outdir string, fileMode os.FileMode) (*Writer, error) {
	if err := os.MkdirAll(outdir, 0o777); err != nil {
		return nil, err
	}
	return &Writer{
		outdir:   outdir,
		fileMode: fileMode,
		written:  make(map[string]uint64),
	}, nil
}

// Write satisfies packer.IncludeSink. path is the include tag's own
// target text, taken as relative to outdir; data is that subfile's
// already-packed bytes. The returned path is the one the caller should
// cite in the "!include"/"!includeraw" token — it differs from path
// only when a same-path, different-content subfile got there first.
func (w *Writer) Write(path string, data []byte) (string, error) {
	sum := contentHash(data)
	target := path
	for n := 0; ; n++ {
		if n > 0 {
			target = suffixed(path, n)
		}
		existing, ok := w.written[target]
		if !ok {
			if err := w.writeFile(target, data); err != nil {
				return "", err
			}
			w.written[target] = sum
			return target, nil
		}
		if existing == sum {
			return target, nil
		}
	}
}

func contentHash(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// suffixed inserts "~N" before path's extension, or appends it to the
// whole name when path has none.
func suffixed(path string, n int) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "~" + strconv.Itoa(n) + ext
}

// writeFile writes data to outdir/relPath via a uuid-named temp file
// in the same directory followed by a rename, so two Writers (or two
// pack_to_file calls) targeting the same tree concurrently never
// observe a partially-written subfile.
func (w *Writer) writeFile(relPath string, data []byte) error {
	dest := filepath.Join(w.outdir, relPath)
	if err := os.MkdirAll(filepath.Dir(dest), 0o777); err != nil {
		return err
	}
	tmp := dest + "." + uuid.NewString() + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, w.fileMode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
