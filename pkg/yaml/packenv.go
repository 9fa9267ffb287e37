package yaml

import (
	"io"
	"os"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/packer"
	"github.com/shapestone/yamlfuse/internal/presentation"
	"github.com/shapestone/yamlfuse/internal/subfile"
)

// PackEnv configures one packing run: whether included subtrees are
// spliced inline or written out as their own files, and (when written
// out) where and with what permissions.
type PackEnv struct {
	noSubfiles bool
	outdir     string
	fileMode   os.FileMode
}

// NewPackEnv returns a PackEnv that inlines every include — the
// default with no outdir configured.
func NewPackEnv() *PackEnv {
	return &PackEnv{fileMode: 0o644}
}

// SetOutdir enables multi-file emission: every included subtree is
// re-emitted as "!include path" (or "!includeraw path") and its own
// packed bytes are written under dir, creating the directory tree as
// needed.
func (e *PackEnv) SetOutdir(dir string) *PackEnv {
	e.outdir = dir
	return e
}

// SetFlags toggles NoSubfiles: references are emitted as
// "!include path" without writing any subfile to disk, even if an
// outdir was also configured. Useful for a dry-run reference count.
func (e *PackEnv) SetFlags(noSubfiles bool) *PackEnv {
	e.noSubfiles = noSubfiles
	return e
}

// SetFileMode sets the permissions subfiles are created with when an
// outdir is configured. Defaults to 0644.
func (e *PackEnv) SetFileMode(mode os.FileMode) *PackEnv {
	e.fileMode = mode
	return e
}

func (e *PackEnv) options() (packer.Options, error) {
	switch {
	case e.noSubfiles:
		return packer.Options{Mode: packer.ModeReference}, nil
	case e.outdir != "":
		w, err := subfile.NewWriter(e.outdir, e.fileMode)
		if err != nil {
			return packer.Options{}, err
		}
		return packer.Options{Mode: packer.ModeReference, Sink: w}, nil
	default:
		return packer.Options{Mode: packer.ModeInline}, nil
	}
}

// PackToWriter packs root (with pres as its presentation side-channel)
// per e's configuration and writes the result to w.
func (e *PackEnv) PackToWriter(w io.Writer, root *ast.Node, pres *presentation.Document) error {
	opts, err := e.options()
	if err != nil {
		return err
	}
	out, err := packer.Pack(root, pres, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// PackToFile packs root and writes the result to filename.
func (e *PackEnv) PackToFile(filename string, root *ast.Node, pres *presentation.Document) error {
	opts, err := e.options()
	if err != nil {
		return err
	}
	out, err := packer.Pack(root, pres, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, out, e.fileMode)
}

// Pack packs d with no outdir configured — every include is inlined.
// Equivalent to NewPackEnv().PackToWriter with an in-memory buffer.
func (d *Document) Pack() ([]byte, error) {
	return packer.Pack(d.Root, d.Doc, packer.Options{Mode: packer.ModeInline})
}
