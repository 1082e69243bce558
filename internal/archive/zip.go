// Package archive turns backup directories into .zip records and mirrors
// those records to S3-compatible storage.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

type Method string

const (
	MethodDeflate Method = "deflate"
	MethodZstd    Method = "zstd"
)

func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodDeflate:
		return MethodDeflate, nil
	case MethodZstd:
		return MethodZstd, nil
	default:
		return "", fmt.Errorf("unknown compression %q (use deflate or zstd)", s)
	}
}

func (m Method) zipMethod() uint16 {
	if m == MethodZstd {
		return zstd.ZipMethodWinZip
	}
	return zip.Deflate
}

// CompressDir writes every entry below src into the zip file dst, with names
// relative to src. The archive is built in a temp file next to dst and
// renamed into place, so dst is either absent or complete.
func CompressDir(ctx context.Context, src, dst string, method Method) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("compress %s: %w", src, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("compress %s: not a directory", src)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp archive: %w", err)
	}
	done := false
	defer func() {
		if !done {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	if method == MethodZstd {
		zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())
	}
	if err := addTree(ctx, zw, src, method); err != nil {
		_ = zw.Close()
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finish archive: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("sync archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("rename archive into place: %w", err)
	}
	done = true

	st, err := os.Stat(dst)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

func addTree(ctx context.Context, zw *zip.Writer, src string, method Method) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == src {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("header for %s: %w", p, err)
		}
		hdr.Name = filepath.ToSlash(rel)

		switch {
		case d.IsDir():
			hdr.Name += "/"
			hdr.Method = zip.Store
			_, err := zw.CreateHeader(hdr)
			return err
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return err
			}
			hdr.Method = zip.Store
			w, err := zw.CreateHeader(hdr)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, filepath.ToSlash(target))
			return err
		case d.Type().IsRegular():
			hdr.Method = method.zipMethod()
			w, err := zw.CreateHeader(hdr)
			if err != nil {
				return err
			}
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			_, err = io.Copy(w, f)
			_ = f.Close()
			if err != nil {
				return fmt.Errorf("add %s: %w", p, err)
			}
			return nil
		default:
			return nil
		}
	})
}

// Extract unpacks zipPath into dst. Entries that would land outside dst are
// rejected.
func Extract(ctx context.Context, zipPath, dst string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", zipPath, err)
	}
	defer r.Close()
	r.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	root := filepath.Clean(dst)
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := cleanEntryName(f.Name)
		if name == "" {
			return fmt.Errorf("unsafe entry %q in %s", f.Name, zipPath)
		}
		target := filepath.Join(root, filepath.FromSlash(name))
		if err := extractEntry(f, root, target); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractEntry(f *zip.File, root, target string) error {
	mode := f.Mode()
	isLink := mode&fs.ModeSymlink != 0
	// Nothing is written through a symlink created by an earlier entry.
	check := target
	if isLink {
		check = filepath.Dir(target)
	}
	if err := noSymlinks(root, check); err != nil {
		return err
	}
	if mode.IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if isLink {
		b, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		link := filepath.FromSlash(string(b))
		if filepath.IsAbs(link) || strings.HasPrefix(string(b), "/") || !within(root, filepath.Join(filepath.Dir(target), link)) {
			return fmt.Errorf("symlink %s -> %s leaves the target directory", target, b)
		}
		_ = os.Remove(target)
		return os.Symlink(link, target)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// noSymlinks fails when an existing element of p below root is a symlink.
func noSymlinks(root, p string) error {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return err
	}
	if rel == "." {
		return nil
	}
	cur := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		info, err := os.Lstat(cur)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("%s is a symlink", cur)
		}
	}
	return nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, filepath.Clean(p))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func cleanEntryName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	name = path.Clean(name)
	name = strings.TrimLeft(name, "/")
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, "../") {
		return ""
	}
	return name
}
