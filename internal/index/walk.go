package index

import (
	"context"
	"io/fs"
)

// Walk enumerates every regular file under the root of fsys and sends it on
// out as it is discovered. Unreadable directories are reported through onErr
// and skipped. Walk does not close out. It returns the number of records sent
// and ctx.Err() if the walk was cut short by cancellation.
func Walk(ctx context.Context, fsys fs.FS, opts Options, out chan<- FileRecord, onErr func(*WalkError)) (int64, error) {
	if onErr == nil {
		onErr = func(*WalkError) {}
	}

	var sent int64
	emit := func(rec FileRecord) error {
		select {
		case out <- rec:
			sent++
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			onErr(&WalkError{Path: p, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if p != "." && opts.Exclude.Match(p) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, skip := opts.Skip[p]; skip {
			return nil
		}

		switch typ := d.Type(); {
		case typ.IsRegular():
			info, err := d.Info()
			if err != nil {
				onErr(&WalkError{Path: p, Err: err})
				return nil
			}
			return emit(FileRecord{Path: p, Size: info.Size()})

		case typ&fs.ModeSymlink != 0:
			if opts.Symlinks != SymlinkFollow {
				return nil
			}
			info, err := fs.Stat(fsys, p)
			if err != nil {
				onErr(&WalkError{Path: p, Err: err})
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			return emit(FileRecord{Path: p, Size: info.Size()})
		}
		return nil
	})
	return sent, err
}
