package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"media-catalog/internal/logging"
)

// FixDirTimes walks root and sets the modification time of every directory
// below it to the newest modification time among that directory's own
// non-hidden regular files. Directories without such files keep their time.
// The root itself is never touched. It returns the number of directories
// updated. ctx is checked before each directory.
func FixDirTimes(ctx context.Context, root string) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, &os.PathError{Op: "fixtimes", Path: root, Err: os.ErrInvalid}
	}

	updated := 0
	if err := fixDir(ctx, root, true, &updated); err != nil {
		return updated, err
	}
	return updated, nil
}

func fixDir(ctx context.Context, dir string, isRoot bool, updated *int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := ReadDirWithRetry(dir, DefaultRetryConfig())
	if err != nil && len(entries) == 0 {
		logging.Debug("fix-times: skipping unreadable %s: %v", dir, err)
		return nil
	}

	var newest time.Time
	for _, e := range entries {
		if IsHidden(e.Name()) {
			continue
		}
		full := filepath.Join(dir, e.Name())

		if e.IsDir() {
			if err := fixDir(ctx, full, false, updated); err != nil {
				return err
			}
			continue
		}
		if isRoot || !e.Type().IsRegular() {
			continue
		}

		fi, err := e.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
	}

	if isRoot || newest.IsZero() {
		return nil
	}

	if err := os.Chtimes(dir, newest, newest); err != nil {
		logging.Warn("fix-times: failed to set time on %s: %v", dir, err)
		return nil
	}
	*updated++
	return nil
}
