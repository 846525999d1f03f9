package scanner

import (
	"context"

	"golang.org/x/sync/singleflight"

	"media-catalog/internal/model"
)

// Shared lets concurrent callers listing the same directory share one walk.
// The walk runs under the first caller's context; a caller whose own context
// ends first stops waiting and gets its context error.
type Shared struct {
	scanner *Scanner
	group   singleflight.Group
}

// NewShared wraps s.
func NewShared(s *Scanner) *Shared {
	return &Shared{scanner: s}
}

// List is Scanner.List with duplicate suppression keyed by directory.
func (sh *Shared) List(ctx context.Context, dir string) ([]model.FileItem, error) {
	return sh.do(ctx, "list\x00"+dir, func() ([]model.FileItem, error) {
		return sh.scanner.List(ctx, dir)
	})
}

// Search is Scanner.Search with duplicate suppression keyed by root and query.
func (sh *Shared) Search(ctx context.Context, root, query string) ([]model.FileItem, error) {
	return sh.do(ctx, "search\x00"+root+"\x00"+query, func() ([]model.FileItem, error) {
		return sh.scanner.Search(ctx, root, query)
	})
}

func (sh *Shared) do(ctx context.Context, key string, fn func() ([]model.FileItem, error)) ([]model.FileItem, error) {
	ch := sh.group.DoChan(key, func() (interface{}, error) {
		return fn()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		items, _ := res.Val.([]model.FileItem)
		if res.Shared {
			// Each caller gets its own slice to mutate.
			items = model.CloneItems(items)
		}
		return items, res.Err
	}
}
