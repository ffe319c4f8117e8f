package datetime

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch refreshes the cache whenever one of the watched zone files changes,
// until ctx is done. Parent directories are watched because tools replace
// /etc/localtime by unlinking and re-creating the symlink.
func (z *ZoneCache) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create zone watcher: %w", err)
	}

	targets := make(map[string]struct{}, len(z.paths))
	dirs := make(map[string]struct{})
	for _, p := range z.paths {
		p = filepath.Clean(p)
		targets[p] = struct{}{}
		dirs[filepath.Dir(p)] = struct{}{}
	}

	added := 0
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			z.logger.Debug("Skipping zone watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		added++
	}
	if added == 0 {
		watcher.Close()
		return fmt.Errorf("failed to watch any of %v", z.paths)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if _, hit := targets[filepath.Clean(event.Name)]; !hit {
					continue
				}
				z.logger.Debug("Zone file event", zap.String("file", event.Name), zap.String("op", event.Op.String()))
				z.Refresh()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				z.logger.Warn("Zone watcher error", zap.Error(err))
			}
		}
	}()

	z.logger.Debug("Watching system time zone", zap.Strings("paths", z.paths))
	return nil
}
