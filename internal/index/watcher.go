package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/cardsmith/internal/checksum"
	"github.com/starford/cardsmith/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, id string)

// Watch starts an fsnotify watcher on the library root and processes record
// changes made outside the service until ctx is cancelled. It calls cb (if
// non-nil) after each index mutation. Writes whose content is already indexed
// are ignored, so the service's own saves do not echo back.
//
// Rename events trigger a debounced reconciliation pass that removes stale
// index entries and indexes records that appeared under a new name.
func Watch(ctx context.Context, db *DB, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	notify := func(kind, id string) {
		if cb != nil {
			cb(kind, id)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			id, isRecord := cardID(root, ev.Name)
			if !isRecord {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(id)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("id", id), slog.String("error", readErr.Error()))
					continue
				}
				known, _ := db.GetChecksum(id)
				if known == checksum.Sum(data) {
					continue
				}
				if idxErr := IndexRecord(db, id, data); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("id", id), slog.String("error", idxErr.Error()))
					continue
				}
				kind := "updated"
				if known == "" {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("id", id), slog.String("op", kind))
				notify(kind, id)

			case ev.Op&fsnotify.Remove != 0:
				if known, _ := db.GetChecksum(id); known == "" {
					continue
				}
				if delErr := db.DeleteCard(id); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("id", id), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("id", id))
				notify("deleted", id)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports Rename on the old name only; the new name
				// arrives as a Create if it stays inside the library.
				if delErr := db.DeleteCard(id); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("id", id), slog.String("error", delErr.Error()))
				} else {
					notify("deleted", id)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index entries without a record on disk and indexes
// records whose checksum differs from the index.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.ID] = m.Checksum
	}

	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if delErr := db.DeleteCard(id); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("id", id))
				if cb != nil {
					cb("deleted", id)
				}
			}
		}
	}

	for id, cs := range disk {
		if checksums[id] == cs {
			continue
		}
		data, readErr := store.Read(id)
		if readErr != nil {
			continue
		}
		if idxErr := IndexRecord(db, id, data); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.String("id", id))
			if cb != nil {
				cb("created", id)
			}
		}
	}
}

// cardID maps a watched path to a card id. Temp files and anything outside
// the root directory are not records.
func cardID(root, p string) (string, bool) {
	if filepath.Dir(p) != filepath.Clean(root) {
		return "", false
	}
	name := filepath.Base(p)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, storage.Ext) {
		return "", false
	}
	return strings.TrimSuffix(name, storage.Ext), true
}
