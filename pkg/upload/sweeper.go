package upload

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/webhookx-io/eventsvc/db/entities"
	"github.com/webhookx-io/eventsvc/db/query"
	"github.com/webhookx-io/eventsvc/normalizer"
	"go.uber.org/zap"
)

const sweepPageSize = 500

// Lister pages through stored records.
type Lister interface {
	List(ctx context.Context, q query.Queryer) ([]*entities.Event, error)
}

// Sweeper removes stored files that no record references. Files younger
// than MinAge are kept, since their record may not be written yet.
type Sweeper struct {
	log     *zap.SugaredLogger
	storage *Storage
	lister  Lister
	minAge  time.Duration
}

func NewSweeper(storage *Storage, lister Lister, minAge time.Duration) *Sweeper {
	return &Sweeper{
		log:     zap.S().Named("uploads"),
		storage: storage,
		lister:  lister,
		minAge:  minAge,
	}
}

func referencedFile(event *entities.Event) string {
	files, ok := event.Document[normalizer.FieldFiles].(map[string]interface{})
	if !ok {
		return ""
	}
	path, ok := files[normalizer.FieldImage].(string)
	if !ok || !strings.HasPrefix(path, normalizer.UploadPrefix) {
		return ""
	}
	return strings.TrimPrefix(path, normalizer.UploadPrefix)
}

func (s *Sweeper) referenced(ctx context.Context) (map[string]struct{}, error) {
	refs := make(map[string]struct{})
	for page := uint64(1); ; page++ {
		var q query.EventQuery
		q.Page(page, sweepPageSize)
		q.Order("id", query.ASC)
		list, err := s.lister.List(ctx, &q)
		if err != nil {
			return nil, err
		}
		for _, event := range list {
			if name := referencedFile(event); name != "" {
				refs[name] = struct{}{}
			}
		}
		if len(list) < sweepPageSize {
			return refs, nil
		}
	}
}

// Sweep removes orphaned files and returns how many were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.storage.Dir())
	if err != nil {
		return 0, err
	}
	refs, err := s.referenced(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-s.minAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := refs[entry.Name()]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := s.storage.Remove(entry.Name()); err != nil {
			s.log.Warnf("failed to remove %s: %v", entry.Name(), err)
			continue
		}
		s.log.Debugf("removed orphaned file %s", entry.Name())
		removed++
	}
	return removed, nil
}

// Run is a scheduler task body.
func (s *Sweeper) Run() {
	removed, err := s.Sweep(context.Background())
	if err != nil {
		s.log.Errorf("failed to sweep uploads: %v", err)
		return
	}
	if removed > 0 {
		s.log.Infof("removed %d orphaned files", removed)
	}
}
