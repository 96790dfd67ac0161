package similarity

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ticketdraft/internal/corpus"
)

// Reloader rebuilds the published index when the corpus file changes.
type Reloader struct {
	path   string
	holder *Holder

	mu      sync.Mutex
	lastMod time.Time
}

func NewReloader(path string, holder *Holder) *Reloader {
	return &Reloader{path: path, holder: holder}
}

// Reload loads the corpus if its modification time differs from the last
// successful load. On failure the previously published index stays in place.
func (r *Reloader) Reload() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(r.path)
	if err != nil {
		return false, fmt.Errorf("stat corpus %s: %w", r.path, err)
	}
	if !r.lastMod.IsZero() && info.ModTime().Equal(r.lastMod) && r.holder.Load() != nil {
		return false, nil
	}

	c, err := corpus.LoadFile(r.path)
	if err != nil {
		return false, err
	}
	idx := NewIndex(c, r.path)
	r.holder.Store(idx)
	r.lastMod = info.ModTime()
	log.Printf("similarity index rebuilt path=%s records=%d vocab=%d", r.path, len(c), idx.Model.VocabularySize())
	return true, nil
}

// Start schedules Reload with a standard 5-field cron expression. An empty
// schedule disables reloading and returns a nil scheduler.
func (r *Reloader) Start(schedule string, loc *time.Location) (*cron.Cron, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		log.Println("Corpus reload disabled (corpus_reload_schedule not set)")
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(schedule, func() {
		if _, err := r.Reload(); err != nil {
			log.Printf("corpus reload error: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid corpus_reload_schedule '%s': %w", schedule, err)
	}
	c.Start()
	log.Printf("Corpus reload scheduled (cron: %s) path=%s", schedule, r.path)
	return c, nil
}
