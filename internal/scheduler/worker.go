package scheduler

import (
	"log"
	"time"

	"gorm.io/gorm"

	"dispatch-portal/internal/models"
	"dispatch-portal/internal/search"
)

// IndexWorker keeps the search index in sync with the units table. It polls
// for rows updated since the last successful sync and pushes them in batches,
// so index writes never sit on the request path.
type IndexWorker struct {
	db           *gorm.DB
	search       *search.SearchClient
	stopChan     chan struct{}
	isRunning    bool
	pollInterval time.Duration
	batchSize    int
	lastSync     time.Time
}

// NewIndexWorker creates a new index worker
func NewIndexWorker(db *gorm.DB, searchClient *search.SearchClient) *IndexWorker {
	return &IndexWorker{
		db:           db,
		search:       searchClient,
		stopChan:     make(chan struct{}),
		pollInterval: 30 * time.Second,
		batchSize:    200,
	}
}

// Start starts the index worker
func (w *IndexWorker) Start() {
	if w.isRunning {
		log.Println("IndexWorker: Already running")
		return
	}

	w.isRunning = true
	log.Printf("IndexWorker: Started (poll_interval=%v, batch_size=%d)", w.pollInterval, w.batchSize)

	go w.run()
}

// Stop stops the index worker
func (w *IndexWorker) Stop() {
	if !w.isRunning {
		return
	}

	log.Println("IndexWorker: Stopping...")
	w.isRunning = false
	close(w.stopChan)
}

// run is the main worker loop
func (w *IndexWorker) run() {
	// Full sync on startup, then incremental
	if err := w.FullSync(); err != nil {
		log.Printf("IndexWorker: Initial full sync failed: %v", err)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("IndexWorker: Stopped")
			return
		case <-ticker.C:
			if err := w.syncChanged(); err != nil {
				log.Printf("IndexWorker: Sync failed: %v", err)
			}
		}
	}
}

// FullSync reindexes every unit
func (w *IndexWorker) FullSync() error {
	syncStart := time.Now()

	var total int
	offset := 0
	for {
		var units []models.Unit
		err := w.db.Order("created_at ASC, id ASC").
			Offset(offset).Limit(w.batchSize).
			Find(&units).Error
		if err != nil {
			return err
		}
		if len(units) == 0 {
			break
		}

		if err := w.search.IndexUnits(units); err != nil {
			return err
		}

		total += len(units)
		offset += w.batchSize
	}

	w.lastSync = syncStart
	log.Printf("IndexWorker: Full sync indexed %d units", total)
	return nil
}

// syncChanged indexes units updated since the last successful sync
func (w *IndexWorker) syncChanged() error {
	syncStart := time.Now()

	var units []models.Unit
	err := w.db.Where("updated_at >= ?", w.lastSync).
		Order("updated_at ASC").
		Limit(w.batchSize).
		Find(&units).Error
	if err != nil {
		return err
	}

	if len(units) == 0 {
		w.lastSync = syncStart
		return nil
	}

	if err := w.search.IndexUnits(units); err != nil {
		return err
	}

	log.Printf("IndexWorker: Indexed %d changed units", len(units))
	w.lastSync = syncStart
	return nil
}
