package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seo-optimizer/pageaudit/analyzer"
)

// MonthlyStats holds the analysis counters of one calendar month
type MonthlyStats struct {
	Analyses            int       `json:"analyses"`
	CacheHits           int       `json:"cache_hits"`
	CacheMisses         int       `json:"cache_misses"`
	Failures            int       `json:"failures"`
	QuotaErrors         int       `json:"quota_errors"`
	PersistenceFailures int       `json:"persistence_failures"`
	ScoreTotal          int       `json:"score_total"`
	LastUpdated         time.Time `json:"last_updated"`
}

// AverageScore returns the mean score of the month's analyses
func (m MonthlyStats) AverageScore() float64 {
	if m.Analyses == 0 {
		return 0
	}
	return float64(m.ScoreTotal) / float64(m.Analyses)
}

var _ analyzer.Recorder = &Storage{}

// Storage keeps monthly counters in memory and persists them as JSON
type Storage struct {
	mutex       sync.RWMutex
	saveMu      sync.Mutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	stop        chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
	logger      *zap.Logger
}

// NewStorage loads dataDir/stats.json, if present, and starts the
// background writer
func NewStorage(dataDir string, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, "stats.json"),
		writeBuffer: make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		now:         time.Now,
		logger:      logger,
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.backgroundWriter()

	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.stats)
}

func (s *Storage) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	// Write to temporary file first, then rename into place
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// backgroundWriter persists on request and every five minutes
func (s *Storage) backgroundWriter() {
	defer close(s.done)
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
		case <-ticker.C:
		case <-s.stop:
			return
		}
		if err := s.save(); err != nil {
			s.logger.Warn("Failed to save statistics", zap.Error(err))
		}
	}
}

// Flush writes the statistics to disk immediately
func (s *Storage) Flush() error {
	return s.save()
}

// Shutdown stops the background writer and flushes to disk
func (s *Storage) Shutdown() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return s.save()
}

func (s *Storage) currentMonth() string {
	return s.now().Format("2006-01")
}

func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// write already pending
	}
}

// update applies fn to the current month's counters
func (s *Storage) update(fn func(*MonthlyStats)) {
	month := s.currentMonth()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats, exists := s.stats[month]
	if !exists {
		stats = &MonthlyStats{}
		s.stats[month] = stats
	}
	fn(stats)
	stats.LastUpdated = s.now()

	// Request a write if enough time has passed
	if s.now().Sub(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = s.now()
	}
}

// RecordCacheLookup implements analyzer.Recorder
func (s *Storage) RecordCacheLookup(hit bool) {
	s.update(func(m *MonthlyStats) {
		if hit {
			m.CacheHits++
		} else {
			m.CacheMisses++
		}
	})
}

// RecordAnalysis implements analyzer.Recorder
func (s *Storage) RecordAnalysis(score int) {
	s.update(func(m *MonthlyStats) {
		m.Analyses++
		m.ScoreTotal += score
	})
}

// RecordFailure implements analyzer.Recorder
func (s *Storage) RecordFailure(err error) {
	s.update(func(m *MonthlyStats) {
		m.Failures++
		if errors.Is(err, analyzer.ErrQuotaExceeded) {
			m.QuotaErrors++
		}
	})
}

// RecordPersistenceFailure implements analyzer.Recorder
func (s *Storage) RecordPersistenceFailure() {
	s.update(func(m *MonthlyStats) {
		m.PersistenceFailures++
	})
}

// GetCurrentStats returns statistics for the current month
func (s *Storage) GetCurrentStats() MonthlyStats {
	month := s.currentMonth()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[month]; exists {
		return *stats
	}
	return MonthlyStats{}
}

// Cleanup removes statistics older than retainMonths months, counting the
// current month as the first
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}
	keep := make(map[string]bool, retainMonths)
	now := s.now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < retainMonths; i++ {
		keep[firstOfMonth.AddDate(0, -i, 0).Format("2006-01")] = true
	}

	s.mutex.Lock()
	for key := range s.stats {
		if !keep[key] {
			delete(s.stats, key)
		}
	}
	s.mutex.Unlock()

	s.requestWrite()
	s.logger.Debug("Pruned statistics", zap.Int("retainMonths", retainMonths))
}

// GetMonthlyStats looks up a "YYYY-MM" month
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return *stats, true
	}
	return MonthlyStats{}, false
}

// GetAllMonths returns all months that have statistics, newest first
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	return months
}
