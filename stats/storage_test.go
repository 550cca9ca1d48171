package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/pageaudit/analyzer"
)

func TestStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewStorage(tempDir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Shutdown() })

	t.Run("Record", func(t *testing.T) {
		storage.RecordCacheLookup(true)
		storage.RecordCacheLookup(false)
		storage.RecordCacheLookup(false)
		storage.RecordAnalysis(80)
		storage.RecordAnalysis(60)
		storage.RecordFailure(fmt.Errorf("wrapped: %w", analyzer.ErrQuotaExceeded))
		storage.RecordFailure(analyzer.ErrInvalidURL)
		storage.RecordPersistenceFailure()

		stats := storage.GetCurrentStats()
		assert.Equal(t, 1, stats.CacheHits)
		assert.Equal(t, 2, stats.CacheMisses)
		assert.Equal(t, 2, stats.Analyses)
		assert.Equal(t, 140, stats.ScoreTotal)
		assert.InDelta(t, 70.0, stats.AverageScore(), 1e-9)
		assert.Equal(t, 2, stats.Failures)
		assert.Equal(t, 1, stats.QuotaErrors)
		assert.Equal(t, 1, stats.PersistenceFailures)
	})

	t.Run("Persistence", func(t *testing.T) {
		require.NoError(t, storage.Flush())

		storage2, err := NewStorage(tempDir, nil)
		require.NoError(t, err)
		defer storage2.Shutdown()

		stats := storage2.GetCurrentStats()
		assert.Equal(t, 1, stats.CacheHits)
		assert.Equal(t, 2, stats.Analyses)
	})

	t.Run("Cleanup", func(t *testing.T) {
		now := time.Now()
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		oldMonth := firstOfMonth.AddDate(0, -3, 0).Format("2006-01")
		previous := firstOfMonth.AddDate(0, -1, 0).Format("2006-01")
		storage.mutex.Lock()
		storage.stats[oldMonth] = &MonthlyStats{Analyses: 100}
		storage.stats[previous] = &MonthlyStats{Analyses: 5}
		storage.mutex.Unlock()

		storage.Cleanup(2)

		_, exists := storage.GetMonthlyStats(oldMonth)
		assert.False(t, exists, "old stats should have been cleaned up")
		_, exists = storage.GetMonthlyStats(previous)
		assert.True(t, exists, "previous month is within retention")
		assert.Equal(t, []string{now.Format("2006-01"), previous}, storage.GetAllMonths())
	})

	t.Run("FileSize", func(t *testing.T) {
		require.NoError(t, storage.Flush())

		info, err := os.Stat(filepath.Join(tempDir, "stats.json"))
		require.NoError(t, err)
		assert.Less(t, info.Size(), int64(1024))
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		before := storage.GetCurrentStats()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					storage.RecordCacheLookup(true)
					storage.GetCurrentStats()
				}
			}()
		}
		wg.Wait()

		after := storage.GetCurrentStats()
		assert.Equal(t, before.CacheHits+1000, after.CacheHits)
	})
}

func TestStorage_ShutdownFlushes(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewStorage(dir, nil)
	require.NoError(t, err)

	storage.RecordAnalysis(42)
	require.NoError(t, storage.Shutdown())
	// a second shutdown is harmless
	require.NoError(t, storage.Shutdown())

	reloaded, err := NewStorage(dir, nil)
	require.NoError(t, err)
	defer reloaded.Shutdown()
	assert.Equal(t, 42, reloaded.GetCurrentStats().ScoreTotal)
}

func TestStorage_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stats.json"), []byte("{not json"), 0644))

	_, err := NewStorage(dir, nil)
	assert.Error(t, err)
}
