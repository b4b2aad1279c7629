package gtfsfeed

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SweeperConfig controls cleanup of abandoned feed directories
type SweeperConfig struct {
	BaseDir   string
	Retention time.Duration
	Interval  time.Duration
}

// Sweeper periodically removes extracted feeds older than the retention
type Sweeper struct {
	config SweeperConfig
	logger *zap.Logger
	now    func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweeper creates a new sweeper
func NewSweeper(cfg SweeperConfig, logger *zap.Logger) *Sweeper {
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{config: cfg, logger: logger, now: time.Now}
}

// Start runs the sweep loop in the background
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Feed sweeper started",
		zap.String("base_dir", s.config.BaseDir),
		zap.Duration("retention", s.config.Retention),
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop stops the sweep loop and waits for it to exit
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Feed sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce removes expired feed directories and returns how many were removed
func (s *Sweeper) SweepOnce() int {
	matches, err := filepath.Glob(filepath.Join(s.config.BaseDir, feedDirPattern))
	if err != nil {
		s.logger.Error("Failed to list feed directories", zap.Error(err))
		return 0
	}

	cutoff := s.now().Add(-s.config.Retention)
	removed := 0
	for _, dir := range matches {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("Failed to remove expired feed", zap.String("dir", dir), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("Removed expired feeds", zap.Int("count", removed))
	}
	return removed
}
