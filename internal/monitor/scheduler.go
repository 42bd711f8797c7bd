package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// task 一个独立的周期任务
type task struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)
}

// Scheduler 持有若干互相独立的周期任务：每个任务各自的 ticker 与 goroutine，
// 不合并成一个循环；Stop 取消全部任务并等待退出。
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	tasks   []task
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewScheduler 创建 Scheduler
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Every 注册任务；须在 Start 之前调用
func (s *Scheduler) Every(name string, interval time.Duration, run func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task{name: name, interval: interval, run: run})
}

// Start 启动全部任务；重复调用无效
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, t)
	}
}

func (s *Scheduler) loop(ctx context.Context, t task) {
	defer s.wg.Done()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	s.logger.Debug("周期任务已启动", zap.String("task", t.name), zap.Duration("interval", t.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, t)
		}
	}
}

// runOnce 单次执行的 panic 不影响后续周期
func (s *Scheduler) runOnce(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("周期任务 panic", zap.String("task", t.name), zap.Any("panic", r))
		}
	}()
	t.run(ctx)
}

// Stop 取消全部任务并等待 goroutine 退出
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
}
