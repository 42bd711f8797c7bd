package monitor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func waitCount(t *testing.T, n *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n.Load() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("等待计数达到 %d 超时，当前: %d", want, n.Load())
}

func TestScheduler_RunsTasksIndependently(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var fast, slow atomic.Int32
	s.Every("fast", 5*time.Millisecond, func(context.Context) { fast.Add(1) })
	s.Every("slow", time.Hour, func(context.Context) { slow.Add(1) })

	s.Start(context.Background())
	waitCount(t, &fast, 3)
	s.Stop()

	if slow.Load() != 0 {
		t.Errorf("慢任务不应随快任务执行，实际: %d", slow.Load())
	}
}

func TestScheduler_StopHaltsTasks(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var n atomic.Int32
	s.Every("tick", 5*time.Millisecond, func(context.Context) { n.Add(1) })

	s.Start(context.Background())
	waitCount(t, &n, 1)
	s.Stop()

	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	if n.Load() != after {
		t.Errorf("Stop 后任务不应继续执行: %d -> %d", after, n.Load())
	}
	s.Stop() // 重复 Stop 无副作用
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var n atomic.Int32
	s.Every("flaky", 5*time.Millisecond, func(context.Context) {
		if n.Add(1) == 1 {
			panic("boom")
		}
	})

	s.Start(context.Background())
	defer s.Stop()
	waitCount(t, &n, 3)
}
