package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/availability"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/model"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/service"
)

// ── 测试替身 ──

type fakeLoader struct {
	mu    sync.Mutex
	loads int
	evals int
	err     error
	skipped []availability.Skipped
	gates   map[int]chan struct{} // 第 i 次 Load 阻塞直到对应 channel 关闭
}

func (f *fakeLoader) Load(_ context.Context, now time.Time) (*service.RoomDataset, error) {
	f.mu.Lock()
	idx := f.loads
	f.loads++
	err := f.err
	gate := f.gates[idx]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	y, mo, d := now.Date()
	return &service.RoomDataset{
		Date:      time.Date(y, mo, d, 0, 0, 0, 0, now.Location()),
		FetchedAt: now,
		Rooms:     []model.Room{{RoomID: fmt.Sprintf("r-%d", idx), Name: "Lab"}},
	}, nil
}

func (f *fakeLoader) Evaluate(ds *service.RoomDataset, now time.Time) *service.RoomStatusSnapshot {
	f.mu.Lock()
	f.evals++
	skipped := f.skipped
	f.mu.Unlock()
	return &service.RoomStatusSnapshot{Now: now, Dataset: ds, Aggregation: &availability.Aggregation{Now: now, Skipped: skipped}}
}

func (f *fakeLoader) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads, f.evals
}

func (f *fakeLoader) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fakeCache struct {
	mu      sync.Mutex
	payload []byte
	saves   int
}

func (c *fakeCache) SaveSnapshot(_ context.Context, payload []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = payload
	c.saves++
	return nil
}

func (c *fakeCache) LoadSnapshot(_ context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload, nil
}

type fakeBus struct {
	mu        sync.Mutex
	published []string
	handler   func(string)
}

func (b *fakeBus) PublishRefresh(_ context.Context, payload string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, payload)
	return nil
}

func (b *fakeBus) SubscribeRefresh(_ context.Context, handler func(string)) {
	b.mu.Lock()
	b.handler = handler
	b.mu.Unlock()
}

func (b *fakeBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

func (b *fakeBus) last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published[len(b.published)-1]
}

func notice(t *testing.T, origin, reason string) string {
	t.Helper()
	b, err := json.Marshal(refreshNotice{Origin: origin, Reason: reason})
	if err != nil {
		t.Fatalf("序列化广播失败: %v", err)
	}
	return string(b)
}

var day1 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newTestMonitor(loader *fakeLoader, opts Options) (*Monitor, *fakeClock) {
	clock := &fakeClock{now: day1}
	opts.Clock = clock.Now
	if opts.NowInterval == 0 {
		opts.NowInterval = time.Hour
		opts.RefreshInterval = time.Hour
	}
	return New(loader, opts, zap.NewNop()), clock
}

// waitLoads 等待 Load 被调用到指定次数
func waitLoads(t *testing.T, f *fakeLoader, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if loads, _ := f.counts(); loads >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("等待第 %d 次 Load 超时", n)
}

// ── Refresh ──

func TestMonitor_RefreshInstallsSnapshot(t *testing.T) {
	loader := &fakeLoader{}
	m, _ := newTestMonitor(loader, Options{})

	if m.Current() != nil {
		t.Fatal("首次刷新前不应有状态")
	}
	if err := m.Refresh(context.Background(), "manual"); err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}

	st := m.Current()
	if st == nil || st.Snapshot == nil {
		t.Fatal("刷新后应有快照")
	}
	if st.Generation != 1 || st.Stale() {
		t.Errorf("期望代号 1 且非过期，实际: gen=%d stale=%v", st.Generation, st.Stale())
	}
	if !st.Snapshot.Now.Equal(day1) {
		t.Errorf("快照参考时刻错误: %v", st.Snapshot.Now)
	}
}

func TestMonitor_FailureKeepsPreviousSnapshot(t *testing.T) {
	loader := &fakeLoader{}
	m, _ := newTestMonitor(loader, Options{})
	ctx := context.Background()

	if err := m.Refresh(ctx, "first"); err != nil {
		t.Fatalf("首次 Refresh 应成功: %v", err)
	}
	first := m.Current().Snapshot

	loader.setErr(errors.New("db down"))
	if err := m.Refresh(ctx, "second"); err == nil {
		t.Fatal("数据源失败时 Refresh 应返回错误")
	}
	st := m.Current()
	if st.Snapshot != first {
		t.Error("失败的刷新不应替换快照")
	}
	if !st.Stale() || st.FailedAt.IsZero() {
		t.Error("失败后应标记为过期并记录时间")
	}

	loader.setErr(nil)
	if err := m.Refresh(ctx, "third"); err != nil {
		t.Fatalf("恢复后 Refresh 应成功: %v", err)
	}
	if m.Current().Stale() {
		t.Error("成功刷新后应清除错误")
	}
}

func TestMonitor_FailureBeforeAnySuccess(t *testing.T) {
	loader := &fakeLoader{err: errors.New("db down")}
	m, _ := newTestMonitor(loader, Options{})

	_ = m.Refresh(context.Background(), "first")
	st := m.Current()
	if st == nil || st.Snapshot != nil || !st.Stale() {
		t.Fatalf("期望仅记录错误而无快照，实际: %+v", st)
	}
}

func TestMonitor_OlderRefreshDoesNotOverwriteNewer(t *testing.T) {
	gate := make(chan struct{})
	loader := &fakeLoader{gates: map[int]chan struct{}{0: gate}}
	m, _ := newTestMonitor(loader, Options{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- m.Refresh(ctx, "slow") }()
	waitLoads(t, loader, 1)

	if err := m.Refresh(ctx, "fast"); err != nil {
		t.Fatalf("后发刷新应成功: %v", err)
	}
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("先发刷新不应报错: %v", err)
	}

	st := m.Current()
	if st.Generation != 2 || st.Snapshot.Dataset.Rooms[0].RoomID != "r-1" {
		t.Errorf("快照应来自后发刷新，实际: gen=%d room=%s", st.Generation, st.Snapshot.Dataset.Rooms[0].RoomID)
	}
}

func TestMonitor_OlderFailureIgnoredAfterNewerSuccess(t *testing.T) {
	gate := make(chan struct{})
	loader := &fakeLoader{gates: map[int]chan struct{}{0: gate}}
	m, _ := newTestMonitor(loader, Options{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- m.Refresh(ctx, "slow") }()
	waitLoads(t, loader, 1)

	if err := m.Refresh(ctx, "fast"); err != nil {
		t.Fatalf("后发刷新应成功: %v", err)
	}
	loader.setErr(errors.New("timeout"))
	close(gate)
	<-done

	if m.Current().Stale() {
		t.Error("更早的失败不应把较新的成功快照标记为过期")
	}
}

func TestMonitor_ResultAfterStopIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	loader := &fakeLoader{gates: map[int]chan struct{}{0: gate}}
	m, _ := newTestMonitor(loader, Options{})

	done := make(chan error, 1)
	go func() { done <- m.Refresh(context.Background(), "in-flight") }()
	waitLoads(t, loader, 1)

	m.Stop()
	close(gate)

	if err := <-done; !errors.Is(err, ErrStopped) {
		t.Errorf("期望 ErrStopped，实际: %v", err)
	}
	if m.Current() != nil {
		t.Error("停止后完成的刷新不应发布")
	}
	if err := m.Refresh(context.Background(), "late"); !errors.Is(err, ErrStopped) {
		t.Errorf("停止后 Refresh 期望 ErrStopped，实际: %v", err)
	}
}

// ── Tick ──

func TestMonitor_TickReevaluatesWithoutLoading(t *testing.T) {
	loader := &fakeLoader{}
	m, clock := newTestMonitor(loader, Options{})
	ctx := context.Background()

	if err := m.Refresh(ctx, "first"); err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	dataset := m.Current().Snapshot.Dataset

	later := day1.Add(90 * time.Minute)
	clock.Set(later)
	m.Tick(ctx)

	loads, evals := loader.counts()
	if loads != 1 {
		t.Errorf("Tick 不应访问数据源，Load 次数: %d", loads)
	}
	if evals != 2 {
		t.Errorf("Tick 应重新计算一次，Evaluate 次数: %d", evals)
	}
	st := m.Current()
	if !st.Snapshot.Now.Equal(later) || st.Snapshot.Dataset != dataset {
		t.Error("Tick 应推进参考时刻并沿用原数据")
	}
	if st.Generation != 1 {
		t.Errorf("Tick 不应改变代号: %d", st.Generation)
	}
}

func TestMonitor_TickAcrossDayTriggersRefresh(t *testing.T) {
	loader := &fakeLoader{}
	m, clock := newTestMonitor(loader, Options{})
	ctx := context.Background()

	_ = m.Refresh(ctx, "first")
	clock.Set(day1.Add(24 * time.Hour))
	m.Tick(ctx)

	if loads, _ := loader.counts(); loads != 2 {
		t.Errorf("跨日应重新读取数据，Load 次数: %d", loads)
	}
	if got := m.Current().Snapshot.Dataset.Date; got.Day() != 2 {
		t.Errorf("数据日期应为 1 月 2 日，实际: %v", got)
	}
}

func TestMonitor_TickWithoutSnapshotIsNoop(t *testing.T) {
	loader := &fakeLoader{}
	m, _ := newTestMonitor(loader, Options{})

	m.Tick(context.Background())
	if loads, evals := loader.counts(); loads != 0 || evals != 0 {
		t.Errorf("无快照时 Tick 不应做任何事: loads=%d evals=%d", loads, evals)
	}
}

// ── 缓存与广播 ──

func TestMonitor_SavesAndWarmsFromCache(t *testing.T) {
	cache := &fakeCache{}
	loader := &fakeLoader{}
	m, _ := newTestMonitor(loader, Options{Cache: cache})
	if err := m.Refresh(context.Background(), "first"); err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if cache.saves != 1 {
		t.Fatalf("成功刷新后应写缓存，实际写入次数: %d", cache.saves)
	}

	// 新实例启动：数据源不可用，但缓存中有当天数据
	failing := &fakeLoader{err: errors.New("db down")}
	m2, _ := newTestMonitor(failing, Options{Cache: cache})
	m2.Start(context.Background())
	defer m2.Stop()

	st := m2.Current()
	if st == nil || st.Snapshot == nil {
		t.Fatal("应从缓存恢复快照")
	}
	if st.Snapshot.Dataset.Rooms[0].RoomID != "r-0" {
		t.Errorf("恢复的数据错误: %+v", st.Snapshot.Dataset.Rooms)
	}
	if !st.Stale() {
		t.Error("启动刷新失败后应标记为过期")
	}
}

func TestMonitor_IgnoresCacheFromAnotherDay(t *testing.T) {
	old := service.RoomDataset{Date: day1.Add(-24 * time.Hour), Rooms: []model.Room{{RoomID: "old"}}}
	payload, _ := json.Marshal(old)
	cache := &fakeCache{payload: payload}

	loader := &fakeLoader{err: errors.New("db down")}
	m, _ := newTestMonitor(loader, Options{Cache: cache})
	m.Start(context.Background())
	defer m.Stop()

	if st := m.Current(); st != nil && st.Snapshot != nil {
		t.Error("不应使用前一天的缓存数据")
	}
}

func TestMonitor_BroadcastOnlyForExplicitRefresh(t *testing.T) {
	bus := &fakeBus{}
	loader := &fakeLoader{}
	m, _ := newTestMonitor(loader, Options{Bus: bus, InstanceID: "node-a"})
	m.Start(context.Background())
	defer m.Stop()

	if bus.count() != 0 {
		t.Errorf("启动刷新不应广播，实际: %d", bus.count())
	}
	if err := m.Refresh(context.Background(), "booking:b-1"); err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if bus.count() != 1 {
		t.Fatalf("预约触发的刷新应广播一次，实际: %d", bus.count())
	}
	var n refreshNotice
	if err := json.Unmarshal([]byte(bus.last()), &n); err != nil {
		t.Fatalf("广播应为 JSON: %v", err)
	}
	if n.Origin != "node-a" || n.Reason != "booking:b-1" {
		t.Errorf("广播内容错误: %+v", n)
	}

	// 收到其他实例的广播只刷新本地，不再转发
	bus.handler(notice(t, "node-b", "booking:b-2"))
	if bus.count() != 1 {
		t.Errorf("远程刷新不应再次广播，实际: %d", bus.count())
	}
	if loads, _ := loader.counts(); loads != 3 {
		t.Errorf("期望 3 次 Load（启动、本地、远程），实际: %d", loads)
	}
}

func TestMonitor_IgnoresOwnBroadcast(t *testing.T) {
	bus := &fakeBus{}
	loader := &fakeLoader{}
	m, _ := newTestMonitor(loader, Options{Bus: bus, InstanceID: "node-a"})
	m.Start(context.Background())
	defer m.Stop()

	if err := m.Refresh(context.Background(), "booking:b-1"); err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	// Redis 会把消息回送给发布者自己
	bus.handler(bus.last())
	bus.handler("not json")

	if loads, _ := loader.counts(); loads != 2 {
		t.Errorf("自身广播与无法解析的消息不应触发刷新，期望 2 次 Load，实际: %d", loads)
	}
	if st := m.Current(); st.Generation != 2 {
		t.Errorf("期望代号 2，实际: %d", st.Generation)
	}
}

func TestMonitor_InstanceIDGenerated(t *testing.T) {
	a := New(&fakeLoader{}, Options{}, zap.NewNop())
	b := New(&fakeLoader{}, Options{}, zap.NewNop())
	if a.opts.InstanceID == "" || a.opts.InstanceID == b.opts.InstanceID {
		t.Errorf("每个实例应有独立的 ID: %q %q", a.opts.InstanceID, b.opts.InstanceID)
	}
}

func TestMonitor_SkippedRecordsWarnOnlyOnRefresh(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	clock := &fakeClock{now: day1}
	loader := &fakeLoader{skipped: []availability.Skipped{
		{Kind: availability.KindLecture, RecordID: "l-bad", Err: errors.New("bad clock")},
	}}
	m := New(loader, Options{NowInterval: time.Hour, RefreshInterval: time.Hour, Clock: clock.Now}, zap.New(core))
	m.Start(context.Background())
	defer m.Stop()

	for i := 1; i <= 5; i++ {
		clock.Set(day1.Add(time.Duration(i) * time.Minute))
		m.Tick(context.Background())
	}
	warns := logs.FilterMessage("排程记录时间无法解析，已跳过")
	if warns.Len() != 1 {
		t.Fatalf("启动刷新后期望 1 条 Warn，Tick 不应追加，实际: %d", warns.Len())
	}

	if err := m.Refresh(context.Background(), "manual"); err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if n := logs.FilterMessage("排程记录时间无法解析，已跳过").Len(); n != 2 {
		t.Errorf("完整刷新后期望 2 条 Warn，实际: %d", n)
	}
}
