// Package monitor 周期性地重新计算房间状态并持有最近一次成功的快照。
//
// 两个互相独立的周期任务：
//   - now 任务（默认 1 分钟）只推进参考时刻，基于已读数据重新分类，不访问存储
//   - refresh 任务（默认 5 分钟）重新读取全部数据源并计算
//
// 刷新只读且无副作用，可以重叠执行：每次刷新领取递增的代号，
// 旧代号的结果不会覆盖新代号；失败的刷新保留上一份快照并记录错误；
// Stop 之后完成的刷新结果直接丢弃。
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/service"
)

var (
	ErrStopped = errors.New("房间状态监控已停止")
)

// Loader 读取与计算（由 service.RoomStatusService 实现）
type Loader interface {
	Load(ctx context.Context, now time.Time) (*service.RoomDataset, error)
	Evaluate(ds *service.RoomDataset, now time.Time) *service.RoomStatusSnapshot
}

// SnapshotCache 跨实例/重启共享的数据缓存（Redis 实现）
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, payload []byte, ttl time.Duration) error
	LoadSnapshot(ctx context.Context) ([]byte, error)
}

// Broadcaster 刷新广播（Redis pub/sub 实现）；订阅者也会收到自己发布的消息
type Broadcaster interface {
	PublishRefresh(ctx context.Context, payload string) error
	SubscribeRefresh(ctx context.Context, handler func(payload string))
}

// Options 监控配置；Cache 与 Bus 可为空，InstanceID 为空时随机生成
type Options struct {
	NowInterval     time.Duration
	RefreshInterval time.Duration
	SnapshotTTL     time.Duration
	Cache           SnapshotCache
	Bus             Broadcaster
	InstanceID      string
	Clock           func() time.Time
}

// refreshNotice 刷新广播的消息体
type refreshNotice struct {
	Origin string `json:"origin"`
	Reason string `json:"reason"`
}

// State 对外发布的只读状态
type State struct {
	Snapshot   *service.RoomStatusSnapshot
	Generation uint64
	LastError  error
	FailedAt   time.Time
}

// Stale 最近一次刷新失败，快照来自更早的成功刷新
func (s *State) Stale() bool { return s.LastError != nil }

// Monitor 房间状态监控器
type Monitor struct {
	loader Loader
	opts   Options
	logger *zap.Logger
	sched  *Scheduler

	state   atomic.Pointer[State]
	issued  atomic.Uint64
	stopped atomic.Bool

	lifeCtx context.Context
	cancel  context.CancelFunc
}

// New 创建 Monitor
func New(loader Loader, opts Options, logger *zap.Logger) *Monitor {
	if opts.NowInterval <= 0 {
		opts.NowInterval = time.Minute
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 5 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.InstanceID == "" {
		opts.InstanceID = uuid.NewString()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		loader:  loader,
		opts:    opts,
		logger:  logger,
		sched:   NewScheduler(logger),
		lifeCtx: ctx,
		cancel:  cancel,
	}
}

// Start 预热快照并启动两个周期任务
func (m *Monitor) Start(ctx context.Context) {
	m.warmFromCache(ctx)

	if err := m.refresh(ctx, "startup", false); err != nil {
		m.logger.Warn("启动时刷新房间状态失败，将在下个周期重试", zap.Error(err))
	}

	m.sched.Every("now", m.opts.NowInterval, m.Tick)
	m.sched.Every("refresh", m.opts.RefreshInterval, func(ctx context.Context) {
		if err := m.refresh(ctx, "periodic", false); err != nil {
			m.logger.Warn("周期刷新房间状态失败，保留上一份快照", zap.Error(err))
		}
	})

	if m.opts.Bus != nil {
		m.opts.Bus.SubscribeRefresh(m.lifeCtx, m.onNotice)
	}

	m.sched.Start(m.lifeCtx)
	m.logger.Info("房间状态监控已启动",
		zap.Duration("now_interval", m.opts.NowInterval),
		zap.Duration("refresh_interval", m.opts.RefreshInterval),
	)
}

// onNotice 处理刷新广播；本实例发出的消息已在本地刷新过，直接忽略
func (m *Monitor) onNotice(payload string) {
	var n refreshNotice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		m.logger.Warn("无法解析刷新广播", zap.String("payload", payload), zap.Error(err))
		return
	}
	if n.Origin == m.opts.InstanceID {
		return
	}
	if err := m.refresh(m.lifeCtx, "remote:"+n.Reason, false); err != nil {
		m.logger.Warn("响应刷新广播失败",
			zap.String("origin", n.Origin),
			zap.String("reason", n.Reason),
			zap.Error(err),
		)
	}
}

// Stop 停止全部周期任务；此后完成的刷新结果被丢弃
func (m *Monitor) Stop() {
	if !m.stopped.CompareAndSwap(false, true) {
		return
	}
	m.cancel()
	m.sched.Stop()
	m.logger.Info("房间状态监控已停止")
}

// Current 当前状态；从未成功刷新过时 Snapshot 为 nil
func (m *Monitor) Current() *State {
	return m.state.Load()
}

// Refresh 立即完整刷新一次，并通知其他实例（预约提交后调用）
func (m *Monitor) Refresh(ctx context.Context, reason string) error {
	return m.refresh(ctx, reason, true)
}

// Tick 推进参考时刻并基于已读数据重新分类；跨日时改为完整刷新
func (m *Monitor) Tick(ctx context.Context) {
	if m.stopped.Load() {
		return
	}
	now := m.opts.Clock()

	for {
		cur := m.state.Load()
		if cur == nil || cur.Snapshot == nil {
			return
		}
		ds := cur.Snapshot.Dataset
		if !sameDay(ds.Date, now) {
			// 课表星期与考试日期都已变化，旧数据不再适用
			if err := m.refresh(ctx, "day-rollover", false); err != nil {
				m.logger.Warn("跨日刷新房间状态失败", zap.Error(err))
			}
			return
		}

		next := *cur
		next.Snapshot = m.loader.Evaluate(ds, now)
		if m.state.CompareAndSwap(cur, &next) {
			return
		}
		// 期间有新的刷新落地，基于新数据重算
	}
}

func (m *Monitor) refresh(ctx context.Context, reason string, broadcast bool) error {
	if m.stopped.Load() {
		return ErrStopped
	}
	gen := m.issued.Add(1)
	now := m.opts.Clock()

	ds, err := m.loader.Load(ctx, now)
	if m.stopped.Load() {
		m.logger.Debug("监控已停止，丢弃刷新结果", zap.Uint64("generation", gen))
		return ErrStopped
	}
	if err != nil {
		m.recordFailure(gen, err)
		return err
	}

	snap := m.loader.Evaluate(ds, now)
	if !m.install(gen, snap) {
		m.logger.Debug("已有更新的快照，丢弃本次结果", zap.Uint64("generation", gen), zap.String("reason", reason))
		return nil
	}

	m.logger.Debug("房间状态已刷新",
		zap.Uint64("generation", gen),
		zap.String("reason", reason),
		zap.Int("rooms", len(snap.Rooms)),
		zap.Int("skipped", len(snap.Aggregation.Skipped)),
	)
	service.LogSkipped(m.logger, zapcore.WarnLevel, snap.Aggregation.Skipped)

	m.saveToCache(ctx, ds)
	if broadcast && m.opts.Bus != nil {
		m.publish(ctx, reason)
	}
	return nil
}

func (m *Monitor) publish(ctx context.Context, reason string) {
	payload, err := json.Marshal(refreshNotice{Origin: m.opts.InstanceID, Reason: reason})
	if err != nil {
		m.logger.Warn("序列化刷新广播失败", zap.Error(err))
		return
	}
	if err := m.opts.Bus.PublishRefresh(ctx, string(payload)); err != nil {
		m.logger.Warn("发布刷新广播失败", zap.Error(err))
	}
}

// install 仅当没有更新代号的快照时发布
func (m *Monitor) install(gen uint64, snap *service.RoomStatusSnapshot) bool {
	next := &State{Snapshot: snap, Generation: gen}
	for {
		cur := m.state.Load()
		if cur != nil && cur.Generation > gen {
			return false
		}
		if m.state.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// recordFailure 保留上一份快照，只记录错误；更新代号已成功时忽略
func (m *Monitor) recordFailure(gen uint64, err error) {
	for {
		cur := m.state.Load()
		if cur != nil && cur.Generation > gen {
			return
		}
		next := &State{}
		if cur != nil {
			*next = *cur
		}
		next.LastError = err
		next.FailedAt = m.opts.Clock()
		if m.state.CompareAndSwap(cur, next) {
			return
		}
	}
}

func (m *Monitor) saveToCache(ctx context.Context, ds *service.RoomDataset) {
	if m.opts.Cache == nil {
		return
	}
	payload, err := json.Marshal(ds)
	if err != nil {
		m.logger.Warn("序列化房间数据失败", zap.Error(err))
		return
	}
	if err := m.opts.Cache.SaveSnapshot(ctx, payload, m.opts.SnapshotTTL); err != nil {
		m.logger.Warn("写入房间状态缓存失败", zap.Error(err))
	}
}

// warmFromCache 用缓存中同一天的数据先行提供快照（代号 0，任何刷新都会覆盖）
func (m *Monitor) warmFromCache(ctx context.Context) {
	if m.opts.Cache == nil {
		return
	}
	payload, err := m.opts.Cache.LoadSnapshot(ctx)
	if err != nil || payload == nil {
		if err != nil {
			m.logger.Warn("读取房间状态缓存失败", zap.Error(err))
		}
		return
	}
	var ds service.RoomDataset
	if err := json.Unmarshal(payload, &ds); err != nil {
		m.logger.Warn("解析房间状态缓存失败", zap.Error(err))
		return
	}
	now := m.opts.Clock()
	if !sameDay(ds.Date, now) {
		return
	}
	m.install(0, m.loader.Evaluate(&ds, now))
	m.logger.Info("已从缓存恢复房间状态", zap.Time("fetched_at", ds.FetchedAt))
}

// sameDay 以数据日期所在时区比较
func sameDay(day, now time.Time) bool {
	y, mo, d := day.Date()
	ny, nmo, nd := now.In(day.Location()).Date()
	return y == ny && mo == nmo && d == nd
}
