package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/config"
	pkgerrors "github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/errors"
)

// Client Redis 客户端封装
// 用于房间状态快照缓存、预约提交锁、提交限流与刷新广播
type Client struct {
	rdb    goredis.UniversalClient
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// NewFromUniversal 包装已有客户端（测试或集群场景）
func NewFromUniversal(rdb goredis.UniversalClient, logger *zap.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// ── 房间状态快照 ──

const snapshotKey = "room:status:snapshot"

// SaveSnapshot 保存序列化后的房间状态快照
func (c *Client) SaveSnapshot(ctx context.Context, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, snapshotKey, payload, ttl).Err()
}

// LoadSnapshot 读取快照；不存在时返回 (nil, nil)
func (c *Client) LoadSnapshot(ctx context.Context) ([]byte, error) {
	data, err := c.rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	return data, err
}

// ── 房间提交锁 ──

const lockPrefix = "room:lock:"

// 仅当 token 匹配时删除，避免误删他人续上的锁
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// AcquireRoomLock 以 SET NX PX 获取房间锁，返回持有 token；已被占用时返回 ErrRoomLocked
func (c *Client) AcquireRoomLock(ctx context.Context, roomID string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, lockPrefix+roomID, token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", pkgerrors.ErrRoomLocked
	}
	return token, nil
}

// ReleaseRoomLock 释放房间锁
func (c *Client) ReleaseRoomLock(ctx context.Context, roomID, token string) error {
	return releaseScript.Run(ctx, c.rdb, []string{lockPrefix + roomID}, token).Err()
}

// ── 提交限流（滑动窗口） ──

const rateLimitPrefix = "ratelimit:"

// CheckRateLimit 记录一次请求并判断窗口内是否超过 limit；返回 (允许, 窗口内计数)
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, error) {
	now := time.Now()
	k := rateLimitPrefix + key
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()[:8]

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "0", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
	pipe.ZAdd(ctx, k, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, k)
	pipe.PExpire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	n := count.Val()
	return n <= int64(limit), n, nil
}

// ── 刷新广播 ──

const refreshChannel = "room:status:refresh"

// PublishRefresh 通知其他实例重新计算房间状态；发布者自身同样会收到
func (c *Client) PublishRefresh(ctx context.Context, payload string) error {
	return c.rdb.Publish(ctx, refreshChannel, payload).Err()
}

// SubscribeRefresh 订阅刷新广播，ctx 取消时关闭订阅；handler 在订阅协程内串行执行
func (c *Client) SubscribeRefresh(ctx context.Context, handler func(payload string)) {
	sub := c.rdb.Subscribe(ctx, refreshChannel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler(msg.Payload)
			}
		}
	}()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
