package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/learnpet/learnpet/config"
	"github.com/learnpet/learnpet/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const rankingsTTL = 30 * time.Second

// LeaderboardCache 缓存整份班级排行榜的 JSON 快照。
// 积分变动时失效，下一次读重建，短 TTL 兜底失效丢失的情况。
type LeaderboardCache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewLeaderboardCache(cfg config.RedisConfig, logger *logrus.Logger) (*LeaderboardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &LeaderboardCache{client: client, logger: logger}, nil
}

func rankingsKey(classID uint) string {
	return fmt.Sprintf("class:%d:rankings", classID)
}

// GetCachedTop 缓存未命中时返回 (nil, nil)
func (c *LeaderboardCache) GetCachedTop(ctx context.Context, classID uint) ([]*repository.RankingRow, error) {
	data, err := c.client.Get(ctx, rankingsKey(classID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rows []*repository.RankingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *LeaderboardCache) SetCachedTop(ctx context.Context, classID uint, rows []*repository.RankingRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, rankingsKey(classID), data, rankingsTTL).Err()
}

// Invalidate 积分发生变化后调用，失败只记日志（TTL 会兜底）
func (c *LeaderboardCache) Invalidate(ctx context.Context, classID uint) {
	if err := c.client.Del(ctx, rankingsKey(classID)).Err(); err != nil {
		c.logger.Warnf("清除班级 %d 排行榜缓存失败: %v", classID, err)
	}
}

func (c *LeaderboardCache) Close() error {
	return c.client.Close()
}
