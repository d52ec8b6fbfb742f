package service

import "context"

// EventPublisher 领域事件发布，kafka 未配置时为 nil。
// 发布是尽力而为的，实现不返回错误。
type EventPublisher interface {
	Publish(ctx context.Context, key, eventType string, payload map[string]interface{})
}
