package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/learnpet/learnpet/config"
	"github.com/learnpet/learnpet/pkg/metrics"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// 事件类型
const (
	EventTaskSubmitted = "task.submitted"
	EventPointsAwarded = "points.awarded"
	EventPetAdopted    = "pet.adopted"
	EventPetFed        = "pet.fed"
)

// Event 统一的事件信封，Payload 为各事件自己的字段
type Event struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

// Producer 尽力而为的事件发布：发布失败只记日志和指标，不影响请求
type Producer struct {
	writer *kafka.Writer
	topic  string
	logger *logrus.Logger
}

func NewProducer(cfg config.KafkaConfig, logger *logrus.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(cfg.Brokers, ",")...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer, topic: cfg.Topic, logger: logger}
}

// Publish key 用于分区，同一学生的事件落同一分区保持有序
func (p *Producer) Publish(ctx context.Context, key, eventType string, payload map[string]interface{}) {
	event := Event{
		Type:       eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warnf("序列化事件 %s 失败: %v", eventType, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	})
	if err != nil {
		metrics.KafkaMessagesTotal.WithLabelValues("learnpet", p.topic, "error").Inc()
		p.logger.Warnf("发布事件 %s 失败: %v", eventType, err)
		return
	}
	metrics.KafkaMessagesTotal.WithLabelValues("learnpet", p.topic, "success").Inc()
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
