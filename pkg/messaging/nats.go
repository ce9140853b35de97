package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// StreamName 条目变更事件流
const StreamName = "DIARY_EVENTS"

// Publisher 条目变更事件发布器
// 只负责发布，本服务内没有消费者，事件流供外部订阅方使用
type Publisher struct {
	conn      *nats.Conn
	jetStream jetstream.JetStream
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewPublisher 创建事件发布器
func NewPublisher(natsURL, clientID string) (*Publisher, error) {
	// 连接NATS
	nc, err := nats.Connect(natsURL,
		nats.Name(clientID),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // 无限重连
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS连接断开: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Println("NATS重新连接成功")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败: %w", err)
	}

	// 创建JetStream上下文
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("创建JetStream失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	publisher := &Publisher{
		conn:      nc,
		jetStream: js,
		ctx:       ctx,
		cancel:    cancel,
	}

	// 初始化事件流
	if err := publisher.setupStream(); err != nil {
		log.Printf("警告: 设置事件流失败: %v", err)
	}

	return publisher, nil
}

// setupStream 设置条目变更事件流
func (p *Publisher) setupStream() error {
	_, err := p.jetStream.CreateOrUpdateStream(p.ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{"diary.*", "watchlist.*", "stats.*"},
		Description: "日记和观察列表变更事件流",
		Retention:   jetstream.LimitsPolicy,
		MaxMsgs:     50000,
		MaxBytes:    50 * 1024 * 1024,   // 50MB
		MaxAge:      7 * 24 * time.Hour, // 保留7天
	})
	if err != nil {
		return fmt.Errorf("创建/更新事件流失败: %w", err)
	}

	log.Printf("事件流 %s 设置成功", StreamName)
	return nil
}

// Publish 发布消息到指定主题
func (p *Publisher) Publish(subject string, data interface{}) error {
	var payload []byte
	var err error

	switch v := data.(type) {
	case []byte:
		payload = v
	case string:
		payload = []byte(v)
	default:
		payload, err = json.Marshal(data)
		if err != nil {
			return fmt.Errorf("序列化数据失败: %w", err)
		}
	}

	_, err = p.jetStream.Publish(p.ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("发布消息到 %s 失败: %w", subject, err)
	}

	return nil
}

// IsConnected 检查连接状态
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close 关闭连接
func (p *Publisher) Close() error {
	p.cancel()

	if p.conn != nil {
		p.conn.Close()
	}

	log.Println("NATS连接已关闭")
	return nil
}
