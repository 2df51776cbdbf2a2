package rabbitmq

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Очередь и ключ маршрутизации для чеков об оплате тарифа.
const (
	ReceiptQueue      = "notification.receipt"
	ReceiptRoutingKey = "receipt"
)

func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ReceiptQueue, RoutingKey: ReceiptRoutingKey},
	}
}
