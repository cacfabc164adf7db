package rabbitmq

// Exchange — direct-обменник уведомлений о задачах.
const Exchange = "accountable.notifications"

// Ключи маршрутизации событий о задачах.
const (
	RoutingTaskUpcoming = "task.upcoming"
	RoutingTaskMissed   = "task.missed"
)

// Имена очередей, которые читает отправщик.
const (
	QueueTaskUpcoming = "notification.task_upcoming"
	QueueTaskMissed   = "notification.task_missed"
)

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// TaskQueues возвращает очереди уведомлений о задачах.
func TaskQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueTaskUpcoming, RoutingKey: RoutingTaskUpcoming},
		{QueueName: QueueTaskMissed, RoutingKey: RoutingTaskMissed},
	}
}
