package rabbitmq

// QueueConfig связывает очередь с ключом маршрутизации в обменнике событий.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Ключи маршрутизации событий жизненного цикла конспектов.
const (
	RoutingKeyPublished = "note.published"
	RoutingKeyRejected  = "note.rejected"
)

// GetNoteEventQueues возвращает очереди воркера уведомлений:
// по одной на каждый вид решения проверяющего.
func GetNoteEventQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notes.published", RoutingKey: RoutingKeyPublished},
		{QueueName: "notes.rejected", RoutingKey: RoutingKeyRejected},
	}
}
