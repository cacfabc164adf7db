package models

import "time"

// TaskStatus — статус задачи подотчётности.
type TaskStatus string

const (
	// TaskPending — задача ожидает проверки.
	TaskPending TaskStatus = "pending"
	// TaskVerified — оператор подтвердил выполнение.
	TaskVerified TaskStatus = "verified"
	// TaskMissed — срок истёк без подтверждения.
	TaskMissed TaskStatus = "missed"
)

// Task — задача пользователя с запланированным звонком.
// EndAt может быть nil — тогда дедлайн считается от ScheduledAt.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	Status      TaskStatus `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	RemindedAt  *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Deadline возвращает момент, после которого непроверенная задача считается пропущенной.
func (t Task) Deadline(grace time.Duration) time.Time {
	if t.EndAt != nil {
		return *t.EndAt
	}
	return t.ScheduledAt.Add(grace)
}

// DummyTask используется для приёма данных из JSON-запроса до парсинга дат.
type DummyTask struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
	ScheduledAt string `json:"scheduled_at" validate:"required"`
	EndAt       string `json:"end_at,omitempty"`
}

// TaskOverview — строка списка задач для оператора.
type TaskOverview struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      TaskStatus `json:"status"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	OwnerID     string     `json:"owner_id"`
	OwnerEmail  string     `json:"owner_email"`
	OwnerCalls  int        `json:"owner_calls"`
}

// TaskNotice — сообщение о задаче, публикуемое планировщиком в очередь уведомлений.
type TaskNotice struct {
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	Email       string    `json:"email"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Deadline    time.Time `json:"deadline"`
}
