package model

import "time"

// Task is the persisted unit of the task list.
//
// ID is allocated by the store on insert and is never reused, so ID order is
// insertion order.
type Task struct {
	ID        int64     `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Completed bool      `json:"completed" yaml:"completed"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Toggled returns a copy of t with Completed flipped.
func (t Task) Toggled() Task {
	t.Completed = !t.Completed
	return t
}

// Event is one row of the store's append-only mutation log.
type Event struct {
	ID      string    `json:"id" yaml:"id"`
	TS      time.Time `json:"ts" yaml:"ts"`
	Type    string    `json:"type" yaml:"type"`
	TaskID  int64     `json:"taskId" yaml:"taskId"`
	Payload any       `json:"payload" yaml:"payload"`
}

const (
	EventTaskCreate = "task.create"
	EventTaskUpdate = "task.update"
	EventTaskDelete = "task.delete"
)
