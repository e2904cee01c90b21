package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entities named in change events.
const (
	EntityInvestor    = "investor"
	EntityInvestment  = "investment"
	EntityPortfolio   = "portfolio"
	EntitySubMarketor = "sub_marketor"
	EntityAdminBank   = "admin_bank"
	EntityProfile     = "profile"
)

// Actions named in change events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent announces that a record changed. It carries no payload; consumers
// reload whatever they need from the store.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeEvent(entity, action, id string) *ChangeEvent {
	return &ChangeEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON decodes a change event and rejects events without an
// entity or action.
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Entity == "" || e.Action == "" {
		return nil, fmt.Errorf("change event missing entity or action")
	}
	return &e, nil
}
