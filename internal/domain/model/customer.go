package model

import (
	"strings"
	"time"
)

// Profile field names used in tool results and targeted prompts.
const (
	FieldFullName = "full_name"
	FieldPhone    = "phone"
	FieldAddress  = "address"
)

// CustomerProfile is the persisted delivery identity of one customer,
// keyed by Telegram user id. A bare row (only UserID set) is created the
// first time the consultant asks about a customer.
type CustomerProfile struct {
	UserID    int64     `json:"user_id"`
	FullName  string    `json:"full_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCustomerProfile(userID int64) *CustomerProfile {
	now := time.Now()
	return &CustomerProfile{UserID: userID, CreatedAt: now, UpdatedAt: now}
}

// MissingFields lists required fields still empty, in the order they are
// asked for: name, phone, then address when delivery is requested.
func (p *CustomerProfile) MissingFields(delivery bool) []string {
	var missing []string
	if strings.TrimSpace(p.FullName) == "" {
		missing = append(missing, FieldFullName)
	}
	if strings.TrimSpace(p.Phone) == "" {
		missing = append(missing, FieldPhone)
	}
	if delivery && strings.TrimSpace(p.Address) == "" {
		missing = append(missing, FieldAddress)
	}
	return missing
}

// IsComplete reports whether all fields required for the given delivery
// mode are present.
func (p *CustomerProfile) IsComplete(delivery bool) bool {
	return len(p.MissingFields(delivery)) == 0
}
