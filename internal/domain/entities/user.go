package entities

import "time"

// User represents a bot user. Created on first contact, never deleted;
// only the IsActive flag is toggled afterwards.
type User struct {
	ID        int64 // Telegram user ID
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	IsActive  bool
	CreatedAt time.Time
}

func NewUser(id, chatID int64, username, firstName, lastName string) *User {
	return &User{
		ID:        id,
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}
