package store

import (
	"context"
	"fmt"
	"time"
)

// Message is an incoming free-text message.
type Message struct {
	ID        int64     `json:"message_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"user_username"`
	ChatTitle string    `json:"chat_title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Response is a generated reply to a message.
type Response struct {
	ID        int64     `json:"response_id"`
	MessageID int64     `json:"message_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageStore persists messages and their generated responses.
type MessageStore struct {
	db *DB
}

// NewMessageStore creates a MessageStore.
func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db}
}

// Add inserts a message and returns its id.
func (s *MessageStore) Add(ctx context.Context, m *Message) (int64, error) {
	var id int64
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO messages (user_id, user_username, chat_title, text)
		VALUES ($1, $2, $3, $4)
		RETURNING message_id
	`, m.UserID, m.Username, m.ChatTitle, m.Text).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add message: %w", err)
	}
	return id, nil
}

// Get fetches a message by id.
func (s *MessageStore) Get(ctx context.Context, id int64) (*Message, error) {
	m := &Message{}
	err := s.db.Pool.QueryRow(ctx, `
		SELECT message_id, user_id, user_username, chat_title, text, created_at
		FROM messages WHERE message_id = $1
	`, id).Scan(&m.ID, &m.UserID, &m.Username, &m.ChatTitle, &m.Text, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get message %d: %w", id, err)
	}
	return m, nil
}

// AddResponse inserts a generated reply for a message and returns its id.
func (s *MessageStore) AddResponse(ctx context.Context, messageID int64, text string) (int64, error) {
	var id int64
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO responses (message_id, text)
		VALUES ($1, $2)
		RETURNING response_id
	`, messageID, text).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add response for message %d: %w", messageID, err)
	}
	return id, nil
}
