package models

import "time"

// ChatMessage logs one chat turn: the visitor's text and the canned reply.
type ChatMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	Message   string    `json:"message" gorm:"not null"`
	Response  string    `json:"response" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// ChatMessageRequest is the POST /api/chat/message payload.
type ChatMessageRequest struct {
	Message string `json:"message"`
	UserID  *uint  `json:"userId"`
}

// ChatMessageResponse mirrors the stored turn plus the server timestamp.
type ChatMessageResponse struct {
	ID        uint   `json:"id"`
	Message   string `json:"message"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// ChatHistoryResponse wraps a newest-first page of turns.
type ChatHistoryResponse struct {
	Messages []ChatMessage `json:"messages"`
}
