package models

// All lists every persisted model, in creation order.
func All() []interface{} {
	return []interface{}{&User{}, &ChatMessage{}, &Recording{}, &Session{}}
}
