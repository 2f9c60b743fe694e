package kafka

// ParseError представляет ошибку парсинга события.
// Consumer не ретраит такие ошибки: битое сообщение сразу уходит в DLQ.
type ParseError struct {
	Field   string
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}
