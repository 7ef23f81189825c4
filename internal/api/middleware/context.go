package middleware

import "context"

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	parishIDKey  contextKey = "parish_id"
	requestIDKey contextKey = "request_id"
)

// GetUserID возвращает ID пользователя, установленный Auth
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// GetParishID возвращает ID прихода администратора из токена
func GetParishID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(parishIDKey).(int64)
	return id, ok && id > 0
}

// GetRequestID возвращает ID запроса, установленный RequestID
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithIdentity кладет пользователя и приход в контекст
func WithIdentity(ctx context.Context, userID int64, parishID *int64) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	if parishID != nil {
		ctx = context.WithValue(ctx, parishIDKey, *parishID)
	}
	return ctx
}
