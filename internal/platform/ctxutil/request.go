package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData is populated by the auth middleware and extended by the
// tenant middleware once the caller's shop is resolved.
type RequestData struct {
	TokenString  string
	RefreshToken string
	SessionID    uuid.UUID
	UserID       uuid.UUID
	Role         string
	ShopID       uuid.UUID
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
