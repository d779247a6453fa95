package requestdata

import (
	"context"
)

type contextKey struct{}

var requestDataKey contextKey

// RequestData is the resolved caller identity carried on the request context.
// UserID is a string because local-token subjects are not guaranteed to be
// UUIDs, unlike provider-issued identities.
type RequestData struct {
	TokenString string
	UserID      string
	Email       string
	AuthType    string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}
