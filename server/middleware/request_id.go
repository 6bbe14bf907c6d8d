package middleware

import "context"

// RequestIDKey 컨텍스트에서 request ID를 찾는 키입니다.
type RequestIDKey struct{}

// GetRequestID 컨텍스트에서 request ID를 꺼냅니다.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	reqID, ok := ctx.Value(RequestIDKey{}).(string)
	if !ok {
		return ""
	}
	return reqID
}

// SetRequestID 컨텍스트에 request ID를 넣습니다.
func SetRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, reqID)
}
