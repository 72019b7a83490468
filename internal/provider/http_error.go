package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPStatusError 表示上游返回了非 2xx 的 HTTP 状态码。
// Message 取自上游错误体 {"error":{"message":...}}（可能为空）。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// StatusCode 从 err 中提取上游 HTTP 状态码；不是 HTTPStatusError 时返回 0。
func StatusCode(err error) int {
	var e *HTTPStatusError
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// IsAuth 判断是否为凭据问题（401/403），上层据此给出更可操作的日志。
func IsAuth(err error) bool {
	switch StatusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	default:
		return false
	}
}
