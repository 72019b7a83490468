package httpx

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultRetryMax = 2

	// DefaultUserAgent 标识本服务；Admin API 的请求日志可据此定位来源。
	DefaultUserAgent = "cldfolders/1 (+https://github.com/John-Robertt/cldfolders)"
)

// Transport 把“UA + 有界重试 + 超时”固化为统一策略。
//
// 设计目标：上游 client 只负责“拼 URL + 解析 JSON”，不关心网络策略细节。
type Transport struct {
	Base http.RoundTripper

	// UserAgent 仅在请求未显式设置 User-Agent 时生效。
	UserAgent string

	// RetryMax 表示最大重试次数（不含首次尝试）。例如 2 表示最多 3 次尝试。
	// 只在传输层错误时重试；拿到任何 HTTP 响应（包括 5xx）都直接返回给上层。
	RetryMax int
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对“可重放”的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 {
		max = 0
	}
	if !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		r := cloneRequest(req)
		if r.Header.Get("User-Agent") == "" && t.UserAgent != "" {
			r.Header.Set("User-Agent", t.UserAgent)
		}

		resp, err := t.Base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			// ctx 已取消：不再重试，直接返回最后错误。
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func cloneRequest(req *http.Request) *http.Request {
	// Clone 会复制 Header 等，避免在 RoundTripper 内部“污染”调用方的 request。
	return req.Clone(req.Context())
}

// Options 是 NewAPIClient 的可选项；零值即默认策略。
type Options struct {
	Timeout   time.Duration
	RetryMax  *int
	UserAgent string
}

// NewAPIClient 构造访问上游 Admin API 的 HTTP client。
//
// 规则：
// - 固定 UA（可覆盖）
// - 有界重试（仅 GET/HEAD 的传输层错误）+ 总超时
// - 握手/响应头超时独立设置，避免上游挂起拖住整个请求
func NewAPIClient(opts Options) *http.Client {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   4,
	}

	retry := defaultRetryMax
	if opts.RetryMax != nil {
		retry = *opts.RetryMax
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &http.Client{
		Transport: &Transport{
			Base:      base,
			UserAgent: ua,
			RetryMax:  retry,
		},
		Timeout: timeout,
	}
}
