package httpx

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func okResponse(r *http.Request) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
		Request:    r,
	}
}

func TestTransport_RetryOnTransportError(t *testing.T) {
	calls := 0
	tr := &Transport{
		Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("connection reset")
			}
			return okResponse(r), nil
		}),
		RetryMax: 2,
	}

	req, _ := http.NewRequest(http.MethodGet, "http://upstream.test/x", nil)
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp.Body.Close()
	if calls != 3 {
		t.Fatalf("期望 3 次尝试，实际 %d", calls)
	}
}

func TestTransport_NoRetryOnHTTPStatus(t *testing.T) {
	calls := 0
	tr := &Transport{
		Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			resp := okResponse(r)
			resp.StatusCode = http.StatusBadGateway
			return resp, nil
		}),
		RetryMax: 2,
	}

	req, _ := http.NewRequest(http.MethodGet, "http://upstream.test/x", nil)
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp.Body.Close()
	if calls != 1 {
		t.Fatalf("拿到 HTTP 响应后不应重试，实际尝试 %d 次", calls)
	}
}

func TestTransport_NoRetryForPOST(t *testing.T) {
	calls := 0
	tr := &Transport{
		Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("boom")
		}),
		RetryMax: 2,
	}

	req, _ := http.NewRequest(http.MethodPost, "http://upstream.test/x", strings.NewReader("x"))
	if _, err := tr.RoundTrip(req); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if calls != 1 {
		t.Fatalf("POST 不应重试，实际尝试 %d 次", calls)
	}
}

func TestTransport_UserAgentDefaultAndOverride(t *testing.T) {
	var got []string
	tr := &Transport{
		Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			got = append(got, r.Header.Get("User-Agent"))
			return okResponse(r), nil
		}),
		UserAgent: "svc/1",
	}

	req, _ := http.NewRequest(http.MethodGet, "http://upstream.test/x", nil)
	if _, err := tr.RoundTrip(req); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if req.Header.Get("User-Agent") != "" {
		t.Fatalf("RoundTrip 不应修改调用方的 request")
	}

	req2, _ := http.NewRequest(http.MethodGet, "http://upstream.test/x", nil)
	req2.Header.Set("User-Agent", "custom")
	if _, err := tr.RoundTrip(req2); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	if len(got) != 2 || got[0] != "svc/1" || got[1] != "custom" {
		t.Fatalf("UA 不符合预期：%v", got)
	}
}

func TestNewAPIClient_Defaults(t *testing.T) {
	c := NewAPIClient(Options{})
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.RetryMax != defaultRetryMax {
		t.Fatalf("期望 RetryMax=%d，实际=%d", defaultRetryMax, tr.RetryMax)
	}
	if tr.UserAgent != DefaultUserAgent {
		t.Fatalf("期望默认 UA，实际=%q", tr.UserAgent)
	}
	if c.Timeout != defaultTimeout {
		t.Fatalf("期望 Timeout=%v，实际=%v", defaultTimeout, c.Timeout)
	}

	zero := 0
	c2 := NewAPIClient(Options{RetryMax: &zero, Timeout: 5 * time.Second, UserAgent: "x"})
	tr2 := c2.Transport.(*Transport)
	if tr2.RetryMax != 0 || tr2.UserAgent != "x" || c2.Timeout != 5*time.Second {
		t.Fatalf("Options 未生效：retry=%d ua=%q timeout=%v", tr2.RetryMax, tr2.UserAgent, c2.Timeout)
	}
}
