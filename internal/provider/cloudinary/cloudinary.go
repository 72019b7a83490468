package cloudinary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/John-Robertt/cldfolders/internal/domain"
	providerx "github.com/John-Robertt/cldfolders/internal/provider"
)

const (
	// DefaultBaseURL 是 Admin API 的公共入口；cloud name 作为第一段路径拼在其后。
	DefaultBaseURL = "https://api.cloudinary.com/v1_1"

	DefaultMaxResults = 200
	// MaxMaxResults 是 Admin API 单页上限。
	MaxMaxResults = 500

	// 错误体只读前 64KiB，足够容纳 {"error":{"message":...}}。
	errorBodyLimit = 64 << 10
)

// Provider 通过 Cloudinary Admin API 列举子目录与资源。
//
// 约束：
// - 鉴权使用 HTTP Basic（api_key:api_secret）
// - Resources 只取一页，翻页由调用方驱动
// - 资源记录整体保留为原始 JSON，本包只负责搬运
type Provider struct {
	CloudName string
	APIKey    string
	APISecret string

	// BaseURL 允许覆盖 API 入口（测试桩、区域化入口）。为空时使用 DefaultBaseURL。
	BaseURL string

	// MaxResults 是每页条数；0 表示 DefaultMaxResults，超出 [1, 500] 截断。
	MaxResults int

	Client *http.Client
}

var _ providerx.Source = Provider{}

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		u = DefaultBaseURL
	}
	return strings.TrimRight(u, "/") + "/" + url.PathEscape(strings.TrimSpace(p.CloudName))
}

func (p Provider) maxResults() int {
	n := p.MaxResults
	if n == 0 {
		return DefaultMaxResults
	}
	if n < 1 {
		return 1
	}
	if n > MaxMaxResults {
		return MaxMaxResults
	}
	return n
}

func (p Provider) validate() error {
	if p.Client == nil {
		return errors.New("http client 不能为空")
	}
	if strings.TrimSpace(p.CloudName) == "" {
		return errors.New("cloud name 不能为空")
	}
	if p.APIKey == "" || p.APISecret == "" {
		return errors.New("api key/secret 不能为空")
	}
	return nil
}

type foldersResponse struct {
	Folders    []domain.Folder `json:"folders"`
	NextCursor string          `json:"next_cursor"`
}

type resourcesResponse struct {
	Resources  []domain.Asset `json:"resources"`
	NextCursor string         `json:"next_cursor"`
}

// SubFolders 列举 root 的直接子目录：GET /folders/<root>。
// 上游对子目录列举同样分页，这里翻完全部页再返回。
func (p Provider) SubFolders(ctx context.Context, root string) ([]domain.Folder, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	root = strings.Trim(strings.TrimSpace(root), "/")
	if root == "" {
		return nil, errors.New("root folder 不能为空")
	}

	var (
		out    []domain.Folder
		cursor string
		seen   = map[string]struct{}{}
	)
	for {
		u := p.baseURL() + "/folders/" + escapeFolderPath(root) + "?" + p.pageQuery(cursor).Encode()

		var r foldersResponse
		if err := p.getJSON(ctx, u, &r); err != nil {
			return nil, err
		}
		out = append(out, r.Folders...)

		if r.NextCursor == "" {
			break
		}
		if _, dup := seen[r.NextCursor]; dup {
			return nil, fmt.Errorf("上游返回了重复的 next_cursor：%q", r.NextCursor)
		}
		seen[r.NextCursor] = struct{}{}
		cursor = r.NextCursor
	}
	if out == nil {
		out = []domain.Folder{}
	}
	return out, nil
}

// Resources 取某一资源类型的一页：GET /resources/<type>?max_results=N[&next_cursor=C]。
func (p Provider) Resources(ctx context.Context, rt domain.ResourceType, cursor string) (domain.Page, error) {
	if err := p.validate(); err != nil {
		return domain.Page{}, err
	}
	switch rt {
	case domain.ResourceImage, domain.ResourceVideo:
	default:
		return domain.Page{}, fmt.Errorf("不支持的资源类型：%q", rt)
	}

	u := p.baseURL() + "/resources/" + string(rt) + "?" + p.pageQuery(cursor).Encode()

	var r resourcesResponse
	if err := p.getJSON(ctx, u, &r); err != nil {
		return domain.Page{}, err
	}
	if r.Resources == nil {
		r.Resources = []domain.Asset{}
	}
	return domain.Page{Assets: r.Resources, NextCursor: r.NextCursor}, nil
}

func (p Provider) pageQuery(cursor string) url.Values {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(p.maxResults()))
	if cursor != "" {
		q.Set("next_cursor", cursor)
	}
	return q
}

func (p Provider) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(p.APIKey, p.APISecret)
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &providerx.HTTPStatusError{
			URL:        redactURL(u),
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析上游 JSON 失败：%w", err)
	}
	return nil
}

// readErrorMessage 尽量从 {"error":{"message":...}} 中取出上游错误描述。
func readErrorMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, errorBodyLimit))
	if err != nil || len(b) == 0 {
		return ""
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(b, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return ""
}

// escapeFolderPath 逐段转义目录路径（保留段之间的 '/'）。
func escapeFolderPath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// redactURL 去掉 query，避免把游标等长串写进错误信息。
func redactURL(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
