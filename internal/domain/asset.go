package domain

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Asset 是上游返回的单条资源记录（image 或 video）。
//
// 约束：
// - 原始 JSON 对象整体保留，输出时字段与顺序不变（对本服务而言是不透明数据）
// - 只解码分组与页面展示需要的少数字段
type Asset struct {
	raw json.RawMessage

	Folder       string
	PublicID     string
	ResourceType string
	SecureURL    string
}

type assetFields struct {
	Folder       string `json:"folder"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
	SecureURL    string `json:"secure_url"`
}

// NewAsset 从一段 JSON 对象构造 Asset（主要用于测试与桩实现）。
func NewAsset(raw []byte) (Asset, error) {
	var a Asset
	if err := a.UnmarshalJSON(raw); err != nil {
		return Asset{}, err
	}
	return a, nil
}

// Raw 返回原始 JSON（调用方不应修改返回值）。
func (a Asset) Raw() json.RawMessage { return a.raw }

func (a *Asset) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) == 0 || b[0] != '{' {
		return errors.New("asset 必须是 JSON 对象")
	}
	var f assetFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	a.raw = append(json.RawMessage(nil), b...)
	a.Folder = f.Folder
	a.PublicID = f.PublicID
	a.ResourceType = f.ResourceType
	a.SecureURL = f.SecureURL
	return nil
}

func (a Asset) MarshalJSON() ([]byte, error) {
	if len(a.raw) > 0 {
		return a.raw, nil
	}
	// 非上游来源（手工构造）的 Asset：只输出已知字段。
	return json.Marshal(assetFields{
		Folder:       a.Folder,
		PublicID:     a.PublicID,
		ResourceType: a.ResourceType,
		SecureURL:    a.SecureURL,
	})
}
