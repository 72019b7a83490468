package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAsset_UnknownFieldsPassThrough(t *testing.T) {
	raw := `{"asset_id":"a1","public_id":"iamisigo/trip/p1","folder":"iamisigo/trip","resource_type":"image","width":640,"tags":["x"],"secure_url":"https://res.test/p1.jpg"}`

	var a Asset
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if a.Folder != "iamisigo/trip" || a.PublicID != "iamisigo/trip/p1" || a.ResourceType != "image" {
		t.Fatalf("字段解码不符合预期：%+v", a)
	}
	if a.SecureURL != "https://res.test/p1.jpg" {
		t.Fatalf("secure_url 解码错误：%q", a.SecureURL)
	}

	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if string(b) != raw {
		t.Fatalf("原始字段必须原样输出\n期望=%s\n实际=%s", raw, string(b))
	}
}

func TestAsset_RejectNonObject(t *testing.T) {
	var as []Asset
	err := json.Unmarshal([]byte(`[1]`), &as)
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestAsset_ConstructedWithoutRaw(t *testing.T) {
	a := Asset{Folder: "r/a", PublicID: "r/a/x"}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !strings.Contains(string(b), `"folder":"r/a"`) {
		t.Fatalf("手工构造的 Asset 应输出已知字段：%s", string(b))
	}
}

func TestNewAsset(t *testing.T) {
	a, err := NewAsset([]byte(` {"folder":"r/a"} `))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if a.Folder != "r/a" || len(a.Raw()) == 0 {
		t.Fatalf("NewAsset 结果不符合预期：%+v raw=%s", a, a.Raw())
	}
	if _, err := NewAsset([]byte(`"x"`)); err == nil {
		t.Fatalf("期望非对象输入报错")
	}
}
