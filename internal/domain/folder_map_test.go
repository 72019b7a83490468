package domain

import (
	"encoding/json"
	"testing"
)

func TestEncodeFolderMap_EmptyAndNil(t *testing.T) {
	b, err := EncodeFolderMap(nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if string(b) != "{}\n" {
		t.Fatalf("nil map 应编码为 {}，实际=%q", string(b))
	}

	b, err = EncodeFolderMap(FolderMap{"a": nil})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if string(b) != "{\n  \"a\": []\n}\n" {
		t.Fatalf("nil 列表应编码为 []，实际=%q", string(b))
	}
}

func TestEncodeFolderMap_SortedKeysAndIndent(t *testing.T) {
	a1, _ := NewAsset([]byte(`{"public_id":"r/b/1","folder":"r/b"}`))
	m := NewFolderMap([]Folder{{Name: "b"}, {Name: "a"}})
	m["b"] = append(m["b"], a1)

	b, err := EncodeFolderMap(m)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := "{\n" +
		"  \"a\": [],\n" +
		"  \"b\": [\n" +
		"    {\n" +
		"      \"public_id\": \"r/b/1\",\n" +
		"      \"folder\": \"r/b\"\n" +
		"    }\n" +
		"  ]\n" +
		"}\n"
	if string(b) != want {
		t.Fatalf("编码结果不符合预期\n期望=%q\n实际=%q", want, string(b))
	}

	var back map[string][]map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("输出不是合法 JSON：%v", err)
	}
}

func TestFolderMap_NamesAndCount(t *testing.T) {
	m := NewFolderMap([]Folder{{Name: "z"}, {Name: "m"}})
	m["z"] = append(m["z"], Asset{}, Asset{})
	names := m.Names()
	if len(names) != 2 || names[0] != "m" || names[1] != "z" {
		t.Fatalf("Names 未排序：%v", names)
	}
	if m.Count() != 2 {
		t.Fatalf("期望 Count=2，实际=%d", m.Count())
	}
}

func TestAssetFolder(t *testing.T) {
	if got := AssetFolder("iamisigo", "trip"); got != "iamisigo/trip" {
		t.Fatalf("期望 iamisigo/trip，实际=%q", got)
	}
	if got := AssetFolder("iamisigo/", "trip"); got != "iamisigo/trip" {
		t.Fatalf("root 结尾的 / 应被规范化，实际=%q", got)
	}
}
