package domain

import (
	"encoding/json"
	"sort"
)

// FolderMap 是 子目录名 -> 资源列表 的映射，也是两种交付方式（HTTP / 文件）的唯一输出结构。
type FolderMap map[string][]Asset

// NewFolderMap 为每个子目录建立空列表（没有资源的目录也必须出现在输出里）。
func NewFolderMap(folders []Folder) FolderMap {
	m := make(FolderMap, len(folders))
	for _, f := range folders {
		m[f.Name] = []Asset{}
	}
	return m
}

// Names 返回按字典序排序的子目录名。
func (m FolderMap) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Count 返回所有目录下的资源总数。
func (m FolderMap) Count() int {
	n := 0
	for _, as := range m {
		n += len(as)
	}
	return n
}

// EncodeFolderMap 把 FolderMap 编码为对外 JSON（2 空格缩进 + 结尾换行）。
//
// HTTP 响应与 folders.json 都只走这个函数：同一上游状态下两者字节一致。
// - nil map 输出 {}，nil 列表输出 []（不输出 null）
// - key 按字典序输出（encoding/json 对 map 的固定行为）
func EncodeFolderMap(m FolderMap) ([]byte, error) {
	out := make(FolderMap, len(m))
	for k, as := range m {
		if as == nil {
			as = []Asset{}
		}
		out[k] = as
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
