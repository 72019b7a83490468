package app

import (
	"context"
	"fmt"

	"github.com/John-Robertt/cldfolders/internal/domain"
	"github.com/John-Robertt/cldfolders/internal/provider"
)

// GroupByFolder 按 folder 字段把资源归入根目录下的各子目录。
//
// - 每个子目录都是一个 key（没有资源时为空列表）
// - 匹配是精确相等：asset.Folder == "<root>/<name>"；更深层或根目录本身的资源不归入任何 key
// - 目录内顺序沿用 assets 的输入顺序
func GroupByFolder(root string, folders []domain.Folder, assets []domain.Asset) domain.FolderMap {
	m := domain.NewFolderMap(folders)

	byPath := make(map[string]string, len(folders))
	for _, f := range folders {
		byPath[domain.AssetFolder(root, f.Name)] = f.Name
	}

	for _, a := range assets {
		name, ok := byPath[a.Folder]
		if !ok {
			continue
		}
		m[name] = append(m[name], a)
	}
	return m
}

// CollectAll 翻完某一资源类型的全部分页，返回各页按顺序拼接的结果。
//
// 循环直到上游不再返回 next_cursor；若游标与此前某页重复则报错（上游异常时避免死循环）。
func CollectAll(ctx context.Context, src provider.Source, rt domain.ResourceType) ([]domain.Asset, error) {
	var (
		out    = make([]domain.Asset, 0, 64)
		cursor string
		seen   = map[string]struct{}{}
	)
	for {
		page, err := src.Resources(ctx, rt, cursor)
		if err != nil {
			return nil, &provider.Error{Op: provider.OpResources, Target: string(rt), Cursor: cursor, Err: err}
		}
		out = append(out, page.Assets...)

		if page.NextCursor == "" {
			return out, nil
		}
		if _, dup := seen[page.NextCursor]; dup {
			return nil, &provider.Error{
				Op:     provider.OpResources,
				Target: string(rt),
				Cursor: page.NextCursor,
				Err:    fmt.Errorf("上游返回了重复的 next_cursor"),
			}
		}
		seen[page.NextCursor] = struct{}{}
		cursor = page.NextCursor
	}
}
