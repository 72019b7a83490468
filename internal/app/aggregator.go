package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/John-Robertt/cldfolders/internal/domain"
	"github.com/John-Robertt/cldfolders/internal/provider"
)

// Aggregator 把“列子目录 -> 翻页取资源 -> 分组”串成一次完整构建。
//
// 错误策略（固定）：任一步失败都直接返回错误，不降级为空列表。
// 调用方（HTTP / 文件模式）据此决定 500 或非零退出，绝不输出不完整的映射。
type Aggregator struct {
	Source provider.Source
	Root   string
	Logger *slog.Logger

	// Observer 可选；为 nil 时不发事件。
	Observer Observer
}

// Build 每次调用都重新向上游取数（无缓存）。调用是顺序的：子目录、image、video。
func (a Aggregator) Build(ctx context.Context) (domain.FolderMap, error) {
	if a.Source == nil {
		return nil, errors.New("source 不能为空")
	}
	if a.Root == "" {
		return nil, errors.New("root folder 不能为空")
	}
	log := a.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var obs Observer = nopObserver{}
	if a.Observer != nil {
		obs = a.Observer
	}

	started := time.Now()

	folders, err := a.Source.SubFolders(ctx, a.Root)
	if err != nil {
		return nil, &provider.Error{Op: provider.OpSubFolders, Target: a.Root, Err: err}
	}
	log.Debug("sub-folders listed", "root", a.Root, "folders", len(folders), "dur", time.Since(started))
	obs.OnPhaseDone(PhaseSubFolders, map[string]any{"folders": len(folders)}, time.Since(started))

	all := make([]domain.Asset, 0, 256)
	for _, rt := range domain.ResourceTypes() {
		t0 := time.Now()
		assets, err := CollectAll(ctx, a.Source, rt)
		if err != nil {
			return nil, err
		}
		log.Debug("resources collected", "type", string(rt), "assets", len(assets), "dur", time.Since(t0))
		obs.OnPhaseDone(string(rt), map[string]any{"assets": len(assets)}, time.Since(t0))
		all = append(all, assets...)
	}

	t0 := time.Now()
	m := GroupByFolder(a.Root, folders, all)
	obs.OnPhaseDone(PhaseGroup, map[string]any{"folders": len(m), "assets": m.Count()}, time.Since(t0))
	log.Info("folder map built",
		"root", a.Root,
		"folders", len(m),
		"assets_total", len(all),
		"assets_grouped", m.Count(),
		"dur", time.Since(started),
	)
	return m, nil
}

// Builder 是交付层（HTTP / 文件）依赖的最小接口；Aggregator 是它的生产实现。
type Builder interface {
	Build(ctx context.Context) (domain.FolderMap, error)
}

var _ Builder = Aggregator{}
