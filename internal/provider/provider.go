package provider

import (
	"context"

	"github.com/John-Robertt/cldfolders/internal/domain"
)

// Source 把“上游 API 细节”限制在 provider 包内部；聚合流程只依赖这个接口。
//
// 约束：
// - SubFolders 返回根目录的全部直接子目录（上游分页由实现自行翻完）
// - Resources 只取一页；翻页循环由调用方控制（便于验证“直到无 cursor 为止”）
// - 实现不做缓存；网络策略（超时/重试）由 httpx 统一提供
type Source interface {
	SubFolders(ctx context.Context, root string) ([]domain.Folder, error)
	Resources(ctx context.Context, rt domain.ResourceType, cursor string) (domain.Page, error)
}
