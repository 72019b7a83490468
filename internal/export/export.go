package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/John-Robertt/cldfolders/internal/app"
	"github.com/John-Robertt/cldfolders/internal/config"
	"github.com/John-Robertt/cldfolders/internal/domain"
	"github.com/John-Robertt/cldfolders/internal/infra/fsx"
)

// WriteFile 构建一次 FolderMap 并原子写入 <dir>/folders.json，返回写入的绝对路径。
//
// 构建失败时不触碰已有文件；编码与 HTTP 响应共用 domain.EncodeFolderMap。
func WriteFile(ctx context.Context, b app.Builder, dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	m, err := b.Build(ctx)
	if err != nil {
		return "", fmt.Errorf("构建 folder map 失败：%w", err)
	}

	data, err := domain.EncodeFolderMap(m)
	if err != nil {
		return "", fmt.Errorf("编码 folder map 失败：%w", err)
	}

	if err := fsx.WriteFileAtomic(absDir, config.OutputFileName, data); err != nil {
		return "", fmt.Errorf("写入 %s 失败：%w", config.OutputFileName, err)
	}
	return filepath.Join(absDir, config.OutputFileName), nil
}
