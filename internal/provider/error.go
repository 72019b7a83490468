package provider

import "fmt"

const (
	OpSubFolders = "sub_folders"
	OpResources  = "resources"
)

// Error 是带阶段信息的上游错误，让日志能区分“子目录列举失败”与“资源列举失败”。
type Error struct {
	Op     string // OpSubFolders / OpResources
	Target string // 根目录名或资源类型
	Cursor string // 失败时所在的分页游标（首页为空）
	Err    error
}

func (e *Error) Error() string {
	if e.Cursor != "" {
		return fmt.Sprintf("op=%s target=%s cursor=%s: %v", e.Op, e.Target, e.Cursor, e.Err)
	}
	return fmt.Sprintf("op=%s target=%s: %v", e.Op, e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
