package domain

import "strings"

// Folder 是根目录下的一个直接子目录（分组键）。
type Folder struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// AssetFolder 返回属于该子目录的资源应携带的 folder 字段值："<root>/<name>"。
func AssetFolder(root, name string) string {
	return strings.TrimRight(root, "/") + "/" + name
}

// ResourceType 是上游资源类型（Admin API 路径中的 resource_type 段）。
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
)

// ResourceTypes 返回参与聚合的资源类型，顺序固定：先 image 后 video。
func ResourceTypes() []ResourceType {
	return []ResourceType{ResourceImage, ResourceVideo}
}

// Page 是一次分页列举的结果。NextCursor 为空表示没有更多数据。
type Page struct {
	Assets     []Asset
	NextCursor string
}
