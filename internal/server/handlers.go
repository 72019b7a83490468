package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/John-Robertt/cldfolders/internal/domain"
	"github.com/John-Robertt/cldfolders/internal/provider"
	"github.com/John-Robertt/cldfolders/internal/version"
)

// errFetchFolders 是对外固定的错误文案；具体原因只写日志，不回传给调用方。
const errFetchFolders = "An error occurred while fetching folders."

const thumbsPerFolder = 6

// handleFolders 每次请求都重新构建 FolderMap，响应体与 --file 写出的内容字节一致。
func (s *Server) handleFolders(c *gin.Context) {
	m, ok := s.build(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errFetchFolders})
		return
	}
	b, err := domain.EncodeFolderMap(m)
	if err != nil {
		s.log.Error("encode folder map failed", "err", err, "request_id", c.GetString(ctxRequestID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errFetchFolders})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", b)
}

func (s *Server) build(c *gin.Context) (domain.FolderMap, bool) {
	m, err := s.builder.Build(c.Request.Context())
	if err != nil {
		s.log.Error("build folder map failed",
			"err", err,
			"upstream_status", provider.StatusCode(err),
			"auth", provider.IsAuth(err),
			"request_id", c.GetString(ctxRequestID),
		)
		return nil, false
	}
	return m, true
}

type thumbView struct {
	PublicID string
	URL      string
	IsVideo  bool
}

type folderView struct {
	Name   string
	Count  int
	Thumbs []thumbView
}

type indexView struct {
	Root    string
	Folders []folderView
	Total   int
	Error   string
}

// handleIndex 渲染一个简单的目录总览页（每个目录的资源数与前几张缩略图）。
func (s *Server) handleIndex(c *gin.Context) {
	m, ok := s.build(c)
	if !ok {
		c.HTML(http.StatusInternalServerError, "index.html", indexView{Root: s.cfg.Root, Error: errFetchFolders})
		return
	}

	v := indexView{Root: s.cfg.Root, Total: m.Count()}
	for _, name := range m.Names() {
		assets := m[name]
		fv := folderView{Name: name, Count: len(assets)}
		for _, a := range assets {
			if len(fv.Thumbs) == thumbsPerFolder {
				break
			}
			if a.SecureURL == "" {
				continue
			}
			fv.Thumbs = append(fv.Thumbs, thumbView{
				PublicID: a.PublicID,
				URL:      a.SecureURL,
				IsVideo:  a.ResourceType == string(domain.ResourceVideo),
			})
		}
		v.Folders = append(v.Folders, fv)
	}
	c.HTML(http.StatusOK, "index.html", v)
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

var templateFuncs = template.FuncMap{
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
}
