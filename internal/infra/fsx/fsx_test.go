package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomic(dir, "folders.json", []byte("{}\n")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "folders.json"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "{}\n" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	assertNoTemp(t, dir, "folders.json")
}

func TestWriteFileAtomic_ReplaceExisting(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "folders.json")
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatalf("写入旧文件失败：%v", err)
	}

	if err := WriteFileAtomic(dir, "folders.json", []byte("new")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, _ := os.ReadFile(dst)
	if string(b) != "new" {
		t.Fatalf("期望覆盖为 new，实际=%q", string(b))
	}
}

func TestWriteFileAtomic_RenameFail_KeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "folders.json")
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatalf("写入旧文件失败：%v", err)
	}

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	if err := WriteFileAtomic(dir, "folders.json", []byte("new")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}

	b, _ := os.ReadFile(dst)
	if string(b) != "old" {
		t.Fatalf("失败时不应改动已有文件，实际=%q", string(b))
	}
	assertNoTemp(t, dir, "folders.json")
}

func TestWriteFileAtomic_TargetConflictDir(t *testing.T) {
	dir := t.TempDir()

	// 目标路径是目录：应返回 PathTypeConflictError。
	if err := os.Mkdir(filepath.Join(dir, "folders.json"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := WriteFileAtomic(dir, "folders.json", []byte("{}"))
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func assertNoTemp(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "."+name+".tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}
