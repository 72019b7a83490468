package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	i := Get()
	if i.Version != Version || i.Commit != Commit {
		t.Fatalf("版本信息不符合预期：%+v", i)
	}
	if i.GoVersion != runtime.Version() {
		t.Fatalf("期望 %s，实际 %s", runtime.Version(), i.GoVersion)
	}
	if !strings.HasPrefix(i.String(), "cldfolders "+Version) {
		t.Fatalf("String() 不符合预期：%q", i.String())
	}
}
