package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/cldfolders/internal/app"
	"github.com/John-Robertt/cldfolders/internal/config"
)

var _ app.Observer = (*progressUI)(nil)

// progressUI 是 --file 模式在交互终端下的进度输出。
//
// - 只写 stderr（stdout 只留给写入路径）
// - 事件驱动：app 层只发阶段事件，这里决定如何展示
// - keepalive：翻页耗时较长时定期输出一行
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time
	phase       string

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh  chan struct{}
	stopped bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig, dir string) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = now
	p.phase = app.PhaseSubFolders

	fmt.Fprintf(p.w, "[%s] cldfolders --file\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  cloud: %s\n", eff.Cloudinary.CloudName)
	fmt.Fprintf(p.w, "  root_folder: %s\n", eff.Cloudinary.RootFolder)
	fmt.Fprintf(p.w, "  max_results: %d\n", eff.Cloudinary.MaxResults)
	if strings.TrimSpace(eff.Cloudinary.BaseURL) != "" {
		fmt.Fprintf(p.w, "  api_base_url: %s\n", truncate(eff.Cloudinary.BaseURL, 120))
	}
	fmt.Fprintln(p.w, "输出:")
	fmt.Fprintf(p.w, "  file: %s\n", filepath.Join(dir, config.OutputFileName))
	fmt.Fprintln(p.w)

	p.lastPrinted = now
	p.startTickerLocked()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case app.PhaseSubFolders:
		fmt.Fprintf(p.w, "子目录: folders=%d (%s)\n", intField(fields, "folders"), formatShortDuration(dur))
		p.phase = "image"
	case "image":
		fmt.Fprintf(p.w, "图片: assets=%d (%s)\n", intField(fields, "assets"), formatShortDuration(dur))
		p.phase = "video"
	case "video":
		fmt.Fprintf(p.w, "视频: assets=%d (%s)\n", intField(fields, "assets"), formatShortDuration(dur))
		p.phase = app.PhaseGroup
	case app.PhaseGroup:
		fmt.Fprintf(p.w, "分组: folders=%d assets=%d (%s)\n",
			intField(fields, "folders"), intField(fields, "assets"), formatShortDuration(dur),
		)
		p.stopLocked()
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
	p.lastPrinted = time.Now()
}

// Stop 结束 keepalive；可重复调用。
func (p *progressUI) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *progressUI) stopLocked() {
	if p.stopCh != nil && !p.stopped {
		close(p.stopCh)
		p.stopped = true
	}
}

func (p *progressUI) startTickerLocked() {
	if p.stopCh != nil {
		return
	}
	p.stopCh = make(chan struct{})

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}
	stop := p.stopCh

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if !p.stopped && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进行中: phase=%s elapsed=%s\n", p.phase, formatElapsed(time.Since(p.startedAt)))
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

// pickProgressWriter 只在 w 是交互终端时启用进度输出。
func pickProgressWriter(w io.Writer) (io.Writer, bool) {
	f, ok := w.(*os.File)
	if !ok || !isTTY(f) {
		return nil, false
	}
	return f, true
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

func intField(fields map[string]any, key string) int {
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
