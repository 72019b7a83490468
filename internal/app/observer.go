package app

import "time"

// 构建过程的阶段名；资源阶段直接使用资源类型（image / video）。
const (
	PhaseSubFolders = "sub_folders"
	PhaseGroup      = "group"
)

// Observer 用于把构建进度从核心流程中解耦出来。
//
// 约束：app 包只负责发事件，不做任何输出；展示方式由调用方（CLI）决定。
type Observer interface {
	// OnPhaseDone 在阶段结束时调用，fields 是该阶段的计数。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
}

type nopObserver struct{}

func (nopObserver) OnPhaseDone(string, map[string]any, time.Duration) {}
