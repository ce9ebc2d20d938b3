package xroll

import "time"

// FileStats 当前文件的状态，滚动判断的输入
type FileStats struct {
	Size    int64
	Created time.Time
}

// Trigger 滚动触发原因
type Trigger string

const (
	TriggerNone Trigger = ""
	TriggerSize Trigger = "size"
	TriggerTime Trigger = "time"
)

// Decide 判断是否需要滚动，返回触发原因。
//
// 大小与时间阈值任一满足即触发，大小优先报告。
// 时钟回拨（now 早于 Created）时已过时间按 0 计算。
// 阈值为 0 时每次写入后都会触发。
func Decide(stats FileStats, rc RollingConfig, now time.Time) Trigger {
	if stats.Size >= rc.SizeThreshold {
		return TriggerSize
	}
	if elapsedSeconds(stats.Created, now) >= rc.TimeThreshold {
		return TriggerTime
	}
	return TriggerNone
}

// ShouldRoll 报告是否需要滚动
func ShouldRoll(stats FileStats, rc RollingConfig, now time.Time) bool {
	return Decide(stats, rc, now) != TriggerNone
}

// elapsedSeconds 整秒数，向下取整，不小于 0
func elapsedSeconds(created, now time.Time) int64 {
	d := now.Sub(created)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
