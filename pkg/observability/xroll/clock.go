package xroll

import "time"

// Clock 提供当前时间，测试中可替换
type Clock interface {
	Now() time.Time
}

// ClockFunc 将函数适配为 Clock
type ClockFunc func() time.Time

// Now 实现 Clock
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 系统时钟
var SystemClock Clock = systemClock{}
