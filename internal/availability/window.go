package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingTime 记录缺少开始或结束时间，按"不冲突"处理，不视为错误
var ErrMissingTime = errors.New("排程记录缺少开始或结束时间")

// ParseError 单条记录的时间字符串无法解析（可恢复，记录会被排除）
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("无法解析 %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// clockLayouts 数据库 time 类型返回 HH:MM:SS，手工录入可能只有 HH:MM
var clockLayouts = []string{"15:04:05", "15:04"}

// Window 闭区间 [Start, End]
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains 判断 t 是否落在区间内（两端包含）
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ParseClock 把 HH:MM[:SS] 锚定到 ref 所在日期（loc 时区）
func ParseClock(field, value string, ref time.Time, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	var (
		clock time.Time
		err   error
	)
	for _, layout := range clockLayouts {
		clock, err = time.Parse(layout, value)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, &ParseError{Field: field, Value: value, Err: err}
	}
	day := ref.In(loc)
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, loc), nil
}

// clockWindow 课表与考试共用：两端都是当天的墙上时间
func clockWindow(startClock, endClock string, ref time.Time, loc *time.Location) (Window, error) {
	if strings.TrimSpace(startClock) == "" || strings.TrimSpace(endClock) == "" {
		return Window{}, ErrMissingTime
	}
	start, err := ParseClock("start_time", startClock, ref, loc)
	if err != nil {
		return Window{}, err
	}
	end, err := ParseClock("end_time", endClock, ref, loc)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: end}, nil
}
