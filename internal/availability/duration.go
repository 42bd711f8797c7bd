package availability

import "time"

// ClassType 课程类型，决定每学分时长
type ClassType string

const (
	ClassTheory    ClassType = "theory"
	ClassPractical ClassType = "practical"
)

// 学分（SKS）取值范围
const (
	MinUnits = 1
	MaxUnits = 6
)

// MinutesPerUnit 每学分时长（分钟）
var MinutesPerUnit = map[ClassType]int{
	ClassTheory:    50,
	ClassPractical: 170,
}

// CalculateEndTime 计算 start + units × 每学分分钟数。
// 开始时间为空、学分越界或类型未知时返回 ok=false（"尚无结束时间"是合法的中间状态）。
func CalculateEndTime(start time.Time, units int, classType ClassType) (time.Time, bool) {
	if start.IsZero() || units < MinUnits || units > MaxUnits {
		return time.Time{}, false
	}
	perUnit, ok := MinutesPerUnit[classType]
	if !ok {
		return time.Time{}, false
	}
	return start.Add(time.Duration(units*perUnit) * time.Minute), true
}

// EndTimeResult 结束时间计算结果
type EndTimeResult struct {
	End             time.Time
	DurationMinutes int
	Manual          bool
}

// ResolveEndTime 有手动结束时间时原样使用，时长仅作展示；否则按学分计算。
// 手动结束时间早于开始时间时视为无结束时间。
func ResolveEndTime(start time.Time, units int, classType ClassType, manualEnd *time.Time) (EndTimeResult, bool) {
	if manualEnd != nil && !manualEnd.IsZero() {
		if !start.IsZero() && manualEnd.Before(start) {
			return EndTimeResult{}, false
		}
		res := EndTimeResult{End: *manualEnd, Manual: true}
		if !start.IsZero() {
			res.DurationMinutes = int(manualEnd.Sub(start) / time.Minute)
		}
		return res, true
	}

	end, ok := CalculateEndTime(start, units, classType)
	if !ok {
		return EndTimeResult{}, false
	}
	return EndTimeResult{
		End:             end,
		DurationMinutes: int(end.Sub(start) / time.Minute),
	}, true
}
