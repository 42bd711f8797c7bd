package availability

// Status 房间在当前快照中的派生状态（不持久化）
type Status string

const (
	StatusAvailable Status = "Available"
	StatusScheduled Status = "Scheduled"
	StatusInUse     Status = "In Use"
)

// Classify 按优先级给房间定级：
// 进行中的预约/考试（ID 匹配）或课表（名称匹配）→ In Use；
// 否则今天有任何记录 → Scheduled；否则 Available。
func Classify(c RoomConflicts) Status {
	switch {
	case len(c.Bookings) > 0, len(c.Exams) > 0:
		return StatusInUse
	case len(c.Lectures) > 0:
		// 课表没有房间 ID，名称匹配到进行中的课也必须标记为使用中
		return StatusInUse
	case c.HasAnyToday:
		return StatusScheduled
	default:
		return StatusAvailable
	}
}
