package availability

import "time"

// Kind 排程记录来源
type Kind string

const (
	KindBooking Kind = "booking"
	KindLecture Kind = "lecture"
	KindExam    Kind = "exam"
)

// BookingApproved 只有已批准的预约参与冲突计算
const BookingApproved = "approved"

// Schedule 三类排程记录的统一视图：
// 预约/考试以房间 ID 为键，课表以规范化房间名称为键，区间解析由各自实现。
type Schedule interface {
	Kind() Kind
	RecordID() string
	Label() string
	Window(ref time.Time, loc *time.Location) (Window, error)
}

// Booking 预约记录（绝对时间戳）
type Booking struct {
	ID      string
	RoomID  string
	Status  string
	Purpose string
	Start   *time.Time
	End     *time.Time
}

func (b Booking) Kind() Kind       { return KindBooking }
func (b Booking) RecordID() string { return b.ID }
func (b Booking) Label() string    { return b.Purpose }

// Window 预约区间直接取存储的开始/结束时间
func (b Booking) Window(_ time.Time, _ *time.Location) (Window, error) {
	if b.Start == nil || b.End == nil || b.Start.IsZero() || b.End.IsZero() {
		return Window{}, ErrMissingTime
	}
	return Window{Start: *b.Start, End: *b.End}, nil
}

// overlapsDay 判断预约是否与 [dayStart, dayEnd) 相交；
// 只有一端时间时，该端必须落在当天，两端都缺失则无法归属任何一天。
func (b Booking) overlapsDay(dayStart, dayEnd time.Time) bool {
	hasStart := b.Start != nil && !b.Start.IsZero()
	hasEnd := b.End != nil && !b.End.IsZero()
	switch {
	case hasStart && hasEnd:
		return b.Start.Before(dayEnd) && !b.End.Before(dayStart)
	case hasStart:
		return withinDay(*b.Start, dayStart, dayEnd)
	case hasEnd:
		return withinDay(*b.End, dayStart, dayEnd)
	default:
		return false
	}
}

func withinDay(t, dayStart, dayEnd time.Time) bool {
	return !t.Before(dayStart) && t.Before(dayEnd)
}

// Lecture 每周重复的课表时段（房间仅有自由文本名称）
type Lecture struct {
	ID        string
	RoomName  string
	Course    string
	Lecturer  string
	DayOfWeek int // 1=周一 … 7=周日
	StartTime string
	EndTime   string
}

func (l Lecture) Kind() Kind       { return KindLecture }
func (l Lecture) RecordID() string { return l.ID }
func (l Lecture) Label() string    { return l.Course }

// Window 把墙上时间锚定到参考日期
func (l Lecture) Window(ref time.Time, loc *time.Location) (Window, error) {
	return clockWindow(l.StartTime, l.EndTime, ref, loc)
}

// Exam 考试时段；居家考试不占用房间
type Exam struct {
	ID        string
	RoomID    string
	Course    string
	Date      time.Time
	StartTime string
	EndTime   string
	TakeHome  bool
}

func (e Exam) Kind() Kind       { return KindExam }
func (e Exam) RecordID() string { return e.ID }
func (e Exam) Label() string    { return e.Course }

// Window 把墙上时间锚定到参考日期（日期过滤由聚合器完成）
func (e Exam) Window(ref time.Time, loc *time.Location) (Window, error) {
	return clockWindow(e.StartTime, e.EndTime, ref, loc)
}

// onDate DATE 列不带时区，按其自身的年月日与参考日比较
func (e Exam) onDate(ref time.Time) bool {
	y, m, d := e.Date.Date()
	ry, rm, rd := ref.Date()
	return y == ry && m == rm && d == rd
}

// ISOWeekday 返回 1=周一 … 7=周日
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
