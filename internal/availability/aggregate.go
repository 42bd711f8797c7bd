package availability

import (
	"errors"
	"sort"
	"time"
)

// Sources 一次刷新中各数据源各取一次的原始记录
type Sources struct {
	Bookings []Booking
	Lectures []Lecture
	Exams    []Exam
}

// Entry 当天某房间的一条已解析记录
type Entry struct {
	Kind     Kind
	RecordID string
	Label    string
	Window   Window
	Active   bool // 区间包含参考时刻
}

// Skipped 因时间无法解析而被排除的记录
type Skipped struct {
	Kind     Kind
	RecordID string
	Err      error
}

// RoomRef 房间的两种身份键
type RoomRef struct {
	ID   string
	Name string
}

// RoomConflicts 单个房间的冲突集合，是 Classify 的全部输入
type RoomConflicts struct {
	Bookings    []Entry
	Lectures    []Entry
	Exams       []Entry
	HasAnyToday bool
}

type bucket struct {
	entries []Entry
	seen    bool // 出现在今天的任一记录中（与区间能否解析无关）
}

// Aggregation 按房间 ID 与规范化名称建立的当日索引
type Aggregation struct {
	Now     time.Time
	Skipped []Skipped

	byID    map[string]*bucket // 预约、考试
	byName  map[string]*bucket // 课表
	matcher *NameMatcher
}

// Aggregate 对当天（loc 时区下 now 所在日期）的记录做过滤、解析与索引。
// 过滤规则：预约须为 approved 且与当天有交集；课表须星期匹配；考试须日期匹配且非居家考试。
func Aggregate(now time.Time, loc *time.Location, src Sources, matcher *NameMatcher) *Aggregation {
	if loc == nil {
		loc = time.Local
	}
	ref := now.In(loc)
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	weekday := ISOWeekday(ref)

	a := &Aggregation{
		Now:     ref,
		byID:    make(map[string]*bucket),
		byName:  make(map[string]*bucket),
		matcher: matcher,
	}

	for _, b := range src.Bookings {
		if b.Status != BookingApproved || b.RoomID == "" || !b.overlapsDay(dayStart, dayEnd) {
			continue
		}
		a.add(bucketFor(a.byID, b.RoomID), b, ref, loc)
	}

	for _, l := range src.Lectures {
		if l.DayOfWeek != weekday {
			continue
		}
		key := matcher.Key(l.RoomName)
		if key == "" {
			continue
		}
		a.add(bucketFor(a.byName, key), l, ref, loc)
	}

	for _, e := range src.Exams {
		if e.TakeHome || e.RoomID == "" || !e.onDate(ref) {
			continue
		}
		a.add(bucketFor(a.byID, e.RoomID), e, ref, loc)
	}

	return a
}

func bucketFor(index map[string]*bucket, key string) *bucket {
	bk, ok := index[key]
	if !ok {
		bk = &bucket{}
		index[key] = bk
	}
	return bk
}

func (a *Aggregation) add(bk *bucket, s Schedule, ref time.Time, loc *time.Location) {
	bk.seen = true

	w, err := s.Window(ref, loc)
	if err != nil {
		if !errors.Is(err, ErrMissingTime) {
			a.Skipped = append(a.Skipped, Skipped{Kind: s.Kind(), RecordID: s.RecordID(), Err: err})
		}
		return
	}

	bk.entries = append(bk.entries, Entry{
		Kind:     s.Kind(),
		RecordID: s.RecordID(),
		Label:    s.Label(),
		Window:   w,
		Active:   w.Contains(ref),
	})
}

// For 返回房间的冲突集合：ID 索引在前，名称索引在后
func (a *Aggregation) For(room RoomRef) RoomConflicts {
	var c RoomConflicts

	if bk, ok := a.byID[room.ID]; ok && room.ID != "" {
		c.HasAnyToday = c.HasAnyToday || bk.seen
		for _, e := range bk.entries {
			if !e.Active {
				continue
			}
			switch e.Kind {
			case KindBooking:
				c.Bookings = append(c.Bookings, e)
			case KindExam:
				c.Exams = append(c.Exams, e)
			}
		}
	}

	if key := a.matcher.Key(room.Name); key != "" {
		if bk, ok := a.byName[key]; ok {
			c.HasAnyToday = c.HasAnyToday || bk.seen
			for _, e := range bk.entries {
				if e.Active {
					c.Lectures = append(c.Lectures, e)
				}
			}
		}
	}

	return c
}

// Entries 返回房间当天全部已解析记录，按开始时间排序
func (a *Aggregation) Entries(room RoomRef) []Entry {
	var out []Entry
	if bk, ok := a.byID[room.ID]; ok && room.ID != "" {
		out = append(out, bk.entries...)
	}
	if key := a.matcher.Key(room.Name); key != "" {
		if bk, ok := a.byName[key]; ok {
			out = append(out, bk.entries...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Window.Start.Before(out[j].Window.Start)
	})
	return out
}
