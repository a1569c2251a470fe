package engine

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ── 星期 ──

// Day 工作日（1=Monday … 5=Friday）
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Weekdays 全部工作日（升序）
var Weekdays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

var dayNames = map[Day]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
}

var titleCaser = cases.Title(language.English)

// String 返回规范星期名，如 "Monday"
func (d Day) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Day(%d)", int(d))
}

// Valid 是否为五个工作日之一
func (d Day) Valid() bool {
	return d >= Monday && d <= Friday
}

// ParseDay 解析星期名（大小写不敏感），仅接受周一至周五
func ParseDay(s string) (Day, error) {
	name := titleCaser.String(strings.ToLower(strings.TrimSpace(s)))
	for d, n := range dayNames {
		if n == name {
			return d, nil
		}
	}
	return 0, &ValidationError{Field: "day", Message: fmt.Sprintf("无效的星期: %q", s)}
}

// ── 时刻 ──

// Clock 一天中的分钟数（00:00 = 0）
type Clock int

// ParseClock 解析 24 小时制 "HH:MM"
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, &ValidationError{Field: "time", Message: fmt.Sprintf("无效的时间: %q", s)}
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// MustClock 解析常量时间，失败时 panic（仅用于默认值与测试）
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String 格式化为 "HH:MM"
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Add 时刻加时长（按分钟截断）
func (c Clock) Add(d time.Duration) Clock {
	return c + Clock(d/time.Minute)
}

// ── 时间区间 ──

// TimeSpan 某个工作日上的半开区间 [Start, End)
type TimeSpan struct {
	Day   Day
	Start Clock
	End   Clock
}

// NewTimeSpan 从字符串构造区间并校验 start < end
func NewTimeSpan(day, start, end string) (TimeSpan, error) {
	d, err := ParseDay(day)
	if err != nil {
		return TimeSpan{}, err
	}
	st, err := ParseClock(start)
	if err != nil {
		return TimeSpan{}, withField(err, "start_time")
	}
	en, err := ParseClock(end)
	if err != nil {
		return TimeSpan{}, withField(err, "end_time")
	}
	span := TimeSpan{Day: d, Start: st, End: en}
	if err := span.Validate(); err != nil {
		return TimeSpan{}, err
	}
	return span, nil
}

// Validate 校验星期合法且 start < end
func (s TimeSpan) Validate() error {
	if !s.Day.Valid() {
		return &ValidationError{Field: "day", Message: fmt.Sprintf("无效的星期: %d", int(s.Day))}
	}
	if s.Start >= s.End {
		return &ValidationError{Field: "end_time", Message: fmt.Sprintf("结束时间 %s 必须晚于开始时间 %s", s.End, s.Start)}
	}
	return nil
}

// Duration 区间时长
func (s TimeSpan) Duration() time.Duration {
	return time.Duration(s.End-s.Start) * time.Minute
}

// Slot 转为对外的字符串三元组
func (s TimeSpan) Slot() TimeSlot {
	return TimeSlot{
		DayOfWeek: s.Day.String(),
		StartTime: s.Start.String(),
		EndTime:   s.End.String(),
	}
}

// String 便于日志与测试输出
func (s TimeSpan) String() string {
	return fmt.Sprintf("%s %s-%s", s.Day, s.Start, s.End)
}

// Overlaps 半开区间重叠判断：同一天且 a.Start < b.End && b.Start < a.End。
// 端点相接（a.End == b.Start）不算冲突。
func Overlaps(a, b TimeSpan) bool {
	return a.Day == b.Day && a.Start < b.End && b.Start < a.End
}

// TimeSlot 对外输出的时段 {dayOfWeek, startTime, endTime}
type TimeSlot struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Span 解析回 TimeSpan
func (t TimeSlot) Span() (TimeSpan, error) {
	return NewTimeSpan(t.DayOfWeek, t.StartTime, t.EndTime)
}

// ── 工作时间 ──

const (
	// DefaultAvailabilityDuration 可用性查询的默认时段长度
	DefaultAvailabilityDuration = time.Hour
	// DefaultLectureDuration 排课 / 调课的默认时段长度
	DefaultLectureDuration = 90 * time.Minute
	// DefaultSlotStep 候选时段起点的对齐步长（整点与半点）
	DefaultSlotStep = 30 * time.Minute
)

// WorkingHours 工作时间窗口：Days 中每天的 [Start, End)
type WorkingHours struct {
	Days  []Day
	Start Clock
	End   Clock
	Step  time.Duration
}

// DefaultWorkingHours 周一至周五 09:00–17:00，半点对齐
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{
		Days:  append([]Day(nil), Weekdays...),
		Start: MustClock("09:00"),
		End:   MustClock("17:00"),
		Step:  DefaultSlotStep,
	}
}

// Validate 校验工作时间配置
func (w WorkingHours) Validate() error {
	if len(w.Days) == 0 {
		return &ValidationError{Field: "days", Message: "工作日不能为空"}
	}
	for _, d := range w.Days {
		if !d.Valid() {
			return &ValidationError{Field: "days", Message: fmt.Sprintf("无效的工作日: %d", int(d))}
		}
	}
	if w.Start < 0 || w.End > 24*60 || w.Start >= w.End {
		return &ValidationError{Field: "hours", Message: fmt.Sprintf("无效的工作时间 %s-%s", w.Start, w.End)}
	}
	if w.Step < time.Minute || w.Step%time.Minute != 0 {
		return &ValidationError{Field: "step", Message: "对齐步长必须为正整数分钟"}
	}
	return nil
}

// Contains 区间是否完整落在某个工作日的工作时间内
func (w WorkingHours) Contains(span TimeSpan) bool {
	if span.Start < w.Start || span.End > w.End || span.Start >= span.End {
		return false
	}
	for _, d := range w.Days {
		if d == span.Day {
			return true
		}
	}
	return false
}

// Aligned 起点是否落在对齐网格上
func (w WorkingHours) Aligned(span TimeSpan) bool {
	step := int(w.Step / time.Minute)
	return step > 0 && int(span.Start-w.Start)%step == 0
}

// candidates 按 星期升序 → 开始时间升序 枚举所有对齐的候选时段
func (w WorkingHours) candidates(duration time.Duration) []TimeSpan {
	length := Clock(duration / time.Minute)
	step := Clock(w.Step / time.Minute)
	if length <= 0 || step <= 0 {
		return nil
	}

	days := sortedDays(w.Days)
	var out []TimeSpan
	for _, d := range days {
		for start := w.Start; start+length <= w.End; start += step {
			out = append(out, TimeSpan{Day: d, Start: start, End: start + length})
		}
	}
	return out
}

// sortedDays 去重并升序
func sortedDays(days []Day) []Day {
	seen := make(map[Day]bool, len(days))
	out := make([]Day, 0, len(days))
	for _, d := range Weekdays {
		for _, x := range days {
			if x == d && !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}
