package engine

import (
	"fmt"
	"time"
)

// Engine 确定性排课查询引擎，仅持有只读的工作时间配置
type Engine struct {
	hours WorkingHours
}

// New 创建引擎；工作时间非法时返回 ValidationError
func New(hours WorkingHours) (*Engine, error) {
	if err := hours.Validate(); err != nil {
		return nil, err
	}
	hours.Days = sortedDays(hours.Days)
	return &Engine{hours: hours}, nil
}

// Default 周一至周五 09:00–17:00 的引擎
func Default() *Engine {
	e, _ := New(DefaultWorkingHours())
	return e
}

// Hours 返回工作时间配置
func (e *Engine) Hours() WorkingHours {
	return e.hours
}

// search 按 星期 → 开始时间 顺序扫描候选时段，保留所有参与方均空闲的时段。
// limit > 0 时找到 limit 个即停止。
func (e *Engine) search(snap *Snapshot, ps []Participant, duration time.Duration, excludeID string, limit int) []TimeSlot {
	out := []TimeSlot{}
	for _, span := range e.hours.candidates(duration) {
		if !snap.allFree(ps, span, excludeID) {
			continue
		}
		out = append(out, span.Slot())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// ────── 新排课 ──────

// ScheduleNew 返回教师与教室均空闲的第一个时段；整周无空闲时返回 NoSlotError
func (e *Engine) ScheduleNew(snap *Snapshot, teacherID, classroomID string, duration time.Duration) (TimeSlot, error) {
	if teacherID == "" {
		return TimeSlot{}, &ValidationError{Field: "teacher_id", Message: "教师不能为空"}
	}
	if classroomID == "" {
		return TimeSlot{}, &ValidationError{Field: "classroom_id", Message: "教室不能为空"}
	}
	if duration <= 0 {
		duration = DefaultLectureDuration
	}

	ps := []Participant{Teacher(teacherID), Classroom(classroomID)}
	found := e.search(snap, ps, duration, "", 1)
	if len(found) == 0 {
		return TimeSlot{}, &NoSlotError{
			Reason: fmt.Sprintf("教师 %s 与教室 %s 本周没有共同的 %d 分钟空闲时段", teacherID, classroomID, int(duration/time.Minute)),
		}
	}
	return found[0], nil
}

// ────── 调课 ──────

// RescheduleQuery 调课候选查询：教师、教室与全部学生须同时空闲
type RescheduleQuery struct {
	TeacherID        string
	ClassroomID      string
	StudentIDs       []string
	ExcludeLectureID string
}

func (q RescheduleQuery) participants() []Participant {
	ps := make([]Participant, 0, len(q.StudentIDs)+2)
	ps = append(ps, Teacher(q.TeacherID), Classroom(q.ClassroomID))
	for _, id := range q.StudentIDs {
		ps = append(ps, Student(id))
	}
	return ps
}

// FindRescheduleSlots 返回所有满足条件的候选时段（可能为空）
func (e *Engine) FindRescheduleSlots(snap *Snapshot, q RescheduleQuery, duration time.Duration) ([]TimeSlot, error) {
	if q.TeacherID == "" {
		return nil, &ValidationError{Field: "teacher_id", Message: "教师不能为空"}
	}
	if q.ClassroomID == "" {
		return nil, &ValidationError{Field: "classroom_id", Message: "教室不能为空"}
	}
	if duration <= 0 {
		duration = DefaultLectureDuration
	}
	return e.search(snap, q.participants(), duration, q.ExcludeLectureID, 0), nil
}

// QueryFor 由已有课程构造调课查询（排除课程自身）
func QueryFor(l Lecture) RescheduleQuery {
	return RescheduleQuery{
		TeacherID:        l.TeacherID,
		ClassroomID:      l.ClassroomID,
		StudentIDs:       append([]string(nil), l.StudentIDs...),
		ExcludeLectureID: l.ID,
	}
}

// RescheduleSlotsFor 为快照中的某门课程查找调课时段，时长沿用课程原时长
func (e *Engine) RescheduleSlotsFor(snap *Snapshot, lectureID string) ([]TimeSlot, error) {
	l, ok := snap.Lecture(lectureID)
	if !ok {
		return nil, &NotFoundError{Kind: "lecture", ID: lectureID}
	}
	return e.FindRescheduleSlots(snap, QueryFor(l), l.Span.Duration())
}

// ────── 提交前复核 ──────

// CheckSlot 复核目标时段：须在工作时间内、落在对齐网格上，且所有参与方空闲。
// 冲突时返回 ConflictError，越界时返回 ValidationError。
func (e *Engine) CheckSlot(snap *Snapshot, q RescheduleQuery, span TimeSpan) error {
	if err := span.Validate(); err != nil {
		return err
	}
	if !e.hours.Contains(span) {
		return &ValidationError{Field: "slot", Message: fmt.Sprintf("时段 %s 超出工作时间", span)}
	}
	if !e.hours.Aligned(span) {
		return &ValidationError{Field: "slot", Message: fmt.Sprintf("时段 %s 未对齐到 %d 分钟网格", span, int(e.hours.Step/time.Minute))}
	}
	if ce, busy := snap.firstConflict(q.participants(), span, q.ExcludeLectureID); busy {
		return ce
	}
	return nil
}
