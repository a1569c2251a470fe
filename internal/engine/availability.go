package engine

import "time"

// AvailabilityFilter 可用性查询条件，至少指定教室或教师之一
type AvailabilityFilter struct {
	Room       string
	Instructor string
}

func (f AvailabilityFilter) participants() []Participant {
	var ps []Participant
	if f.Room != "" {
		ps = append(ps, Classroom(f.Room))
	}
	if f.Instructor != "" {
		ps = append(ps, Teacher(f.Instructor))
	}
	return ps
}

// FindAvailable 枚举本周所有对齐候选时段，返回指定教室 / 教师均空闲的时段。
// duration <= 0 时使用 DefaultAvailabilityDuration。结果可能为空切片，不视为错误。
func (e *Engine) FindAvailable(snap *Snapshot, f AvailabilityFilter, duration time.Duration) ([]TimeSlot, error) {
	ps := f.participants()
	if len(ps) == 0 {
		return nil, &ValidationError{Field: "room", Message: "教室与教师至少指定一项"}
	}
	if duration <= 0 {
		duration = DefaultAvailabilityDuration
	}
	return e.search(snap, ps, duration, "", 0), nil
}
