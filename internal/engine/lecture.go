package engine

import (
	"fmt"
	"sort"
)

// Status 课程生命周期状态
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCanceled  Status = "canceled"
)

// Valid 是否为已知状态
func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusPending, StatusCanceled:
		return true
	}
	return false
}

// Lecture 引擎视角的课程记录（与持久化模型解耦）
type Lecture struct {
	ID          string
	Subject     string
	Code        string
	TeacherID   string
	ClassroomID string
	Span        TimeSpan
	Status      Status
	StudentIDs  []string
}

// Active 已取消的课程不参与冲突检测
func (l Lecture) Active() bool {
	return l.Status != StatusCanceled
}

// References 课程是否引用了该参与方
func (l Lecture) References(p Participant) bool {
	switch p.Kind {
	case KindTeacher:
		return l.TeacherID == p.ID
	case KindClassroom:
		return l.ClassroomID == p.ID
	case KindStudent:
		for _, id := range l.StudentIDs {
			if id == p.ID {
				return true
			}
		}
	}
	return false
}

// ── 参与方 ──

// ParticipantKind 资源类型
type ParticipantKind string

const (
	KindTeacher   ParticipantKind = "teacher"
	KindClassroom ParticipantKind = "classroom"
	KindStudent   ParticipantKind = "student"
)

// Participant 任意需要判断忙闲的资源
type Participant struct {
	Kind ParticipantKind
	ID   string
}

func Teacher(id string) Participant   { return Participant{Kind: KindTeacher, ID: id} }
func Classroom(id string) Participant { return Participant{Kind: KindClassroom, ID: id} }
func Student(id string) Participant   { return Participant{Kind: KindStudent, ID: id} }

// ── 快照 ──

// Snapshot 查询时刻的全部课程记录，构造后只读。
// 引擎的每个操作都以快照为输入，自身不持有可变状态。
type Snapshot struct {
	lectures []Lecture
	index    map[string]int
}

// NewSnapshot 复制并校验课程列表，按 星期 → 开始时间 → ID 排序以保证结果可复现
func NewSnapshot(lectures []Lecture) (*Snapshot, error) {
	copied := make([]Lecture, len(lectures))
	for i, l := range lectures {
		if l.ID == "" {
			return nil, &ValidationError{Field: "id", Message: "课程 ID 不能为空"}
		}
		if err := l.Span.Validate(); err != nil {
			return nil, fmt.Errorf("课程 %s: %w", l.ID, err)
		}
		if !l.Status.Valid() {
			return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("课程 %s 状态无效: %q", l.ID, l.Status)}
		}
		l.StudentIDs = append([]string(nil), l.StudentIDs...)
		copied[i] = l
	}

	sort.SliceStable(copied, func(i, j int) bool {
		a, b := copied[i].Span, copied[j].Span
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return copied[i].ID < copied[j].ID
	})

	index := make(map[string]int, len(copied))
	for i, l := range copied {
		if _, dup := index[l.ID]; dup {
			return nil, &ValidationError{Field: "id", Message: fmt.Sprintf("课程 ID 重复: %s", l.ID)}
		}
		index[l.ID] = i
	}

	return &Snapshot{lectures: copied, index: index}, nil
}

// Len 课程数量
func (s *Snapshot) Len() int {
	return len(s.lectures)
}

// Lectures 返回全部课程的副本
func (s *Snapshot) Lectures() []Lecture {
	out := make([]Lecture, len(s.lectures))
	copy(out, s.lectures)
	return out
}

// Lecture 按 ID 查找课程
func (s *Snapshot) Lecture(id string) (Lecture, bool) {
	i, ok := s.index[id]
	if !ok {
		return Lecture{}, false
	}
	return s.lectures[i], true
}

// LecturesOf 返回引用该参与方的全部未取消课程
func (s *Snapshot) LecturesOf(p Participant) []Lecture {
	var out []Lecture
	for _, l := range s.lectures {
		if l.Active() && l.References(p) {
			out = append(out, l)
		}
	}
	return out
}
