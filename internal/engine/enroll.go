package engine

// CanEnroll 候选课程与学生现有的任一未取消课程都不重叠时返回 true。
// 已取消的候选课程不可选。纯函数，不修改任何输入。
func CanEnroll(current []Lecture, candidate Lecture) bool {
	if !candidate.Active() {
		return false
	}
	for _, l := range current {
		if l.Active() && Overlaps(l.Span, candidate.Span) {
			return false
		}
	}
	return true
}

// CanEnroll 在快照上判断学生能否选修指定课程。
// 已选该课程的学生返回 false（课程与自身重叠）。
func (s *Snapshot) CanEnroll(studentID, lectureID string) (bool, error) {
	if studentID == "" {
		return false, &ValidationError{Field: "student_id", Message: "学生不能为空"}
	}
	candidate, ok := s.Lecture(lectureID)
	if !ok {
		return false, &NotFoundError{Kind: "lecture", ID: lectureID}
	}
	return CanEnroll(s.LecturesOf(Student(studentID)), candidate), nil
}
