package engine

// ── 冲突检测 ──
//
// 所有高层检查（教室忙、教师忙、学生忙）都归约为同一条规则：
// 资源在时段 S 忙 ⇔ 存在引用该资源、未取消且与 S 重叠的课程。

// Conflicts 返回参与方在 span 内的冲突课程；excludeID 对应的课程（调课时的自身）不计入
func (s *Snapshot) Conflicts(p Participant, span TimeSpan, excludeID string) []Lecture {
	var out []Lecture
	for _, l := range s.lectures {
		if l.ID == excludeID || !l.Active() {
			continue
		}
		if l.References(p) && Overlaps(l.Span, span) {
			out = append(out, l)
		}
	}
	return out
}

// IsBusy 参与方在 span 内是否有冲突
func (s *Snapshot) IsBusy(p Participant, span TimeSpan, excludeID string) bool {
	for _, l := range s.lectures {
		if l.ID == excludeID || !l.Active() {
			continue
		}
		if l.References(p) && Overlaps(l.Span, span) {
			return true
		}
	}
	return false
}

// firstConflict 返回第一个忙碌的参与方及其冲突课程
func (s *Snapshot) firstConflict(ps []Participant, span TimeSpan, excludeID string) (*ConflictError, bool) {
	for _, p := range ps {
		if cs := s.Conflicts(p, span, excludeID); len(cs) > 0 {
			return &ConflictError{Participant: p, LectureID: cs[0].ID, Span: span}, true
		}
	}
	return nil, false
}

// allFree 所有参与方在 span 内均空闲
func (s *Snapshot) allFree(ps []Participant, span TimeSpan, excludeID string) bool {
	for _, p := range ps {
		if s.IsBusy(p, span, excludeID) {
			return false
		}
	}
	return true
}
