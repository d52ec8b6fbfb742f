package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/learnpet/learnpet/events"
	"github.com/learnpet/learnpet/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	svc            TaskService
	taskRepo       *fakeTaskRepo
	submissionRepo *fakeSubmissionRepo
	classRepo      *fakeClassRepo
	pointsRepo     *fakePointsRepo
	publisher      *fakePublisher
	classID        uint
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	points := newFakePointsRepo()
	f := &taskFixture{
		taskRepo:       newFakeTaskRepo(),
		submissionRepo: newFakeSubmissionRepo(points),
		classRepo:      newFakeClassRepo(),
		pointsRepo:     points,
		publisher:      &fakePublisher{},
	}
	f.svc = NewTaskService(f.taskRepo, f.submissionRepo, f.classRepo, nil, f.publisher, logrus.New())

	class := &models.Class{TeacherID: 100, Year: "2026", ClassName: "一班", Subject: "数学"}
	require.NoError(t, f.classRepo.Create(class))
	f.classID = class.ID
	return f
}

func (f *taskFixture) publish(t *testing.T, points int) *models.Task {
	t.Helper()
	task, err := f.svc.Publish(100, f.classID, "背诵课文", "背诵第三课并录音", points, time.Now().Add(72*time.Hour), "")
	require.NoError(t, err)
	return task
}

func TestPublishValidation(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.Publish(100, f.classID, "任务", "描述", 0, time.Now().Add(time.Hour), "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Publish(100, f.classID, "任务", "描述", -10, time.Now().Add(time.Hour), "")
	assert.ErrorIs(t, err, ErrValidation)

	// 非任课教师不能发布
	_, err = f.svc.Publish(101, f.classID, "任务", "描述", 10, time.Now().Add(time.Hour), "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmitAwardsPoints(t *testing.T) {
	f := newTaskFixture(t)
	task := f.publish(t, 30)
	_, err := f.classRepo.AddMember(f.classID, 1)
	require.NoError(t, err)

	submission, err := f.svc.Submit(context.Background(), 1, task.ID, "已完成录音", "")
	require.NoError(t, err)
	assert.NotZero(t, submission.ID)

	row, err := f.pointsRepo.Get(1, f.classID)
	require.NoError(t, err)
	assert.Equal(t, 30, row.TotalPoints)
}

// 重复提交被拒绝，且积分只入账一次
func TestSubmitDuplicateNoDoubleAward(t *testing.T) {
	f := newTaskFixture(t)
	task := f.publish(t, 30)
	_, err := f.classRepo.AddMember(f.classID, 1)
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), 1, task.ID, "第一次", "")
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), 1, task.ID, "第二次", "")
	assert.ErrorIs(t, err, ErrConflict)

	row, err := f.pointsRepo.Get(1, f.classID)
	require.NoError(t, err)
	assert.Equal(t, 30, row.TotalPoints)
	assert.Equal(t, 1, f.pointsRepo.awardCalls)
}

// 提交成功后发布提交事件和积分入账事件
func TestSubmitPublishesEvents(t *testing.T) {
	f := newTaskFixture(t)
	task := f.publish(t, 30)
	_, err := f.classRepo.AddMember(f.classID, 1)
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), 1, task.ID, "内容", "")
	require.NoError(t, err)

	types := f.publisher.eventTypes()
	assert.Contains(t, types, events.EventTaskSubmitted)
	assert.Contains(t, types, events.EventPointsAwarded)
}

// 入账失败时提交一并回滚，不会留下没有积分的提交
func TestSubmitAwardFailureRollsBack(t *testing.T) {
	f := newTaskFixture(t)
	task := f.publish(t, 30)
	_, err := f.classRepo.AddMember(f.classID, 1)
	require.NoError(t, err)
	f.pointsRepo.awardErr = errors.New("db down")

	_, err = f.svc.Submit(context.Background(), 1, task.ID, "内容", "")
	require.Error(t, err)

	_, err = f.svc.MySubmission(1, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.publisher.eventTypes())
}

func TestSubmitRequiresMembership(t *testing.T) {
	f := newTaskFixture(t)
	task := f.publish(t, 30)

	_, err := f.svc.Submit(context.Background(), 2, task.ID, "内容", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTaskVisibilityGating(t *testing.T) {
	f := newTaskFixture(t)
	task := f.publish(t, 10)
	_, err := f.classRepo.AddMember(f.classID, 1)
	require.NoError(t, err)

	// 成员学生和任课教师可见
	_, err = f.svc.Get(1, models.RoleStudent, task.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(100, models.RoleTeacher, task.ID)
	assert.NoError(t, err)

	// 非成员学生和其他教师不可见
	_, err = f.svc.Get(2, models.RoleStudent, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(101, models.RoleTeacher, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListSubmissionsOwnerOnly(t *testing.T) {
	f := newTaskFixture(t)
	task := f.publish(t, 10)
	_, err := f.classRepo.AddMember(f.classID, 1)
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), 1, task.ID, "内容", "")
	require.NoError(t, err)

	submissions, err := f.svc.ListSubmissions(100, task.ID)
	require.NoError(t, err)
	assert.Len(t, submissions, 1)

	_, err = f.svc.ListSubmissions(101, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMySubmission(t *testing.T) {
	f := newTaskFixture(t)
	task := f.publish(t, 10)
	_, err := f.classRepo.AddMember(f.classID, 1)
	require.NoError(t, err)

	_, err = f.svc.MySubmission(1, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Submit(context.Background(), 1, task.ID, "内容", "")
	require.NoError(t, err)

	submission, err := f.svc.MySubmission(1, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "内容", submission.Description)
}
