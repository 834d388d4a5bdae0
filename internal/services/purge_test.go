package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/site-tracker/engine/internal/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEnqueuer struct{ mock.Mock }

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(task.Type())
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func TestQueuePurgerEnqueues(t *testing.T) {
	q := &mockEnqueuer{}
	q.On("EnqueueContext", "attachment:purge").Return(&asynq.TaskInfo{}, nil).Twice()
	store := newMemStore()

	res := NewQueuePurger(q, NewInlinePurger(store)).Purge(context.Background(),
		storage.FileRef{PublicID: "a"}, storage.FileRef{PublicID: "b"})
	require.True(t, res.OK())
	q.AssertExpectations(t)
}

func TestQueuePurgerFallsBackInline(t *testing.T) {
	store := newMemStore()
	store.objects["a"] = []byte("x")
	q := &mockEnqueuer{}
	q.On("EnqueueContext", "attachment:purge").Return(nil, errors.New("redis down"))

	res := NewQueuePurger(q, NewInlinePurger(store)).Purge(context.Background(), storage.FileRef{PublicID: "a"})
	require.True(t, res.OK())
	require.Zero(t, store.count())
}

func TestInlinePurgerReportsFailure(t *testing.T) {
	store := newMemStore()
	store.failDel = true
	res := NewInlinePurger(store).Purge(context.Background(), storage.FileRef{PublicID: "a"})
	require.False(t, res.OK())
	require.True(t, NewInlinePurger(store).Purge(context.Background()).OK())
}
