package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwait_Resolves(t *testing.T) {
	got, err := Await(context.Background(), func(resolve func(int), _ func(error)) OperationTask {
		task := NewTask()
		Goroutine.Execute(func() {
			task.MarkDone()
			resolve(42)
		})
		return task
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestAwait_Rejects(t *testing.T) {
	boom := errors.New("boom")

	_, err := Await(context.Background(), func(_ func(string), reject func(error)) OperationTask {
		reject(boom)
		return NewTask()
	})

	assert.ErrorIs(t, err, boom)
}

func TestAwait_ContextCancelsTask(t *testing.T) {
	task := NewTask()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Await(ctx, func(func(int), func(error)) OperationTask {
		return task
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, task.IsCancelled())
}

func TestAwait_SecondOutcomeIgnored(t *testing.T) {
	got, err := Await(context.Background(), func(resolve func(int), reject func(error)) OperationTask {
		resolve(1)
		reject(errors.New("late"))
		resolve(2)
		return NewTask()
	})

	require.NoError(t, err)
	assert.Equal(t, 1, got)
}
