package notifications

import (
	"context"
	"errors"
	"telemed-service/internal/app/config"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type workerFixture struct {
	worker *Worker
	locker *mockLocker
	queue  *mockMailQueue
	sender *mockMailSender
}

func newWorkerFixture(cronSpec string) *workerFixture {
	return newWorkerFixtureWithLogger(cronSpec, zap.NewNop())
}

func newWorkerFixtureWithLogger(cronSpec string, logger *zap.Logger) *workerFixture {
	cfg := &config.InternalConfig{
		NotificationWorker: config.AppNotificationWorker{
			CronSpec: cronSpec,
			MaxBatch: 10,
			MaxRetry: 3,
		},
	}
	locker := new(mockLocker)
	queue := new(mockMailQueue)
	sender := new(mockMailSender)
	return &workerFixture{
		worker: NewWorker(logger, cfg, locker, queue, sender),
		locker: locker,
		queue:  queue,
		sender: sender,
	}
}

func (fx *workerFixture) expectLeadership() {
	fx.locker.On("TryLock", mock.Anything, constvars.RedisKeyNotificationLeaderLock, leaderLockTTL).Return(true, "leader-token", nil).Once()
	fx.locker.On("Unlock", mock.Anything, constvars.RedisKeyNotificationLeaderLock, "leader-token").Return(nil).Once()
}

func queued(tag uint64, failedCount int) requests.QueuedEmail {
	return requests.QueuedEmail{
		DeliveryTag: tag,
		Payload: requests.EmailPayload{
			ID:          "msg-1",
			To:          "asha@example.com",
			Subject:     "Appointment Confirmed - RxExplain AI",
			Body:        "Hello",
			FailedCount: failedCount,
		},
	}
}

func TestWorkerRunOnce_NotLeader(t *testing.T) {
	fx := newWorkerFixture("@every 30s")
	fx.locker.On("TryLock", mock.Anything, constvars.RedisKeyNotificationLeaderLock, leaderLockTTL).Return(false, "", nil).Once()

	fx.worker.RunOnce(context.Background())

	fx.queue.AssertNotCalled(t, "FetchN", mock.Anything, mock.Anything)
}

func TestWorkerRunOnce_DeliversAndAcks(t *testing.T) {
	fx := newWorkerFixture("@every 30s")
	fx.expectLeadership()
	fx.queue.On("FetchN", mock.Anything, 10).Return([]requests.QueuedEmail{queued(1, 0)}, nil).Once()
	fx.sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	fx.queue.On("Ack", mock.Anything, uint64(1)).Return(nil).Once()

	fx.worker.RunOnce(context.Background())

	fx.queue.AssertExpectations(t)
	fx.sender.AssertExpectations(t)
	fx.locker.AssertExpectations(t)
}

func TestWorkerRunOnce_RetriesWithIncrementedCount(t *testing.T) {
	fx := newWorkerFixture("@every 30s")
	fx.expectLeadership()
	fx.queue.On("FetchN", mock.Anything, 10).Return([]requests.QueuedEmail{queued(7, 1)}, nil).Once()
	fx.sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp timeout")).Once()
	fx.queue.On("Reenqueue", mock.Anything, mock.MatchedBy(func(payload *requests.EmailPayload) bool {
		return payload.ID == "msg-1" && payload.FailedCount == 2
	})).Return(nil).Once()
	fx.queue.On("Ack", mock.Anything, uint64(7)).Return(nil).Once()

	fx.worker.RunOnce(context.Background())

	fx.queue.AssertExpectations(t)
	fx.queue.AssertNotCalled(t, "EnqueueToDeadQueue", mock.Anything, mock.Anything)
}

func TestWorkerRunOnce_MovesToDeadQueueAtMaxRetry(t *testing.T) {
	fx := newWorkerFixture("@every 30s")
	fx.expectLeadership()
	fx.queue.On("FetchN", mock.Anything, 10).Return([]requests.QueuedEmail{queued(9, 2)}, nil).Once()
	fx.sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("mailbox unavailable")).Once()
	fx.queue.On("EnqueueToDeadQueue", mock.Anything, mock.MatchedBy(func(payload *requests.EmailPayload) bool {
		return payload.FailedCount == 3
	})).Return(nil).Once()
	fx.queue.On("Ack", mock.Anything, uint64(9)).Return(nil).Once()

	fx.worker.RunOnce(context.Background())

	fx.queue.AssertExpectations(t)
	fx.queue.AssertNotCalled(t, "Reenqueue", mock.Anything, mock.Anything)
}

func TestWorkerRunOnce_NacksWhenRequeueFails(t *testing.T) {
	fx := newWorkerFixture("@every 30s")
	fx.expectLeadership()
	fx.queue.On("FetchN", mock.Anything, 10).Return([]requests.QueuedEmail{queued(4, 0)}, nil).Once()
	fx.sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp timeout")).Once()
	fx.queue.On("Reenqueue", mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()
	fx.queue.On("Nack", mock.Anything, uint64(4)).Return(nil).Once()

	fx.worker.RunOnce(context.Background())

	fx.queue.AssertExpectations(t)
	fx.queue.AssertNotCalled(t, "Ack", mock.Anything, mock.Anything)
}

func TestWorkerRunOnce_FetchErrorStops(t *testing.T) {
	fx := newWorkerFixture("@every 30s")
	fx.expectLeadership()
	fx.queue.On("FetchN", mock.Anything, 10).Return(nil, errors.New("channel closed")).Once()

	fx.worker.RunOnce(context.Background())

	fx.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	fx.locker.AssertExpectations(t)
}

func TestWorkerRunOnce_LogsFailedAckAndNack(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	fx := newWorkerFixtureWithLogger("@every 30s", zap.New(core))
	fx.expectLeadership()
	fx.queue.On("FetchN", mock.Anything, 10).Return([]requests.QueuedEmail{queued(5, 0), queued(6, 2)}, nil).Once()
	fx.sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp timeout")).Twice()
	fx.queue.On("Reenqueue", mock.Anything, mock.Anything).Return(nil).Once()
	fx.queue.On("Ack", mock.Anything, uint64(5)).Return(errors.New("channel closed")).Once()
	fx.queue.On("EnqueueToDeadQueue", mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()
	fx.queue.On("Nack", mock.Anything, uint64(6)).Return(errors.New("channel closed")).Once()

	fx.worker.RunOnce(context.Background())

	fx.queue.AssertExpectations(t)
	assert.Equal(t, 1, logs.FilterMessageSnippet("Worker ack failed").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("Worker nack failed").Len())

	acked := logs.FilterMessageSnippet("Worker ack failed").All()[0]
	assert.Equal(t, uint64(5), acked.ContextMap()[constvars.LoggingDeliveryTagKey])
}

func TestWorkerStartStop_InvalidSpecFallsBack(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fx := newWorkerFixtureWithLogger("not a cron spec", zap.New(core))

	fx.worker.Start(context.Background())
	require.NotNil(t, fx.worker.cron)
	assert.Len(t, fx.worker.cron.Entries(), 1)
	assert.Equal(t, defaultCronSpec, fx.worker.spec)

	started := logs.FilterMessage("notifications.Worker started").All()
	require.Len(t, started, 1)
	assert.Equal(t, defaultCronSpec, started[0].ContextMap()[constvars.LoggingCronSpecKey])
	fx.worker.Stop()
}
