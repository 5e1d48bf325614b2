package notifications

import (
	"context"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	leaderLockTTL   = 2 * time.Minute
	defaultCronSpec = "@every 30s"
)

// Worker drains the mail queue into SMTP on a cron schedule. Only the
// instance holding the leader lock delivers, so a message is never picked
// up by two replicas in the same run.
type Worker struct {
	log    *zap.Logger
	cfg    *config.InternalConfig
	locker contracts.LockerService
	queue  contracts.MailQueue
	sender contracts.MailSender
	cron   *cron.Cron
	spec   string
	runCtx context.Context
	cancel context.CancelFunc
}

func NewWorker(log *zap.Logger, cfg *config.InternalConfig, lockerSvc contracts.LockerService, queue contracts.MailQueue, sender contracts.MailSender) *Worker {
	return &Worker{log: log, cfg: cfg, locker: lockerSvc, queue: queue, sender: sender}
}

func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)

	c := cron.New()
	spec := w.cfg.NotificationWorker.CronSpec
	if _, err := c.AddFunc(spec, func() { w.RunOnce(w.runCtx) }); err != nil {
		w.log.Warn("notifications.Worker invalid cron spec, falling back to default",
			zap.String(constvars.LoggingCronSpecKey, spec),
			zap.Error(err),
		)
		c = cron.New()
		spec = defaultCronSpec
		if _, err := c.AddFunc(spec, func() { w.RunOnce(w.runCtx) }); err != nil {
			w.log.Error("notifications.Worker failed to schedule default cron spec",
				zap.String(constvars.LoggingCronSpecKey, spec),
				zap.Error(err),
			)
			return
		}
	}
	c.Start()
	w.cron = c
	w.spec = spec

	w.log.Info("notifications.Worker started", zap.String(constvars.LoggingCronSpecKey, spec))
}

// Stop cancels in-flight deliveries and waits for the running job to return.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
	w.log.Info("notifications.Worker stopped")
}

func (w *Worker) RunOnce(ctx context.Context) {
	acquired, token, err := w.locker.TryLock(ctx, constvars.RedisKeyNotificationLeaderLock, leaderLockTTL)
	if err != nil {
		w.log.Warn("notifications.Worker leader lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		w.log.Debug("notifications.Worker leader lock held by another instance")
		return
	}
	defer func() {
		if err := w.locker.Unlock(context.WithoutCancel(ctx), constvars.RedisKeyNotificationLeaderLock, token); err != nil {
			w.log.Warn("notifications.Worker leader unlock failed", zap.Error(err))
		}
	}()

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go w.keepLeadership(refreshCtx, token)

	maxBatch := w.cfg.NotificationWorker.MaxBatch
	if maxBatch <= 0 {
		maxBatch = 1
	}
	items, err := w.queue.FetchN(ctx, maxBatch)
	if err != nil {
		w.log.Warn("notifications.Worker fetch failed", zap.Error(err))
		return
	}
	if len(items) > 0 {
		w.log.Info("notifications.Worker fetched emails", zap.Int("fetched_count", len(items)))
	}

	for _, item := range items {
		if ctx.Err() != nil {
			// not yet attempted, hand it back untouched
			w.nack(context.WithoutCancel(ctx), item)
			continue
		}
		w.processItem(ctx, item)
	}
}

func (w *Worker) keepLeadership(ctx context.Context, token string) {
	tick := time.NewTicker(leaderLockTTL / 2)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if err := w.locker.Refresh(ctx, constvars.RedisKeyNotificationLeaderLock, token, leaderLockTTL); err != nil {
				w.log.Warn("notifications.Worker failed to refresh leader lock", zap.Error(err))
			}
		}
	}
}

func (w *Worker) processItem(ctx context.Context, item requests.QueuedEmail) {
	payload := item.Payload
	fields := []zap.Field{
		zap.String(constvars.LoggingMessageIDKey, payload.ID),
		zap.Int(constvars.LoggingFailedCountKey, payload.FailedCount),
	}

	err := w.sender.Send(ctx, &payload)
	if err == nil {
		if ackErr := w.queue.Ack(ctx, item.DeliveryTag); ackErr != nil {
			w.log.Warn("notifications.Worker ack failed after delivery", append(fields, zap.Error(ackErr))...)
			return
		}
		w.log.Info("notifications.Worker email delivered", fields...)
		return
	}

	payload.FailedCount++
	fields = append(fields, zap.Error(err))

	if payload.FailedCount >= w.cfg.NotificationWorker.MaxRetry {
		if dlqErr := w.queue.EnqueueToDeadQueue(ctx, &payload); dlqErr != nil {
			w.log.Error("notifications.Worker enqueue to dead letter queue failed", append(fields, zap.NamedError("dlq_error", dlqErr))...)
			w.nack(ctx, item)
			return
		}
		w.ack(ctx, item)
		w.log.Warn("notifications.Worker email moved to dead letter queue", fields...)
		return
	}

	if requeueErr := w.queue.Reenqueue(ctx, &payload); requeueErr != nil {
		w.log.Error("notifications.Worker reenqueue failed", append(fields, zap.NamedError("reenqueue_error", requeueErr))...)
		w.nack(ctx, item)
		return
	}
	w.ack(ctx, item)
	w.log.Info("notifications.Worker delivery failed, requeued", fields...)
}

// ack settles a delivery whose message now lives elsewhere. A failed ack
// leaves it on the queue, so it may be delivered again.
func (w *Worker) ack(ctx context.Context, item requests.QueuedEmail) {
	if err := w.queue.Ack(ctx, item.DeliveryTag); err != nil {
		w.log.Error("notifications.Worker ack failed, message may be delivered twice",
			zap.String(constvars.LoggingMessageIDKey, item.Payload.ID),
			zap.Uint64(constvars.LoggingDeliveryTagKey, item.DeliveryTag),
			zap.Error(err),
		)
	}
}

func (w *Worker) nack(ctx context.Context, item requests.QueuedEmail) {
	if err := w.queue.Nack(ctx, item.DeliveryTag); err != nil {
		w.log.Error("notifications.Worker nack failed, message stays unacked until the channel closes",
			zap.String(constvars.LoggingMessageIDKey, item.Payload.ID),
			zap.Uint64(constvars.LoggingDeliveryTagKey, item.DeliveryTag),
			zap.Error(err),
		)
	}
}
