package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/moomingle/go-backend/internal/usecase"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/logger"
)

const (
	outboxChannel   = "outbox_pending"
	outboxBatchSize = 10
	// Страховочный интервал: если NOTIFY потерялся (reconnect, рестарт),
	// зависшие события подберёт периодический обход.
	sweepInterval = time.Minute
)

// OutboxWorker перекладывает события из таблицы outbox_events в Kafka.
// Основной триггер — NOTIFY из транзакции импорта, периодический обход
// добирает то, что уведомления пропустили.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	stop      chan struct{}
	wg        sync.WaitGroup
	dbConnStr string
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dbConnStr string,
) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		stop:      make(chan struct{}),
		dbConnStr: dbConnStr,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.sweep(ctx)
	}()
	go func() {
		defer w.wg.Done()
		w.listen(ctx)
	}()
}

func (w *OutboxWorker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

// sweep дренирует накопившиеся события при старте и затем по таймеру.
func (w *OutboxWorker) sweep(ctx context.Context) {
	w.logger.Infof("outbox worker: draining pending events")
	w.drain(ctx)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("outbox worker: sweep loop stopped")
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// listen держит выделенное соединение с LISTEN и дренирует outbox по
// каждому уведомлению. При обрыве соединения переподключается.
func (w *OutboxWorker) listen(ctx context.Context) {
	var conn *pgx.Conn

	connect := func() error {
		var err error
		conn, err = pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("outbox listen connect", err)
		}
		if _, err := conn.Exec(ctx, "LISTEN "+outboxChannel); err != nil {
			conn.Close(ctx)
			return e.Wrap("outbox LISTEN", err)
		}
		w.logger.Infof("outbox worker: subscribed to %q", outboxChannel)
		return nil
	}

	if err := connect(); err != nil {
		w.logger.Warnf("outbox worker: initial connect failed, relying on sweep only: %v", err)
		return
	}
	defer conn.Close(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		switch {
		case err == nil:
			if notif.Channel == outboxChannel {
				w.logger.Debugf("outbox worker: notification received")
				w.drain(ctx)
			}
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			continue
		default:
			w.logger.Warnf("outbox worker: connection lost, reconnecting: %v", err)
			conn.Close(ctx)
			time.Sleep(2 * time.Second)
			if err := connect(); err != nil {
				w.logger.Warnf("outbox worker: reconnect failed: %v", err)
				time.Sleep(5 * time.Second)
			}
		}
	}
}

// drain обрабатывает батчи, пока очередь не опустеет.
func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("outbox worker: batch failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, outboxBatchSize)
	if err != nil {
		return false, err
	}
	if len(events) == 0 {
		return false, nil
	}

	for _, event := range events {
		if err := w.relay(ctx, event); err != nil {
			// Событие остаётся в processing; после таймаута зависания его
			// снова заберёт очередной обход.
			w.logger.Warnf("outbox worker: relay event %d failed: %v", event.ID, err)
			continue
		}
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("outbox worker: mark processed %d failed: %v", event.ID, err)
		}
	}

	return true, nil
}

// relay публикует событие в Kafka с ключом агрегата, чтобы события одного
// листинга попадали в одну партицию.
func (w *OutboxWorker) relay(ctx context.Context, event *usecase.OutboxEvent) error {
	err := w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.AggregateID, event.Payload))
	if err == nil {
		return nil
	}
	if isRetryableError(err) {
		return e.Wrap("temporary kafka failure", err)
	}
	return e.Wrap("permanent kafka failure", err)
}

var retryablePhrases = []string{
	"connection refused",
	"i/o timeout",
	"network is unreachable",
	"broker not available",
	"connection reset",
	"broken pipe",
	"no such host",
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
