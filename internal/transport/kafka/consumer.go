package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/brunomoyse/tsb-service/internal/lib/logger"
	"github.com/brunomoyse/tsb-service/internal/model"
	"github.com/brunomoyse/tsb-service/internal/service"

	"github.com/segmentio/kafka-go"
)

// OrderCreator — это интерфейс, который абстрагирует консьюмер
// от конкретной реализации сервисного слоя
type OrderCreator interface {
	CreateOrder(ctx context.Context, req model.OrderRequest) (model.Order, error)
}

// messageReader описывает часть *kafka.Reader, которой пользуется консьюмер
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer представляет собой консьюмер сообщений Kafka с заказами
type Consumer struct {
	reader  messageReader
	service OrderCreator
	log     *slog.Logger
}

// NewConsumer создает новый экземпляр консьюмера
func NewConsumer(brokers []string, topic, groupID string, service OrderCreator, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
		// новая группа читает с начала топика, чтобы не потерять заказы
		StartOffset: kafka.FirstOffset,
	})

	return newConsumer(reader, service, log)
}

func newConsumer(reader messageReader, service OrderCreator, log *slog.Logger) *Consumer {
	return &Consumer{
		reader:  reader,
		service: service,
		log:     log.With(slog.String("component", "kafka_consumer")),
	}
}

// Run запускает цикл чтения сообщений из Kafka
// эта функция блокирующая, поэтому она запускается в отдельной горутине
func (c *Consumer) Run(ctx context.Context) {
	log := c.log
	log.Info("kafka consumer started")

	for {
		// проверка на отмену контекста
		select {
		case <-ctx.Done():
			log.Info("context cancelled, stopping consumer")
			return
		default:
		}

		// FetchMessage блокирует до тех пор, пока не придет новое сообщение или не возникнет ошибка
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			// если контекст был отменен во время ожидания, это нормальное завершение
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			// если ридер был закрыт, тоже выходим
			if errors.Is(err, io.EOF) {
				log.Info("kafka reader closed")
				return
			}
			log.Error("failed to fetch message", logger.Err(err))
			continue // пробуем снова
		}

		log.Debug("received message",
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
		)

		// 1. Пытаемся обработать
		if err := c.handleMessage(ctx, msg); err != nil {
			log.Error("failed to handle message", logger.Err(err), slog.Int64("offset", msg.Offset))
			// сообщение НЕ подтверждаем
			continue
		}

		// 2. Всё прошло, фиксируем offset строго ПОСЛЕ успешной обработки
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Error("failed to commit message", logger.Err(err))
		}
	}
}

// handleMessage парсит и обрабатывает одно сообщение
// nil означает "можно подтверждать": и успех, и заведомо битое сообщение
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	var req model.OrderRequest

	// распарсим JSON
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		// перечитывать это сообщение бессмысленно
		c.log.Warn("failed to unmarshal message, skipping", logger.Err(err), slog.Int64("offset", msg.Offset))
		return nil
	}

	// валидация данных
	if err := req.Validate(); err != nil {
		c.log.Warn("message validation failed, skipping",
			logger.Err(err),
			slog.String("user_id", req.UserID.String()),
		)
		return nil
	}

	// передаём заказ в сервисный слой для сохранения в БД
	order, err := c.service.CreateOrder(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.log.Warn("order rejected by service, skipping", logger.Err(err))
			return nil
		}
		return err // возвращаем ошибку, чтобы offset не был зафиксирован
	}

	c.log.Info("order successfully processed", slog.String("order_id", order.ID.String()))
	return nil
}

// Close останавливает чтение; вызывается при graceful shutdown
func (c *Consumer) Close() error {
	c.log.Info("closing kafka consumer")
	return c.reader.Close()
}
