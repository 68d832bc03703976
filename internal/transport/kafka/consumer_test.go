package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/brunomoyse/tsb-service/internal/lib/logger"
	"github.com/brunomoyse/tsb-service/internal/model"
	"github.com/brunomoyse/tsb-service/internal/service"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader отдаёт сообщения по очереди, затем io.EOF
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}
	if len(r.messages) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type fakeCreator struct {
	created []model.OrderRequest
	err     error
}

func (f *fakeCreator) CreateOrder(_ context.Context, req model.OrderRequest) (model.Order, error) {
	if f.err != nil {
		return model.Order{}, f.err
	}
	f.created = append(f.created, req)
	return model.Order{ID: uuid.New(), UserID: req.UserID, Status: model.OrderStatusOpen, Items: req.Items}, nil
}

func orderMessage(offset int64, quantity int) kafka.Message {
	value := fmt.Sprintf(`{"user_id":%q,"payment_mode":"cash","items":[{"product_id":%q,"quantity":%d}]}`,
		uuid.NewString(), uuid.NewString(), quantity)
	return kafka.Message{Topic: "orders", Offset: offset, Value: []byte(value)}
}

func TestConsumer_ProcessesAndCommits(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{orderMessage(1, 2), orderMessage(2, 1)}}
	creator := &fakeCreator{}

	newConsumer(reader, creator, logger.Discard()).Run(context.Background())

	require.Len(t, creator.created, 2)
	assert.Equal(t, int32(2), creator.created[0].Items[0].Quantity)
	assert.Equal(t, "cash", creator.created[0].PaymentMode)
	assert.Equal(t, []int64{1, 2}, reader.committed)
}

func TestConsumer_SkipsBadMessages(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{
		{Offset: 1, Value: []byte(`not json`)},
		orderMessage(2, 0), // quantity=0 не проходит валидацию
		{Offset: 3, Value: []byte(`{"user_id":"` + uuid.NewString() + `","items":[]}`)},
		orderMessage(4, 5),
	}}
	creator := &fakeCreator{}

	newConsumer(reader, creator, logger.Discard()).Run(context.Background())

	require.Len(t, creator.created, 1)
	assert.Equal(t, int32(5), creator.created[0].Items[0].Quantity)
	// битые сообщения подтверждаются, чтобы не читать их снова
	assert.Equal(t, []int64{1, 2, 3, 4}, reader.committed)
}

func TestConsumer_DoesNotCommitOnStoreFailure(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{orderMessage(7, 1)}}
	creator := &fakeCreator{err: errors.New("connection reset by peer")}

	newConsumer(reader, creator, logger.Discard()).Run(context.Background())

	assert.Empty(t, reader.committed)
}

func TestConsumer_CommitsServiceValidationRejects(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{orderMessage(9, 1)}}
	creator := &fakeCreator{err: fmt.Errorf("service.OrderService.CreateOrder: %w: payment_mode", service.ErrValidation)}

	newConsumer(reader, creator, logger.Discard()).Run(context.Background())

	assert.Equal(t, []int64{9}, reader.committed)
}

func TestConsumer_StopsOnCancelledContext(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{orderMessage(1, 1)}}
	creator := &fakeCreator{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newConsumer(reader, creator, logger.Discard())
	c.Run(ctx)

	assert.Empty(t, creator.created)
	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
}
