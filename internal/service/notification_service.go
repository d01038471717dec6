package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/models"
	"github.com/provaboard/prova-api/internal/observability"
	"github.com/provaboard/prova-api/internal/repository"
)

// streamBuffer bounds each dashboard stream; slow consumers drop events
// rather than block the publisher.
const streamBuffer = 16

// natsQueue groups prova nodes so each remote event is relayed once.
const natsQueue = "prova-notifications"

// NotificationService persists recruiter notifications (correction ready,
// invitation activity) and streams them to connected dashboards. Nodes behind
// a load balancer relay events to each other over Redis pub/sub and NATS so a
// recruiter sees the event no matter which node their SSE stream landed on.
type NotificationService interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
	NotifyUser(ctx context.Context, userID uint, title, message string) error
	List(ctx context.Context, userID string, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id uint, userID string) (dto.NotificationResponse, error)
	Subscribe(userID string) (<-chan dto.NotificationResponse, func())
	Start(ctx context.Context)
}

type notificationService struct {
	repo         repository.NotificationRepository
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
	sanitizer    *bluemonday.Policy
	streams      *dashboardStreams
	nodeID       string
}

// fanoutEnvelope is the wire form exchanged between prova nodes. NodeID lets
// the originating node ignore its own relayed copy.
type fanoutEnvelope struct {
	NodeID       string                   `json:"node_id"`
	Notification dto.NotificationResponse `json:"notification"`
	EmittedAt    time.Time                `json:"emitted_at"`
}

// dashboardStreams tracks the open SSE streams per recruiter.
type dashboardStreams struct {
	mu      sync.RWMutex
	streams map[string]map[chan dto.NotificationResponse]struct{}
}

// fanoutNames derives the redis channel and NATS subject from the configured
// topic, e.g. "topic" -> "topic:notifications" / "topic.notifications".
func fanoutNames(topic string) (string, string) {
	if topic == "" {
		return "", ""
	}

	return topic + ":notifications", strings.ReplaceAll(topic, ":", ".") + ".notifications"
}

// NewNotificationService constructs a notification service. redisClient and
// natsConn may be nil; fan-out over the missing transport is skipped.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, topic string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) NotificationService {
	channel, subject := fanoutNames(topic)

	return &notificationService{
		repo:         repo,
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		validator:    validate,
		logger:       logger.With().Str("component", "notification_service").Logger(),
		tracer:       otel.Tracer("github.com/provaboard/prova-api/internal/service/notification"),
		sanitizer:    bluemonday.StrictPolicy(),
		streams: &dashboardStreams{
			streams: make(map[string]map[chan dto.NotificationResponse]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

// Start launches the relay consumers. They exit when ctx is cancelled.
func (s *notificationService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.relayRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.relayNATS(ctx)
	}
}

func (s *notificationService) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NotificationResponse{}, err
	}

	// Messages can embed exam titles typed by recruiters; strip any markup
	// before the text reaches a dashboard.
	message := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if message == "" {
		return dto.NotificationResponse{}, errors.New("notification message empty after sanitization")
	}

	spanCtx, span := s.tracer.Start(ctx, "notification.publish", trace.WithAttributes(
		attribute.String("notification.user_id", payload.UserID),
		attribute.String("notification.type", payload.Type),
	))
	defer span.End()

	record := models.Notification{
		UserID:  payload.UserID,
		Type:    payload.Type,
		Message: message,
	}
	if err := s.repo.Create(spanCtx, &record); err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	response := dto.NewNotificationResponse(record)
	s.streams.push(response.UserID, response)
	if err := s.fanout(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Uint("notification_id", response.ID).Msg("notification fan-out failed")
	}

	observability.NotificationsPublishedTotal().WithLabelValues(response.Type).Inc()

	return response, nil
}

// NotifyUser is the entry point other services use, e.g. when an AI
// correction finishes or an invitation batch goes out.
func (s *notificationService) NotifyUser(ctx context.Context, userID uint, title, message string) error {
	_, err := s.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  strconv.FormatUint(uint64(userID), 10),
		Type:    title,
		Message: message,
	})

	return err
}

func (s *notificationService) List(ctx context.Context, userID string, limit, offset int) ([]dto.NotificationResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is required")
	}

	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uint, userID string) (dto.NotificationResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "notification.mark_read", trace.WithAttributes(
		attribute.String("notification.user_id", userID),
	))
	defer span.End()

	notification, err := s.repo.MarkRead(spanCtx, id, userID)
	if err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) Subscribe(userID string) (<-chan dto.NotificationResponse, func()) {
	stream := make(chan dto.NotificationResponse, streamBuffer)

	s.streams.attach(userID, stream)
	observability.SSEClientsActive().Inc()

	detach := func() {
		s.streams.detach(userID, stream)
		observability.SSEClientsActive().Dec()
	}

	return stream, detach
}

func (s *notificationService) fanout(ctx context.Context, notification dto.NotificationResponse) error {
	payload, err := json.Marshal(fanoutEnvelope{
		NodeID:       s.nodeID,
		Notification: notification,
		EmittedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}
	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *notificationService) relayRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("notification redis relay closed")
			return
		}
		s.acceptRemote([]byte(msg.Payload))
	}
}

func (s *notificationService) relayNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, natsQueue, func(msg *nats.Msg) {
		s.acceptRemote(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("subject", s.natsSubject).Msg("nats notification relay failed to start")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("nats notification relay drain failed")
		}
	}()
}

// acceptRemote delivers an event relayed from another node to the streams
// attached here. Events this node originated are already delivered locally.
func (s *notificationService) acceptRemote(payload []byte) {
	var envelope fanoutEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("unreadable notification envelope")
		return
	}

	if envelope.NodeID == s.nodeID {
		return
	}

	notification := envelope.Notification
	if notification.Type == "" {
		notification.Type = "generic"
	}

	observability.NotificationsPublishedTotal().WithLabelValues(notification.Type).Inc()
	s.streams.push(notification.UserID, notification)
}

func (d *dashboardStreams) attach(userID string, ch chan dto.NotificationResponse) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.streams[userID]; !ok {
		d.streams[userID] = make(map[chan dto.NotificationResponse]struct{})
	}
	d.streams[userID][ch] = struct{}{}
}

func (d *dashboardStreams) detach(userID string, ch chan dto.NotificationResponse) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if attached, ok := d.streams[userID]; ok {
		delete(attached, ch)
		close(ch)
		if len(attached) == 0 {
			delete(d.streams, userID)
		}
	}
}

func (d *dashboardStreams) push(userID string, notification dto.NotificationResponse) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for ch := range d.streams[userID] {
		select {
		case ch <- notification:
		default:
		}
	}
}
