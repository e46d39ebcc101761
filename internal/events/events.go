package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ===============================
// EVENT INTERFACE
// ===============================

// Event represents a domain event.
type Event interface {
	GetEventID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetTenantID() string
	GetActorID() string
}

// BaseEvent provides the common event fields.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	TenantID  string    `json:"tenant_id"`
	ActorID   string    `json:"actor_id,omitempty"`
}

func (e *BaseEvent) GetEventID() string      { return e.EventID }
func (e *BaseEvent) GetEventType() string    { return e.EventType }
func (e *BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e *BaseEvent) GetTenantID() string     { return e.TenantID }
func (e *BaseEvent) GetActorID() string      { return e.ActorID }

// ===============================
// EVENT BUS INTERFACE
// ===============================

// EventBus defines the publish and subscribe surface.
type EventBus interface {
	Publish(ctx context.Context, event Event) error
	PublishAsync(ctx context.Context, event Event) error

	Subscribe(eventType string, handler EventHandler) error
	SubscribePattern(pattern string, handler EventHandler) error
	Unsubscribe(eventType string, handler EventHandler) error

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health() error
	Stats() *EventBusStats
}

// EventHandler processes delivered events.
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
	GetHandlerID() string
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc struct {
	ID   string
	Func func(ctx context.Context, event Event) error
}

func (f EventHandlerFunc) Handle(ctx context.Context, event Event) error {
	return f.Func(ctx, event)
}

func (f EventHandlerFunc) GetHandlerID() string { return f.ID }

// NewEventHandlerFunc creates an EventHandler from a function.
func NewEventHandlerFunc(id string, fn func(ctx context.Context, event Event) error) EventHandler {
	return EventHandlerFunc{ID: id, Func: fn}
}

// EventBusStats reports bus activity.
type EventBusStats struct {
	EventsPublished int64         `json:"events_published"`
	EventsProcessed int64         `json:"events_processed"`
	EventsFailed    int64         `json:"events_failed"`
	HandlersCount   int           `json:"handlers_count"`
	QueueDepth      int           `json:"queue_depth"`
	Uptime          time.Duration `json:"uptime"`
}

// EventBusConfig holds configuration for the in-memory bus.
type EventBusConfig struct {
	BufferSize     int           `json:"buffer_size"`
	WorkerCount    int           `json:"worker_count"`
	HandlerTimeout time.Duration `json:"handler_timeout"`
}

// DefaultEventBusConfig returns sensible defaults.
func DefaultEventBusConfig() *EventBusConfig {
	return &EventBusConfig{
		BufferSize:     1000,
		WorkerCount:    4,
		HandlerTimeout: 30 * time.Second,
	}
}

// ===============================
// IN-MEMORY EVENT BUS
// ===============================

type inMemoryEventBus struct {
	mu              sync.RWMutex
	handlers        map[string][]EventHandler
	patternHandlers map[string][]EventHandler
	eventQueue      chan eventMessage
	logger          *zap.Logger
	stats           EventBusStats
	startTime       time.Time
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	bufferSize      int
	workerCount     int
	handlerTimeout  time.Duration
}

type eventMessage struct {
	ctx   context.Context
	event Event
}

// NewEventBus creates the in-memory bus.
func NewEventBus(config *EventBusConfig, logger *zap.Logger) EventBus {
	if config == nil {
		config = DefaultEventBusConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &inMemoryEventBus{
		handlers:        make(map[string][]EventHandler),
		patternHandlers: make(map[string][]EventHandler),
		eventQueue:      make(chan eventMessage, config.BufferSize),
		logger:          logger,
		startTime:       time.Now(),
		ctx:             ctx,
		cancel:          cancel,
		bufferSize:      config.BufferSize,
		workerCount:     config.WorkerCount,
		handlerTimeout:  config.HandlerTimeout,
	}
}

// Publish delivers an event to its handlers synchronously.
func (b *inMemoryEventBus) Publish(ctx context.Context, event Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	b.logger.Debug("Publishing event",
		zap.String("event_id", event.GetEventID()),
		zap.String("event_type", event.GetEventType()),
	)

	if err := b.processEvent(ctx, event); err != nil {
		b.mu.Lock()
		b.stats.EventsFailed++
		b.mu.Unlock()
		return err
	}

	b.mu.Lock()
	b.stats.EventsPublished++
	b.stats.EventsProcessed++
	b.mu.Unlock()
	return nil
}

// PublishAsync enqueues an event for delivery by the worker pool.
func (b *inMemoryEventBus) PublishAsync(ctx context.Context, event Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	select {
	case b.eventQueue <- eventMessage{ctx: ctx, event: event}:
		b.mu.Lock()
		b.stats.EventsPublished++
		b.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("event queue is full")
	}
}

// Subscribe registers a handler for an exact event type.
func (b *inMemoryEventBus) Subscribe(eventType string, handler EventHandler) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.stats.HandlersCount++

	b.logger.Info("Handler subscribed",
		zap.String("event_type", eventType),
		zap.String("handler_id", handler.GetHandlerID()),
	)
	return nil
}

// SubscribePattern registers a handler for a type pattern, e.g.
// "suggestion.*" matches every suggestion event.
func (b *inMemoryEventBus) SubscribePattern(pattern string, handler EventHandler) error {
	if pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.patternHandlers[pattern] = append(b.patternHandlers[pattern], handler)
	b.stats.HandlersCount++

	b.logger.Info("Pattern handler subscribed",
		zap.String("pattern", pattern),
		zap.String("handler_id", handler.GetHandlerID()),
	)
	return nil
}

// Unsubscribe removes a handler by ID for an event type.
func (b *inMemoryEventBus) Unsubscribe(eventType string, handler EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[eventType]
	for i, h := range handlers {
		if h.GetHandlerID() == handler.GetHandlerID() {
			b.handlers[eventType] = append(handlers[:i], handlers[i+1:]...)
			b.stats.HandlersCount--
			return nil
		}
	}
	return fmt.Errorf("handler not found")
}

// Start launches the worker pool for async delivery.
func (b *inMemoryEventBus) Start(ctx context.Context) error {
	b.logger.Info("Starting event bus", zap.Int("worker_count", b.workerCount))
	for i := 0; i < b.workerCount; i++ {
		b.wg.Add(1)
		go b.worker(i)
	}
	return nil
}

// Stop drains the workers, bounded by ctx.
func (b *inMemoryEventBus) Stop(ctx context.Context) error {
	b.logger.Info("Stopping event bus")
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus stop timeout")
		return ctx.Err()
	}
}

// Health reports whether the bus can accept events.
func (b *inMemoryEventBus) Health() error {
	select {
	case <-b.ctx.Done():
		return fmt.Errorf("event bus is stopped")
	default:
	}

	if depth := len(b.eventQueue); depth > b.bufferSize*80/100 {
		return fmt.Errorf("event queue is %d%% full", depth*100/b.bufferSize)
	}
	return nil
}

// Stats returns a snapshot of bus statistics.
func (b *inMemoryEventBus) Stats() *EventBusStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := b.stats
	stats.QueueDepth = len(b.eventQueue)
	stats.Uptime = time.Since(b.startTime)
	return &stats
}

func (b *inMemoryEventBus) worker(workerID int) {
	defer b.wg.Done()

	for {
		select {
		case msg := <-b.eventQueue:
			if err := b.processEvent(msg.ctx, msg.event); err != nil {
				b.logger.Error("Failed to process event",
					zap.Int("worker_id", workerID),
					zap.String("event_id", msg.event.GetEventID()),
					zap.String("event_type", msg.event.GetEventType()),
					zap.Error(err),
				)
				b.mu.Lock()
				b.stats.EventsFailed++
				b.mu.Unlock()
			} else {
				b.mu.Lock()
				b.stats.EventsProcessed++
				b.mu.Unlock()
			}
		case <-b.ctx.Done():
			return
		}
	}
}

func (b *inMemoryEventBus) processEvent(ctx context.Context, event Event) error {
	b.mu.RLock()
	eventType := event.GetEventType()
	var all []EventHandler
	all = append(all, b.handlers[eventType]...)
	for pattern, handlers := range b.patternHandlers {
		if matchesPattern(eventType, pattern) {
			all = append(all, handlers...)
		}
	}
	b.mu.RUnlock()

	if len(all) == 0 {
		return nil
	}

	var failed int
	for _, handler := range all {
		if err := b.executeHandler(ctx, handler, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("handler_id", handler.GetHandlerID()),
				zap.String("event_type", eventType),
				zap.Error(err),
			)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to execute %d out of %d handlers", failed, len(all))
	}
	return nil
}

func (b *inMemoryEventBus) executeHandler(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %s panicked: %v", handler.GetHandlerID(), r)
		}
	}()

	handlerCtx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
	defer cancel()
	return handler.Handle(handlerCtx, event)
}

func matchesPattern(eventType, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(eventType, strings.TrimSuffix(pattern, "*"))
	}
	return eventType == pattern
}

// GenerateEventID generates a unique event ID.
func GenerateEventID() string {
	return fmt.Sprintf("evt_%d", time.Now().UnixNano())
}
