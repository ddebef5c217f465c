package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/projectscope/estimation-service/internal/infrastructure/resilience"
)

const workerQueueGroup = "estimation-workers"

type Queue struct {
	conn        *nats.Conn
	subject     string
	executor    *resilience.Executor
	lagObserver func(time.Duration)
}

// submission is the wire envelope. The submit timestamp lets the worker
// report queue lag.
type submission struct {
	AnalysisID  string    `json:"analysis_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func encodeSubmission(analysisID string, submittedAt time.Time) []byte {
	data, err := json.Marshal(submission{AnalysisID: analysisID, SubmittedAt: submittedAt})
	if err != nil {
		return []byte(analysisID)
	}
	return data
}

// decodeSubmission accepts both the JSON envelope and a bare-id payload from
// older producers. A zero SubmittedAt means no lag can be derived.
func decodeSubmission(data []byte) submission {
	var sub submission
	if err := json.Unmarshal(data, &sub); err != nil || sub.AnalysisID == "" {
		return submission{AnalysisID: string(data)}
	}
	return sub
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor

	// QueueLagObserver, when set, receives the submit-to-pickup delay of
	// every consumed message.
	QueueLagObserver func(time.Duration)
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("estimation-service"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:        conn,
		subject:     subject,
		executor:    options.ResilienceExecutor,
		lagObserver: options.QueueLagObserver,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishAnalysisSubmitted(ctx context.Context, analysisID string) error {
	payload := encodeSubmission(analysisID, time.Now().UTC())
	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeAnalysisSubmitted blocks until ctx is cancelled, draining the
// subscription on shutdown so in-flight analyses finish.
func (q *Queue) SubscribeAnalysisSubmitted(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, workerQueueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		received := decodeSubmission(msg.Data)
		if q.lagObserver != nil && !received.SubmittedAt.IsZero() {
			q.lagObserver(time.Since(received.SubmittedAt))
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, received.AnalysisID); err != nil {
			log.Printf("worker handler error for analysis=%s: %v", received.AnalysisID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
