package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jparise/timebot/internal/slack"
	slackgo "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"golang.org/x/sync/semaphore"
)

// Recorder receives message handling outcomes.
type Recorder interface {
	RecordReceived()
	RecordSkipped(reason string)
	RecordReplied()
	RecordPostFailure()
	RecordLatency(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordReceived()             {}
func (nopRecorder) RecordSkipped(string)        {}
func (nopRecorder) RecordReplied()              {}
func (nopRecorder) RecordPostFailure()          {}
func (nopRecorder) RecordLatency(time.Duration) {}

// ListenerOptions configures a Listener.
type ListenerOptions struct {
	Jobs          int           // maximum messages handled concurrently
	HandleTimeout time.Duration // per-message deadline; 0 means none
	Debug         bool          // slack-go protocol debugging
	Logger        *slog.Logger
	Metrics       Recorder
}

// Listener receives message events from Slack and hands each one to a
// Handler on its own goroutine.
type Listener struct {
	client  *slack.Client
	handler *Handler
	opts    ListenerOptions
	logger  *slog.Logger
	metrics Recorder

	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewListener creates a Listener. The client may be nil when only Dispatch
// is used.
func NewListener(client *slack.Client, handler *Handler, opts ListenerOptions) *Listener {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var metrics Recorder = nopRecorder{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}

	return &Listener{
		client:  client,
		handler: handler,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
		sem:     semaphore.NewWeighted(int64(opts.Jobs)),
	}
}

// Run connects to Slack and handles messages until ctx is canceled. It uses
// Socket Mode when the client has an app-level token and RTM otherwise.
// In-flight messages are finished before Run returns.
func (l *Listener) Run(ctx context.Context) error {
	if l.client == nil {
		return fmt.Errorf("listener has no Slack client")
	}
	defer l.Wait()

	if l.client.SocketMode() {
		return l.runSocketMode(ctx)
	}
	return l.runRTM(ctx)
}

// Wait blocks until every dispatched message has been handled.
func (l *Listener) Wait() {
	l.wg.Wait()
}

// Dispatch handles msg on a new goroutine, blocking while Jobs messages are
// already in flight.
func (l *Listener) Dispatch(ctx context.Context, msg Message) {
	l.metrics.RecordReceived()

	if err := ctx.Err(); err != nil {
		l.logger.Debug("dropping message", "channel", msg.ChannelID, "error", err)
		return
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		l.logger.Debug("dropping message", "channel", msg.ChannelID, "error", err)
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.sem.Release(1)
		l.handle(ctx, msg)
	}()
}

func (l *Listener) handle(ctx context.Context, msg Message) {
	if l.opts.HandleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.HandleTimeout)
		defer cancel()
	}

	start := time.Now()
	err := l.handler.Handle(ctx, msg)
	l.metrics.RecordLatency(time.Since(start))

	switch {
	case err == nil:
		l.metrics.RecordReplied()
		l.logger.Info("posted reply", "channel", msg.ChannelID, "user", msg.UserID)
	case errors.Is(err, ErrPostFailed):
		l.metrics.RecordPostFailure()
		l.logger.Warn("reply not posted", "channel", msg.ChannelID, "error", err)
	case Skipped(err):
		reason := SkipReason(err)
		l.metrics.RecordSkipped(reason)
		l.logger.Debug("skipped message", "channel", msg.ChannelID, "user", msg.UserID, "reason", reason, "error", err)
	default:
		l.metrics.RecordSkipped("error")
		l.logger.Error("failed to handle message", "channel", msg.ChannelID, "error", err)
	}
}

func (l *Listener) runRTM(ctx context.Context) error {
	rtm := l.client.API().NewRTM()
	go rtm.ManageConnection()
	defer func() {
		if err := rtm.Disconnect(); err != nil {
			l.logger.Debug("rtm disconnect", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-rtm.IncomingEvents:
			if !ok {
				return nil
			}

			switch ev := evt.Data.(type) {
			case *slackgo.ConnectingEvent:
				l.logger.Info("connecting to Slack", "transport", "rtm", "attempt", ev.Attempt)
			case *slackgo.ConnectedEvent:
				l.logger.Info("connected to Slack", "transport", "rtm", "connections", ev.ConnectionCount)
			case *slackgo.MessageEvent:
				l.Dispatch(ctx, messageFromRTM(ev))
			case *slackgo.RTMError:
				l.logger.Warn("rtm error", "error", ev)
			case *slackgo.InvalidAuthEvent:
				return fmt.Errorf("slack rejected the bot token")
			}
		}
	}
}

func (l *Listener) runSocketMode(ctx context.Context) error {
	sm := socketmode.New(l.client.API(), socketmode.OptionDebug(l.opts.Debug))
	ack := func(req socketmode.Request) { sm.Ack(req) }

	if err := l.serveSocketEvents(ctx, sm.Events, ack, sm.RunContext); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("socket mode: %w", err)
	}
	return nil
}

// serveSocketEvents consumes events while run holds the connection open.
// The consumer is stopped and joined before serveSocketEvents returns, so
// nothing is dispatched once run has exited.
func (l *Listener) serveSocketEvents(ctx context.Context, events <-chan socketmode.Event, ack func(socketmode.Request), run func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var consumer sync.WaitGroup
	consumer.Add(1)
	go func() {
		defer consumer.Done()
		l.consumeSocketEvents(ctx, events, ack)
	}()

	err := run(ctx)
	cancel()
	consumer.Wait()
	return err
}

func (l *Listener) consumeSocketEvents(ctx context.Context, events <-chan socketmode.Event, ack func(socketmode.Request)) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}

			switch evt.Type {
			case socketmode.EventTypeConnecting:
				l.logger.Info("connecting to Slack", "transport", "socketmode")
			case socketmode.EventTypeConnected:
				l.logger.Info("connected to Slack", "transport", "socketmode")
			case socketmode.EventTypeConnectionError:
				l.logger.Warn("socket mode connection failed", "data", evt.Data)
			case socketmode.EventTypeEventsAPI:
				eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				if evt.Request != nil {
					ack(*evt.Request)
				}
				if eventsAPIEvent.Type != slackevents.CallbackEvent {
					continue
				}
				if ev, ok := eventsAPIEvent.InnerEvent.Data.(*slackevents.MessageEvent); ok {
					l.Dispatch(ctx, messageFromEvents(ev))
				}
			}
		}
	}
}

func messageFromRTM(ev *slackgo.MessageEvent) Message {
	return Message{
		Text:      ev.Text,
		UserID:    ev.User,
		ChannelID: ev.Channel,
		BotID:     ev.BotID,
		SubType:   ev.SubType,
	}
}

func messageFromEvents(ev *slackevents.MessageEvent) Message {
	return Message{
		Text:      ev.Text,
		UserID:    ev.User,
		ChannelID: ev.Channel,
		BotID:     ev.BotID,
		SubType:   ev.SubType,
	}
}
