package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/artpar/gridpatch/adapters/metrics"
	"github.com/artpar/gridpatch/app"
	"github.com/artpar/gridpatch/core/events"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// feedBufferSize is the number of events queued per subscriber before
// events are dropped.
const feedBufferSize = 64

// FeedConfig configures the live feed.
type FeedConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
}

// Feed streams committed patches, focus requests and confirmation events of
// one document to websocket subscribers.
type Feed struct {
	editor   *app.TableEditor
	bus      *events.Bus
	metrics  *metrics.Collector
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	writeTimeout atomic.Int64 // nanoseconds
	pingInterval time.Duration
}

// NewFeed creates a live feed over the event bus.
func NewFeed(editor *app.TableEditor, bus *events.Bus, m *metrics.Collector, logger zerolog.Logger, cfg FeedConfig) *Feed {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	f := &Feed{
		editor:  editor,
		bus:     bus,
		metrics: m,
		logger:  logger.With().Str("component", "feed").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		pingInterval: cfg.PingInterval,
	}
	f.writeTimeout.Store(int64(cfg.WriteTimeout))
	return f
}

// SetWriteTimeout changes the write deadline used for new writes.
func (f *Feed) SetWriteTimeout(d time.Duration) {
	if d > 0 {
		f.writeTimeout.Store(int64(d))
	}
}

// ServeHTTP upgrades the connection and streams the document's events until
// the client goes away.
//
//	@Summary		Live document feed
//	@Description	Websocket stream of table.patched, table.focus and confirmation events for one document
//	@Tags			Feed
//	@Param			id	path	string	true	"Document ID"
//	@Success		101
//	@Failure		404	{object}	ErrorResponseBody
//	@Router			/ws/documents/{id} [get]
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")
	if _, _, err := f.editor.Table(r.Context(), docID); err != nil {
		status, code := classify(err)
		writeJSON(w, status, ErrorResponseBody{Error: ErrorDetail{Code: code, Message: err.Error()}})
		return
	}

	// subscribe before upgrading so nothing committed after the handshake is missed
	send := make(chan events.Event, feedBufferSize)
	unsubscribe := f.bus.Subscribe("table.*", func(_ context.Context, e events.Event) error {
		if e.DocumentID != docID {
			return nil
		}
		select {
		case send <- e:
		default:
			f.logger.Warn().Str("document", docID).Str("event", e.Name).Msg("feed subscriber slow, event dropped")
		}
		return nil
	})
	defer unsubscribe()

	if f.metrics != nil {
		f.metrics.FeedSubscribers.Inc()
		defer f.metrics.FeedSubscribers.Dec()
	}

	ws, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		f.logger.Debug().Err(err).Str("document", docID).Msg("websocket upgrade failed")
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.logger.Debug().Str("document", docID).Msg("feed subscriber connected")

	// reader: discard client messages, stop on close
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(f.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Debug().Str("document", docID).Msg("feed subscriber disconnected")
			return

		case e := <-send:
			data, err := json.Marshal(e)
			if err != nil {
				f.logger.Error().Err(err).Str("event", e.Name).Msg("encode feed event")
				continue
			}
			ws.SetWriteDeadline(time.Now().Add(f.timeout()))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				// a write deadline cannot be recovered
				f.logger.Debug().Err(err).Str("document", docID).Msg("feed write failed")
				return
			}

		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(f.timeout())); err != nil {
				return
			}
		}
	}
}

func (f *Feed) timeout() time.Duration {
	return time.Duration(f.writeTimeout.Load())
}
