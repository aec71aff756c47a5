// Package dispatch owns the query lifecycle: append the user's message,
// issue the backend request, resolve the answer, append the bot reply. At
// most one query is in flight at a time; a second Send while loading is
// rejected outright rather than queued.
package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"docchat/internal/chatstore"
	"docchat/internal/resolve"

	"go.uber.org/zap"
)

// FallbackText is the fixed bot reply for any query failure. The dispatcher
// does not distinguish failure subtypes to the user.
const FallbackText = "Sorry, I encountered an error while processing your request. Please try again."

var (
	// ErrEmptyQuery rejects sends whose text trims to nothing.
	ErrEmptyQuery = errors.New("dispatch: empty query")
	// ErrBusy rejects sends while another query is in flight.
	ErrBusy = errors.New("dispatch: a query is already in flight")
)

// QueryClient is the backend surface the dispatcher needs.
type QueryClient interface {
	Query(ctx context.Context, query string) (string, error)
}

// Result carries the two messages a completed send appended, plus the
// resolved display form of the bot reply.
type Result struct {
	User    chatstore.Message
	Bot     chatstore.Message
	Content resolve.Content
}

// Dispatcher sends user queries and appends the exchange to the chat store.
type Dispatcher struct {
	client   QueryClient
	store    *chatstore.Store
	logger   *zap.Logger
	inFlight atomic.Bool
}

// New creates a dispatcher. A nil logger is replaced with a no-op.
func New(client QueryClient, store *chatstore.Store, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{client: client, store: store, logger: logger}
}

// Loading reports whether a query is in flight. Callers must disable their
// send affordance while this is true.
func (d *Dispatcher) Loading() bool {
	return d.inFlight.Load()
}

// Send runs one query exchange against the given chat.
//
// The user message is appended before the request is issued, so message order
// reflects causal order even under a slow network. Any failure (transport
// error, non-2xx status, malformed body) appends the fixed fallback reply
// instead; the error is logged, not surfaced. The in-flight gate is acquired
// before any side effect and released on every exit path.
func (d *Dispatcher) Send(ctx context.Context, chatID, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyQuery
	}
	if !d.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer d.inFlight.Store(false)

	user, err := d.store.AppendMessage(chatID, text, true)
	if err != nil {
		return Result{}, err
	}

	payload, err := d.client.Query(ctx, text)
	var content resolve.Content
	if err != nil {
		d.logger.Warn("query failed", zap.String("chat", chatID), zap.Error(err))
		payload = FallbackText
		content = resolve.Content{Kind: resolve.KindText, Text: FallbackText}
	} else {
		content = resolve.Resolve(payload)
	}

	bot, err := d.store.AppendMessage(chatID, payload, false)
	if err != nil {
		return Result{}, err
	}
	return Result{User: user, Bot: bot, Content: content}, nil
}
