package natsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/pkg/core/model"
)

const (
	// OffersSubjectPrefix is followed by the referee ID, e.g. designation.offers.r-12
	OffersSubjectPrefix = "designation.offers"
	ResponsesSubject    = "designation.responses"
	// ResponsesQueue spreads responses across listeners so each is processed once
	ResponsesQueue = "designation-engine"

	maxReconnects   = -1
	reconnectWait   = 2 * time.Second
	responseBacklog = 64
)

// Client publishes offers to and receives responses from referee devices over NATS
type Client struct {
	nc     *nats.Conn
	logger *zap.Logger
}

// Connect dials the NATS server and keeps reconnecting for the life of the client
func Connect(url string, logger *zap.Logger) (*Client, error) {
	logger = logger.With(zap.String("component", "nats"))

	opts := []nats.Option{
		nats.Name("referee-designation"),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Error("NATS error", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Client{nc: nc, logger: logger}, nil
}

// Close drains pending messages and closes the connection
func (c *Client) Close() {
	if err := c.nc.Drain(); err != nil {
		c.logger.Warn("Failed to drain NATS connection", zap.Error(err))
		c.nc.Close()
	}
}

// OfferSubject returns the subject a referee's devices subscribe to
func OfferSubject(refereeID string) string {
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, refereeID)
	return OffersSubjectPrefix + "." + token
}

// SendOffer publishes the offer on the referee's subject and waits for the server to
// acknowledge the flush.
func (c *Client) SendOffer(ctx context.Context, offer model.Offer) error {
	data, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("failed to encode offer: %w", err)
	}

	if err := c.nc.Publish(OfferSubject(offer.RefereeID), data); err != nil {
		return fmt.Errorf("failed to publish offer: %w", err)
	}
	if err := c.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush offer: %w", err)
	}
	return nil
}

// ResponseHandler applies one referee response
type ResponseHandler func(ctx context.Context, resp model.Response) error

// ListenResponses processes responses one at a time until ctx is done.
// Handler errors are logged and answered to the sender; they do not stop the listener.
func (c *Client) ListenResponses(ctx context.Context, handler ResponseHandler) error {
	msgs := make(chan *nats.Msg, responseBacklog)
	sub, err := c.nc.ChanQueueSubscribe(ResponsesSubject, ResponsesQueue, msgs)
	if err != nil {
		return fmt.Errorf("failed to subscribe to responses: %w", err)
	}
	defer sub.Unsubscribe()

	c.logger.Info("Listening for referee responses",
		zap.String("subject", ResponsesSubject),
		zap.String("queue", ResponsesQueue))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Stopped listening for referee responses")
			return nil
		case msg := <-msgs:
			reply := handleResponse(ctx, c.logger, handler, msg.Data)
			if msg.Reply == "" {
				continue
			}
			if err := msg.Respond(reply); err != nil {
				c.logger.Warn("Failed to reply to response", zap.Error(err))
			}
		}
	}
}

// ack is the reply sent to a response that asked for one
type ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// handleResponse decodes and applies one message, returning the encoded ack
func handleResponse(ctx context.Context, logger *zap.Logger, handler ResponseHandler, data []byte) []byte {
	result := ack{OK: true}

	resp, err := model.DecodeResponse(data)
	if err != nil {
		logger.Warn("Discarding malformed response", zap.Error(err))
		result = ack{Error: err.Error()}
	} else if err := handler(ctx, resp); err != nil {
		logger.Error("Failed to apply response",
			zap.String("match_id", resp.MatchID),
			zap.String("role", resp.Role),
			zap.String("referee_id", resp.RefereeID),
			zap.Error(err))
		result = ack{Error: err.Error()}
	}

	encoded, _ := json.Marshal(result)
	return encoded
}
