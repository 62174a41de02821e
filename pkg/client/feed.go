package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/bus"
)

type publisher interface {
	Publish(e bus.Event)
}

// Feed dials the live feed of userID. The returned channel is closed when
// the connection drops or ctx is done.
func (c *Client) Feed(ctx context.Context, userID string) (<-chan bus.Event, error) {
	u, err := url.Parse(c.baseURL + apiPrefix + "/feed")
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.RawQuery = url.Values{"user_id": {userID}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial feed: %w", err)
	}

	out := make(chan bus.Event, 16)

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func() {
		defer close(out)
		defer conn.Close()

		for {
			var e bus.Event
			if err := conn.ReadJSON(&e); err != nil {
				if ctx.Err() == nil {
					zlog.Logger.Warn().Err(err).Str("user_id", userID).Msg("feed closed")
				}
				return
			}

			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Relay republishes the feed of userID on a local bus until the feed ends.
func (c *Client) Relay(ctx context.Context, userID string, b publisher) error {
	events, err := c.Feed(ctx, userID)
	if err != nil {
		return err
	}

	for e := range events {
		b.Publish(e)
	}

	return ctx.Err()
}
