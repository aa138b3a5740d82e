package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/maruel/colldb/internal/auth"
	apierrors "github.com/maruel/colldb/internal/errors"
	"github.com/maruel/colldb/internal/models"
	"github.com/maruel/colldb/internal/storage"
)

// CommentChannel accepts append-comment messages over websocket
// connections. The protocol is connectionless in spirit: every message
// carries its own token and is handled independently, no state is kept
// between messages, and the reply goes only to the sending connection.
type CommentChannel struct {
	authenticator *auth.Authenticator
	collections   *storage.CollectionService
	upgrader      websocket.Upgrader
}

// NewCommentChannel creates a new comment channel.
func NewCommentChannel(authenticator *auth.Authenticator, collections *storage.CollectionService) *CommentChannel {
	return &CommentChannel{
		authenticator: authenticator,
		collections:   collections,
		upgrader: websocket.Upgrader{
			// The token inside each message is the only access control.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// commentMessage is one inbound websocket message. The comment object is
// free-form; whatever fields the client sends are stored verbatim.
type commentMessage struct {
	CollectionID string         `json:"collectionId"`
	ItemID       string         `json:"itemId"`
	Comment      models.Comment `json:"comment"`
	Token        string         `json:"token"`
}

// successReply is the reply for a stored comment.
type successReply struct {
	Success bool         `json:"success"`
	Item    *models.Item `json:"item"`
}

// errorReply is the single-field reply for any failure.
type errorReply struct {
	Error string `json:"error"`
}

// ServeHTTP upgrades the connection and serves messages until the peer
// disconnects. Failed messages produce an error reply, never a close.
func (c *CommentChannel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "Websocket upgrade failed", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := conn.WriteJSON(c.handleMessage(ctx, data)); err != nil {
			slog.ErrorContext(ctx, "Websocket write failed", "err", err)
			return
		}
	}
}

// handleMessage processes one message and returns the reply to send back.
func (c *CommentChannel) handleMessage(ctx context.Context, data []byte) any {
	var msg commentMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return errorReply{Error: "Server error"}
	}

	user, err := c.authenticator.Resolve(msg.Token)
	if err != nil {
		return errorReply{Error: "Unauthorized"}
	}

	item, err := c.collections.AppendComment(msg.CollectionID, msg.ItemID, msg.Comment, user.Name)
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code() {
			case apierrors.ErrCollectionNotFound:
				return errorReply{Error: "Collection not found"}
			case apierrors.ErrItemNotFound:
				return errorReply{Error: "Item not found"}
			}
		}
		slog.ErrorContext(ctx, "Failed to append comment", "err", err)
		return errorReply{Error: "Server error"}
	}

	return successReply{Success: true, Item: item}
}
