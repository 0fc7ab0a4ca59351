package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"aireas/internal/agent"
	"aireas/internal/contextutil"
	"aireas/internal/convstore"
	"aireas/internal/tools"
)

// ChatHandler runs interactive chat sessions over a websocket. Each inbound
// message is one question; the answer streams back as typed events.
type ChatHandler struct {
	engine        *agent.Engine
	conversations convstore.Store
	topicLLM      convstore.Generator
	retriever     tools.Retriever
	extraTools    []tools.Tool
	upgrader      websocket.Upgrader
}

// NewChatHandler creates a new ChatHandler. extraTools are offered to the
// model in every session alongside the user-scoped document retriever.
func NewChatHandler(engine *agent.Engine, conversations convstore.Store, topicLLM convstore.Generator, r tools.Retriever, extraTools []tools.Tool) *ChatHandler {
	return &ChatHandler{
		engine:        engine,
		conversations: conversations,
		topicLLM:      topicLLM,
		retriever:     r,
		extraTools:    extraTools,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients are served from another origin in development;
			// the deployment fronts this with a proxy that enforces origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ChatMessage is one inbound question on the websocket.
type ChatMessage struct {
	Question string `json:"question"`
}

// ServeHTTP upgrades the connection and serves the chat session.
//
// swagger:route GET /api/conversations/{conversationID}/chat chatSession
//
// # Open a chat session
//
// Upgrades to a websocket. The client sends JSON questions; the server
// streams back tool_invoked, answer_chunk, done and error events.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID := userIDFromRequest(r)
	conversationID := chi.URLParam(r, "conversationID")

	if _, err := h.conversations.Get(ctx, userID, conversationID); err != nil {
		writeServiceError(ctx, w, err, "Failed to load conversation")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	toolset, err := h.sessionTools(userID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build session tools", "error", err)
		_ = conn.WriteJSON(agent.Event{Type: agent.EventError, Text: "session setup failed"})
		return
	}

	logger.InfoContext(ctx, "chat session opened", "user_id", userID, "conversation_id", conversationID)

	// The request context is not canceled once the connection is hijacked,
	// so a read pump watches the socket: a close or read failure cancels the
	// session context, which aborts any in-flight model or tool call.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	questions := make(chan ChatMessage)
	go h.readPump(ctx, cancel, conn, questions)

	for {
		var msg ChatMessage
		select {
		case <-ctx.Done():
			return
		case msg = <-questions:
		}
		if msg.Question == "" {
			_ = conn.WriteJSON(agent.Event{Type: agent.EventError, Text: "question is required"})
			continue
		}

		answer, err := h.engine.Run(ctx, userID, conversationID, msg.Question, toolset, func(event agent.Event) {
			if writeErr := conn.WriteJSON(event); writeErr != nil {
				logger.WarnContext(ctx, "failed to write event", "error", writeErr)
			}
		})
		if err != nil {
			if ctx.Err() != nil {
				logger.InfoContext(ctx, "chat turn canceled by disconnect", "conversation_id", conversationID)
				return
			}
			logger.ErrorContext(ctx, "chat turn failed", "conversation_id", conversationID, "error", err)
			_ = conn.WriteJSON(agent.Event{Type: agent.EventError, Text: "failed to answer"})
			continue
		}

		if err := conn.WriteJSON(agent.Event{Type: agent.EventDone, Text: answer}); err != nil {
			logger.WarnContext(ctx, "failed to write done event", "error", err)
			return
		}

		h.maybeAssignTopic(ctx, userID, conversationID, msg.Question, answer)
	}
}

// readPump feeds inbound questions to the session loop and cancels the
// session when the socket errors or closes.
func (h *ChatHandler) readPump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, questions chan<- ChatMessage) {
	defer cancel()
	logger := contextutil.LoggerFromContext(ctx)

	for {
		var msg ChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WarnContext(ctx, "websocket read failed", "error", err)
			}
			return
		}
		select {
		case questions <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// sessionTools builds the toolset for one session: the document retriever
// scoped to the user, plus the shared tools.
func (h *ChatHandler) sessionTools(userID string) ([]tools.Tool, error) {
	retrieverTool, err := tools.NewRetrieverTool(h.retriever, map[string]string{
		"metadata.associated_user": userID,
	})
	if err != nil {
		return nil, err
	}

	toolset := make([]tools.Tool, 0, len(h.extraTools)+1)
	toolset = append(toolset, retrieverTool)
	toolset = append(toolset, h.extraTools...)
	return toolset, nil
}

// maybeAssignTopic labels a still-unlabeled conversation from its latest
// exchange. Runs in the background so the next question is not delayed.
func (h *ChatHandler) maybeAssignTopic(ctx context.Context, userID, conversationID, question, answer string) {
	logger := contextutil.LoggerFromContext(ctx)

	conv, err := h.conversations.Get(ctx, userID, conversationID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.ErrorContext(ctx, "failed to load conversation for topic", "error", err)
		}
		return
	}
	if conv.Topic != "" {
		return
	}

	// Outlives the request so a closing socket cannot cancel the label.
	bgCtx := contextutil.WithLogger(context.WithoutCancel(ctx), logger)
	go convstore.AssignTopic(bgCtx, h.conversations, h.topicLLM, userID, conversationID, question, answer)
}
