package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/supertictactoe-backend/internal/engine"
	"github.com/rocketscienceinc/supertictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/supertictactoe-backend/pkg/handlers"
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)

	CreateGame(ctx context.Context, playerID, variant string) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, gameID, playerID string, move engine.Move) (*entity.Game, error)

	RequestRematch(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	AcceptRematch(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	WatchGame(ctx context.Context, gameID string, fromRevision int64, onChange func(*entity.Game)) (func(), error)
}

// client is one connected browser tab: its socket, its resolved identity and
// the room it currently watches.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex

	playerID  string
	gameID    string
	stopWatch func()
}

func (that *client) send(action string, payload Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err = that.conn.WriteJSON(Message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

type Server struct {
	logger   *slog.Logger
	uGame    gameUseCase
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, cl *client, message *Message) error
}

func New(logger *slog.Logger, uGame gameUseCase) *Server {
	server := &Server{
		logger: logger,
		uGame:  uGame,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:join"] = server.handleJoinGame
	server.handlers["game:state"] = server.handleGameState
	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers["game:rematch:request"] = server.handleRematchRequest
	server.handlers["game:rematch:accept"] = server.handleRematchAccept

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", handlers.Ping)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	cl := &client{conn: conn}
	defer func() {
		if cl.stopWatch != nil {
			cl.stopWatch()
		}
	}()

	log.Info("WebSocket connection established")

	that.handleMessages(ctx, cl)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, cl *client) {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := cl.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		// Every game action acts on behalf of an identity, so the client
		// has to connect first.
		if message.Action != "connect" && cl.playerID == "" {
			if err := that.sendError(cl, message.Action, "connect first", nil); err != nil {
				log.Error("error sending rejection", "action", message.Action, "error", err)
			}
			continue
		}

		if err := handler(ctx, cl, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// watchRoom re-points the client's subscription at a room and pushes every
// fresh state as a game:update frame.
func (that *Server) watchRoom(ctx context.Context, cl *client, game *entity.Game) error {
	log := that.logger.With("method", "watchRoom", "gameID", game.ID)

	if cl.stopWatch != nil {
		cl.stopWatch()
		cl.stopWatch = nil
	}

	stop, err := that.uGame.WatchGame(ctx, game.ID, game.Revision, func(update *entity.Game) {
		if err := cl.send("game:update", Payload{Game: update}); err != nil {
			log.Error("failed to push update", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to watch room: %w", err)
	}

	cl.gameID = game.ID
	cl.stopWatch = stop

	return nil
}
