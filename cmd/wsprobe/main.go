// Command wsprobe logs in to a running server, subscribes to the push channel
// and prints every event it receives. Sequence gaps are reported.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

type envelope struct {
	Event  string          `json:"event"`
	Seq    uint64          `json:"seq"`
	Data   json.RawMessage `json:"data"`
	SentAt time.Time       `json:"sentAt"`
}

func main() {
	serverURL := flag.String("server", "http://localhost:5000", "server base URL")
	username := flag.String("username", "admin", "dashboard username")
	password := flag.String("password", "", "dashboard password")
	duration := flag.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Step 1: Get a session token
	var login loginResponse
	resp, err := resty.New().SetBaseURL(*serverURL).R().
		SetBody(map[string]string{"username": *username, "password": *password}).
		SetResult(&login).
		Post("/api/user/login")
	if err != nil {
		logger.Fatal("Login request failed", zap.Error(err))
	}
	if resp.IsError() {
		logger.Fatal("Login rejected", zap.Int("status", resp.StatusCode()), zap.String("body", resp.String()))
	}
	logger.Info("Logged in", zap.String("username", login.User.Username), zap.String("role", login.User.Role))

	// Step 2: Connect to the push channel with the token as a query parameter
	wsURL, err := url.Parse(*serverURL)
	if err != nil {
		logger.Fatal("Invalid server URL", zap.Error(err))
	}
	wsURL.Scheme = strings.Replace(wsURL.Scheme, "http", "ws", 1)
	wsURL.Path = "/ws"
	wsURL.RawQuery = url.Values{"token": {login.Token}}.Encode()

	conn, httpResp, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		if httpResp != nil {
			logger.Fatal("WebSocket handshake rejected", zap.Int("status", httpResp.StatusCode), zap.Error(err))
		}
		logger.Fatal("WebSocket connection failed", zap.Error(err))
	}
	defer conn.Close()
	logger.Info("Subscribed to push channel", zap.String("host", wsURL.Host))

	// Step 3: Keep the session alive with application-level pings
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
				return
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	if *duration > 0 {
		time.AfterFunc(*duration, func() { stop <- os.Interrupt })
	}
	go func() {
		<-stop
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	// Step 4: Print events until the connection ends
	var last uint64
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			logger.Info("Connection closed", zap.Error(err))
			return
		}
		var env envelope
		if err := json.Unmarshal(message, &env); err != nil {
			logger.Warn("Unreadable frame", zap.ByteString("frame", message))
			continue
		}
		if last != 0 && env.Seq != last+1 {
			logger.Warn("Missed events, re-fetch over REST",
				zap.Uint64("expected", last+1),
				zap.Uint64("got", env.Seq))
		}
		last = env.Seq
		fmt.Printf("#%d %s %s %s\n", env.Seq, env.SentAt.Format(time.RFC3339), env.Event, env.Data)
	}
}
