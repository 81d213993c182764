package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

type Config struct {
	RelayAddr string `env:"RELAY_ADDR,default=localhost:8080"`
	UserID    string `env:"TAIL_USER_ID,required=true"`
	Colours   bool   `env:"TAIL_COLOURS,default=true"`
}

type tokenResponse struct {
	Token      string              `json:"token"`
	Capability map[string][]string `json:"capability"`
}

type frame struct {
	Channel  string `json:"channel"`
	Envelope struct {
		Type      string          `json:"type"`
		Data      json.RawMessage `json:"data"`
		Timestamp string          `json:"timestamp"`
		UserID    *string         `json:"user_id"`
	} `json:"envelope"`
}

// tail connects to a running relay as one user and prints every envelope the
// user's grant can see. Read-only; useful to watch a room while poking the
// HTTP surface from another terminal.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Fetch a connection token
	token, err := fetchToken(config)
	if err != nil {
		log.Fatalf("Token fetch failed: %v", err)
	}
	fmt.Printf("Subscribed channels for %s:\n", config.UserID)
	for channel := range token.Capability {
		fmt.Printf("  - %s\n", channel)
	}

	// 3. Attach and print frames until the connection drops
	endpoint := url.URL{
		Scheme:   "ws",
		Host:     config.RelayAddr,
		Path:     "/ws",
		RawQuery: url.Values{"token": {token.Token}}.Encode(),
	}
	conn, _, err := websocket.DefaultDialer.Dial(endpoint.String(), nil)
	if err != nil {
		log.Fatalf("Websocket dial failed: %v", err)
	}
	defer conn.Close()

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			log.Fatalf("Connection lost: %v", err)
		}
		printFrame(config, f)
	}
}

func fetchToken(config Config) (tokenResponse, error) {
	request, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("http://%s/v1/realtime/token", config.RelayAddr), nil)
	if err != nil {
		return tokenResponse{}, err
	}
	request.Header.Set("X-User-ID", config.UserID)

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return tokenResponse{}, err
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		return tokenResponse{}, fmt.Errorf("relay returned %d: %s", response.StatusCode, body)
	}

	var token tokenResponse
	if err := json.NewDecoder(response.Body).Decode(&token); err != nil {
		return tokenResponse{}, err
	}
	return token, nil
}

func printFrame(config Config, f frame) {
	actor := "-"
	if f.Envelope.UserID != nil {
		actor = *f.Envelope.UserID
	}
	header := fmt.Sprintf("[%s] %s by %s", f.Channel, f.Envelope.Type, actor)
	if config.Colours {
		header = color.New(color.FgGreen).Render(header)
	}
	fmt.Printf("%s %s\n  %s\n", f.Envelope.Timestamp, header, f.Envelope.Data)
}
