package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

// wsFrame mirrors what the relay writes to a websocket client: the channel
// name plus the event envelope.
type wsFrame struct {
	Channel  string `json:"channel"`
	Envelope struct {
		Type      string         `json:"type"`
		Data      map[string]any `json:"data"`
		Timestamp string         `json:"timestamp"`
		UserID    *string        `json:"user_id"`
	} `json:"envelope"`
}

type BaseRelaySuite struct {
	suite.Suite
	Config         Config
	ReceiveTimeout time.Duration
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.ReceiveTimeout, err = time.ParseDuration(s.Config.ReceiveTimeout)
	s.Require().NoError(err)
}

// Step prints a colorized header so the flow reads in the test logs
func (s *BaseRelaySuite) Step(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// Call performs an HTTP request against the relay as the given user and
// decodes the JSON response into out (when out is non-nil).
func (s *BaseRelaySuite) Call(t *testing.T, method, path, userID string, body, out any) int {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequest(method, fmt.Sprintf("http://%s%s", s.Config.RelayAddr, path), reader)
	s.Require().NoError(err)
	if userID != "" {
		request.Header.Set("X-User-ID", userID)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	response, err := http.DefaultClient.Do(request)
	s.Require().NoError(err, "Failed to reach relay at "+s.Config.RelayAddr)
	defer func() { _ = response.Body.Close() }()

	raw, err := io.ReadAll(response.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, response.StatusCode, time.Since(start))
	// Log full JSON request/response bodies if E2E_DEBUG_JSON is enabled
	if s.Config.DebugJSON {
		if body != nil {
			encoded, _ := json.MarshalIndent(body, "", "  ")
			fmt.Fprintf(&logBuilder, "\nREQUEST:\n%s", encoded)
		}
		fmt.Fprintf(&logBuilder, "\nRESPONSE:\n%s", raw)
	}
	t.Log(logBuilder.String())

	if out != nil && len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return response.StatusCode
}

// Connect opens a websocket session with the given connection token.
// The caller owns the connection and must Close it.
func (s *BaseRelaySuite) Connect(t *testing.T, token string) *websocket.Conn {
	endpoint := url.URL{
		Scheme:   "ws",
		Host:     s.Config.RelayAddr,
		Path:     "/ws",
		RawQuery: url.Values{"token": {token}}.Encode(),
	}
	conn, _, err := websocket.DefaultDialer.Dial(endpoint.String(), nil)
	s.Require().NoError(err, "Failed to open websocket to "+endpoint.String())
	t.Log("Websocket session opened")
	return conn
}

// Receive waits for the next frame on the connection, failing the suite if
// nothing arrives within the configured timeout.
func (s *BaseRelaySuite) Receive(t *testing.T, conn *websocket.Conn) wsFrame {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(s.ReceiveTimeout)))

	var frame wsFrame
	s.Require().NoError(conn.ReadJSON(&frame), "No frame received within "+s.ReceiveTimeout.String())
	if s.Config.DebugJSON {
		encoded, _ := json.MarshalIndent(frame, "", "  ")
		t.Logf("FRAME:\n%s", encoded)
	}
	return frame
}
