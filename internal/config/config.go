// Package config loads the client configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config stores all parameters the call client needs: signaling server
// address, local identity, ICE servers, and the protocol timeouts.
type Config struct {
	ServerURL string // WebSocket URL of the signaling server
	UserID    string // local user identity (server-issued in production)
	UserName  string // display name sent with notifications

	STUNServers    []string
	TURNServer     string // optional TURN relay, e.g. turn:relay.example.com:3478
	TURNUsername   string
	TURNCredential string

	ConnectTimeout time.Duration // peer connection establishment watchdog
	GatherTimeout  time.Duration // max wait for initial ICE gathering after setLocalDescription
	BusyDismiss    time.Duration // how long the "recipient busy" banner stays up
}

// Default STUN servers used when CALLKIT_STUN is not set.
var defaultSTUN = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
}

// Load reads configuration from a .env file (if present) and the process
// environment. Every value has a default except the signaling server URL,
// which falls back to localhost for development.
func Load() *Config {
	// Missing .env is fine; env vars and defaults still apply.
	_ = godotenv.Load()

	cfg := &Config{
		ServerURL:      getenv("CALLKIT_SERVER_URL", "ws://127.0.0.1:8080/ws"),
		UserID:         getenv("CALLKIT_USER_ID", uuid.NewString()),
		UserName:       getenv("CALLKIT_USER_NAME", "anonymous"),
		TURNServer:     getenv("CALLKIT_TURN_URL", ""),
		TURNUsername:   getenv("CALLKIT_TURN_USERNAME", ""),
		TURNCredential: getenv("CALLKIT_TURN_CREDENTIAL", ""),
		ConnectTimeout: getenvDuration("CALLKIT_CONNECT_TIMEOUT", 30*time.Second),
		GatherTimeout:  getenvDuration("CALLKIT_GATHER_TIMEOUT", 2*time.Second),
		BusyDismiss:    getenvDuration("CALLKIT_BUSY_DISMISS", 4*time.Second),
	}

	if raw := os.Getenv("CALLKIT_STUN"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.STUNServers = append(cfg.STUNServers, s)
			}
		}
	}
	if len(cfg.STUNServers) == 0 {
		cfg.STUNServers = defaultSTUN
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
