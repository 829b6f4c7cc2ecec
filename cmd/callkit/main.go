// Callkit is the CLI client for the teamtide call subsystem.
//
// Connects to the signaling server, subscribes the per-user private queue,
// and drives audio/video calls from an interactive prompt. Configuration
// comes from the environment (.env supported); flags override it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teamtide/callkit/internal/call"
	"github.com/teamtide/callkit/internal/config"
	"github.com/teamtide/callkit/internal/media"
	"github.com/teamtide/callkit/internal/rtc"
	sig "github.com/teamtide/callkit/internal/signal"
	"github.com/teamtide/callkit/internal/util"
)

var version = "dev"

func main() {
	// Root context, cancelled on Ctrl+C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	serverFlag := flag.String("server", "", "Signaling server WebSocket URL")
	userFlag := flag.String("user", "", "Local user id")
	nameFlag := flag.String("name", "", "Local display name")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debugMode {
		util.EnableDebug()
	}

	cfg := config.Load()
	if *serverFlag != "" {
		cfg.ServerURL = *serverFlag
	}
	if *userFlag != "" {
		cfg.UserID = *userFlag
	}
	if *nameFlag != "" {
		cfg.UserName = *nameFlag
	}

	pterm.Info.Println(fmt.Sprintf("Callkit v%s (user %s)", version, cfg.UserName))
	pterm.Println()

	if err := run(ctx, cfg); err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	client, err := sig.Dial(ctx, cfg.ServerURL)
	if err != nil {
		return err
	}
	defer client.Close()
	util.LogInfo("connected to signaling server: %s", cfg.ServerURL)

	eng, err := media.NewEngine()
	if err != nil {
		return fmt.Errorf("failed to initialize media engine: %w", err)
	}

	factory := &peerFactory{
		api: eng.API(),
		cfg: rtc.Config{
			STUNServers:    cfg.STUNServers,
			TURNServer:     cfg.TURNServer,
			TURNUsername:   cfg.TURNUsername,
			TURNCredential: cfg.TURNCredential,
			ConnectTimeout: cfg.ConnectTimeout,
			GatherTimeout:  cfg.GatherTimeout,
		},
	}

	coord := call.NewCoordinator(client, &mediaSource{eng}, factory, uiEvents(), call.Options{
		Self:        call.Participant{ID: cfg.UserID, Name: cfg.UserName},
		BusyDismiss: cfg.BusyDismiss,
	})

	// Targeted notifications (CALL_NOTIFICATION, CALL_ACCEPTED, CALL_BUSY)
	// arrive on the private queue before the caller joins the chat topic.
	client.Subscribe(sig.UserQueue(cfg.UserID), coord.HandleMessage)

	go promptLoop(ctx, client, coord)

	<-ctx.Done()
	coord.End()
	util.LogInfo("shut down")
	return nil
}

// uiEvents renders call state changes to the terminal.
func uiEvents() call.Events {
	return call.Events{
		OnIncomingCall: func(s *call.Session) {
			pterm.Println()
			pterm.Info.Println(fmt.Sprintf("Incoming %s call from %s (chat %s): 'accept' or 'reject'",
				s.CallType, s.Remote.Name, s.ChatID))
		},
		OnCallEstablished: func() {
			util.LogSuccess("call established")
		},
		OnCallEnded: func() {
			util.LogInfo("call ended")
		},
		OnLocalStream: func(call.LocalMedia) {
			util.LogInfo("local media ready")
		},
		OnRemoteStreamAdded: func(participantID string) {
			util.LogInfo("remote stream from %s", participantID)
		},
		OnRemoteStreamRemoved: func(participantID string) {
			util.LogInfo("remote stream from %s removed", participantID)
		},
		OnRemoteMediaStatus: func(ms call.MediaStatus) {
			util.LogInfo("remote %s: enabled=%v", ms.StatusType, ms.Enabled)
		},
		OnBusy: func(chatID string) {
			util.LogWarning("recipient busy (chat %s)", chatID)
		},
		OnError: func(err error) {
			util.LogError("failed to connect to the call: %v", err)
		},
	}
}

// promptLoop reads commands until the context is cancelled.
func promptLoop(ctx context.Context, client *sig.Client, coord *call.Coordinator) {
	help := "commands: call <chat> [audio|video] | accept | reject | end | mute | video | share | unshare | quit"
	pterm.Info.Println(help)

	for ctx.Err() == nil {
		raw, _ := pterm.DefaultInteractiveTextInput.WithDefaultText(">").Show()
		fields := strings.Fields(strings.TrimSpace(raw))
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "call":
			if len(fields) < 2 {
				util.LogWarning("usage: call <chat> [audio|video]")
				continue
			}
			chatID := fields[1]
			callType := call.CallVideo
			if len(fields) > 2 && strings.EqualFold(fields[2], "audio") {
				callType = call.CallAudio
			}
			// Join the room topic so OFFER/ANSWER/ICE reach us.
			client.Subscribe(sig.ChatTopic(chatID), coord.HandleMessage)
			_, err = coord.Start(chatID, callType)

		case "accept":
			if s := coord.Session(); s != nil {
				client.Subscribe(sig.ChatTopic(s.ChatID), coord.HandleMessage)
			}
			err = coord.Accept()

		case "reject":
			err = coord.Reject()

		case "end":
			coord.End()

		case "mute":
			var on bool
			if on, err = coord.ToggleAudio(); err == nil {
				util.LogInfo("audio enabled=%v", on)
			}

		case "video":
			var on bool
			if on, err = coord.ToggleVideo(); err == nil {
				util.LogInfo("video enabled=%v", on)
			}

		case "share":
			err = coord.StartScreenShare()

		case "unshare":
			err = coord.StopScreenShare()

		case "quit", "exit":
			coord.End()
			os.Exit(0)

		default:
			util.LogWarning("unknown command %q. %s", fields[0], help)
		}

		if err != nil {
			util.LogWarning("%v", err)
		}
	}
}
