package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	httpapi "github.com/kretovv/talkroom/internal/api/http"
	"github.com/kretovv/talkroom/internal/config"
	"github.com/kretovv/talkroom/internal/repository"
	"github.com/kretovv/talkroom/internal/service"
	"github.com/kretovv/talkroom/lib/logger/slogpretty"
	"github.com/pion/webrtc/v3"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	rooms := repository.NewInMemoryRoomTable()
	sessions := repository.NewInMemorySessionRegistry()

	fanout := service.NewBroadcaster(rooms, log)
	presence := service.NewPresenceService(rooms, sessions, fanout, log, cfg.Presence.GraceWindow)
	relay := service.NewRelayService(rooms, sessions, fanout, log)

	roomController := httpapi.NewRoomController(presence, relay, log, cfg.Peer.Host, iceServers(cfg.WebRTC))

	router := httpapi.SetupRouter(roomController)

	log.Info("starting application",
		slog.String("env", cfg.Env),
		slog.String("addr", cfg.HTTP.Address),
		slog.Duration("grace_window", cfg.Presence.GraceWindow),
	)

	// TLS is terminated upstream in prod; only local/dev serve certificates
	// themselves.
	var err error
	if cfg.Env == envProd || cfg.HTTP.TLSCertFile == "" || cfg.HTTP.TLSKeyFile == "" {
		err = router.Run(cfg.HTTP.Address)
	} else {
		err = router.RunTLS(cfg.HTTP.Address, cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile)
	}
	if err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

// iceServers builds the pass-through ICE configuration handed to clients,
// STUN list plus an optional TURN entry with credentials.
func iceServers(cfg config.WebRTCConfig) []webrtc.ICEServer {
	servers := make([]webrtc.ICEServer, 0, len(cfg.STUNServers)+1)
	for _, url := range cfg.STUNServers {
		servers = append(servers, webrtc.ICEServer{URLs: []string{url}})
	}
	if cfg.TURNServer != "" {
		servers = append(servers, webrtc.ICEServer{
			URLs:       []string{cfg.TURNServer},
			Username:   cfg.TURNUsername,
			Credential: cfg.TURNPassword,
		})
	}
	return servers
}
