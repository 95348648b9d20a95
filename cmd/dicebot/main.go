// Package main runs the dice bot: a Telnet chat server whose rooms the bot
// listens to and answers dice commands in.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/bot"
	"github.com/cory-johannsen/dicebot/internal/chat"
	"github.com/cory-johannsen/dicebot/internal/command"
	"github.com/cory-johannsen/dicebot/internal/config"
	"github.com/cory-johannsen/dicebot/internal/dice"
	"github.com/cory-johannsen/dicebot/internal/frontend/handlers"
	"github.com/cory-johannsen/dicebot/internal/frontend/telnet"
	"github.com/cory-johannsen/dicebot/internal/observability"
	"github.com/cory-johannsen/dicebot/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger("dicebot", cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting dicebot",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Bool("tls", cfg.Telnet.TLSEnabled()),
		zap.String("storage", cfg.Storage.Backend),
	)

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	store, err := openStore(ctx, cfg, lifecycle, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}

	rooms, err := chat.LoadRoomsFromFile(cfg.Chat.RoomsFile)
	if err != nil {
		logger.Fatal("loading rooms", zap.Error(err))
	}
	hub, err := chat.NewHub(rooms, cfg.Chat, logger.Named("chat"))
	if err != nil {
		logger.Fatal("creating chat hub", zap.Error(err))
	}
	logger.Info("rooms loaded", zap.Int("rooms", len(rooms)), zap.String("default_room", cfg.Chat.DefaultRoom))

	rollers := dice.LoggedFactory(dice.NewMessageRoller, logger.Named("dice"))
	dispatcher := command.NewDispatcher(command.DefaultRegistry(), store, store, rollers, logger.Named("command"))
	diceBot := bot.New(dispatcher, hub, cfg.Bot, logger.Named("bot"))

	acceptor := telnet.NewAcceptor(cfg.Telnet, handlers.NewChatHandler(hub, logger.Named("session")), logger.Named("telnet"))

	lifecycle.Add("bot", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			return diceBot.Run(ctx, hub.Events())
		},
	})
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: func(context.Context) error {
			return acceptor.ListenAndServe()
		},
		StopFn: acceptor.Stop,
	})

	logger.Info("dicebot initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
