package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hnh-zeal/ChatApp-Backend/api"
	"github.com/hnh-zeal/ChatApp-Backend/chat"
	"github.com/hnh-zeal/ChatApp-Backend/infra"
	"github.com/hnh-zeal/ChatApp-Backend/logger"
	"github.com/hnh-zeal/ChatApp-Backend/pkg/socketio"
	"github.com/hnh-zeal/ChatApp-Backend/pkg/ticket"
	"github.com/hnh-zeal/ChatApp-Backend/presence"
	mongostore "github.com/hnh-zeal/ChatApp-Backend/storage/mongo"
	"github.com/hnh-zeal/ChatApp-Backend/usecase"
)

func main() {
	cfg := infra.LoadConfig()
	log := logger.New(cfg.Debug)
	defer log.Sync()

	db, closeMongo, err := infra.NewMongo(cfg)
	if err != nil {
		log.Fatal("mongo", zap.Error(err))
	}
	defer closeMongo()

	stores := mongostore.NewStores(db)
	if err := stores.EnsureIndexes(context.Background()); err != nil {
		log.Fatal("mongo indexes", zap.Error(err))
	}

	// The in-memory registry is the single-process default; redis lifts
	// presence (and push delivery) across processes.
	var registry presence.Registry = presence.NewMemory()
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = infra.NewRedis(cfg)
		if err != nil {
			log.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()

		registry = presence.NewRedis(rdb)
	}

	issuer := ticket.New([]byte(cfg.JWTSecret), cfg.TicketTTL)

	io := socketio.NewIO[chat.Frame](log)
	delivery, closeDelivery := chat.NewDelivery(io, registry, rdb, "chat", log)
	defer closeDelivery()

	friends := usecase.NewFriendWorkflow(stores.Users, stores.FriendRequests, delivery, log)
	relay := usecase.NewConversationRelay(stores.Conversations, stores.Users, delivery, log)
	calls := usecase.NewCallSignaling(stores.Calls, stores.Users, delivery, log)
	auth := usecase.NewAuth(stores.Users, issuer, usecase.NewLogMailer(log), log)
	directory := usecase.NewDirectory(stores.Users, stores.FriendRequests)

	broker := chat.New(chat.Options{
		IO:       io,
		Registry: registry,
		Authz:    issuer,
		Users:    stores.Users,
		Log:      log,
	}, friends, relay, calls)

	router := httprouter.New()
	api.NewServer(auth, directory, friends, calls, issuer, cfg.ZegoAppID, cfg.ZegoServerSecret, log).Register(router)
	router.GET("/ws", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		broker.ServeWS(w, r)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("serve", zap.Error(err))
	}
}
