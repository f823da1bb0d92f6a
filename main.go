package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	attendantx "github.com/graphmind/pastelaria/agent/attendant"
	contractx "github.com/graphmind/pastelaria/agent/contract"
	cypherx "github.com/graphmind/pastelaria/agent/cypher"
	promptx "github.com/graphmind/pastelaria/agent/prompt"
	statex "github.com/graphmind/pastelaria/agent/state"
	toolx "github.com/graphmind/pastelaria/agent/tool"
	configx "github.com/graphmind/pastelaria/pkg/config"
	graphdbx "github.com/graphmind/pastelaria/pkg/graphdb"
	_ "github.com/graphmind/pastelaria/pkg/logger/autoload"
	openrouterx "github.com/graphmind/pastelaria/pkg/openrouter"
	serverx "github.com/graphmind/pastelaria/server"
	ordersx "github.com/graphmind/pastelaria/store/orders"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverCfg := configx.MustNew[serverx.Config]("SERVER")
	graphCfg := configx.MustNew[graphdbx.Config]("FALKORDB")
	llmCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	agentCfg := configx.MustNew[attendantx.Config]("AGENT")
	ordersCfg := configx.MustNew[ordersx.Config]("ORDERS")

	// Local gateways serve a varying model set; listing them up front
	// surfaces a dead endpoint before the first customer turn does.
	if client := openrouterx.NewClient(*llmCfg); client != nil {
		if models, err := openrouterx.ListModels(ctx, client); err != nil {
			log.Warn().Err(err).Msg("model endpoint check failed")
		} else {
			log.Info().Int("models", len(models)).Str("configured", llmCfg.Model).Msg("model endpoint reachable")
		}
	}

	chatModel, err := llmCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create chat model")
	}

	graph, err := graphdbx.New(*graphCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to menu graph")
	}
	defer graph.Close()

	prompts := promptx.LoadPromptSet()

	menuQA, err := cypherx.New(ctx, chatModel, graph, prompts)
	if err != nil {
		log.Fatal().Err(err).Msg("build menu qa")
	}

	var archiver contractx.OrderArchiver
	if ordersCfg.Enabled() {
		store, err := ordersx.New(ctx, *ordersCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("open order archive")
		}
		defer store.Close()
		archiver = store
	} else {
		log.Info().Msg("order archive disabled, confirmed orders are log-only")
	}

	registry := statex.NewRegistry()
	executor := toolx.NewExecutor(toolx.Deps{
		Graph:   graph,
		Menu:    menuQA,
		Archive: archiver,
	})

	attendant, err := attendantx.New(ctx, chatModel, registry, executor, toolx.Infos(), prompts, *agentCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build attendant")
	}

	httpServer := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           serverx.New(attendant).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverCfg.Addr).Msg("attendant listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown http server")
	}
}
