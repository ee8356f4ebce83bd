// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"io/ioutil"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"github.com/chain-board/blockchain"
	chat "github.com/chain-board/chat"
	"github.com/chain-board/model"
	"github.com/chain-board/service"
	"github.com/chain-board/store"
)

var (
	addr       = flag.String("addr", ":8080", "http service address")
	configFile = flag.String("config", "", "optional config file")
)

func loadConfig() service.Config {
	cfg := service.DefaultConfig()
	if *configFile == "" {
		return cfg
	}
	viper.SetConfigFile(*configFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatal(err)
	}
	return cfg
}

func main() {
	flag.Parse()
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.New()
	provider := service.NewContractInfoProvider(cfg.BackendURL)
	dial := func(ctx context.Context, info model.ContractInfo) (service.ChainReader, error) {
		return blockchain.Dial(ctx, info)
	}

	watcher := service.NewReceiptWatcher(st, provider, dial, cfg)
	go watcher.Run(ctx)

	submitter := service.NewMessageSubmitter(cfg.BackendURL, st, watcher)
	eventSync := service.NewEventSync(st, provider, dial, cfg)
	go eventSync.Sync(ctx)

	hub := chat.NewHub()
	go hub.Run()
	go func() {
		for update := range st.Updates() {
			hub.Broadcast(update)
		}
	}()

	r := gin.Default()
	r.Use(CORSMiddleware())

	r.GET("/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"messages":          st.Messages(),
			"loadingMessages":   st.Loading(),
			"submittingMessage": st.Submitting(),
		})
	})

	r.POST("/messages", func(c *gin.Context) {
		data, err := ioutil.ReadAll(c.Request.Body)
		if err != nil || len(data) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty body"})
			return
		}
		var body struct {
			Message string `json:"message"`
		}
		json.Unmarshal(data, &body)
		if body.Message == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}

		if err := submitter.Submit(c.Request.Context(), body.Message); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	r.POST("/sync", func(c *gin.Context) {
		if err := eventSync.Sync(c.Request.Context()); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, st.Messages())
	})

	r.GET("/ws", func(c *gin.Context) {
		chat.ServeWs(hub, c.Writer, c.Request)
	})

	if err := r.Run(*addr); err != nil {
		panic(err)
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
