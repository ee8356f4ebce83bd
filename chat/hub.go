// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chat

import "github.com/chain-board/model"

// Hub maintains the set of connected view clients and fans record updates
// out to them. The board is public, every client sees every update.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Record updates to fan out.
	broadcast chan model.RecordUpdate

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan model.RecordUpdate),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Broadcast queues an update for delivery to every connected client.
func (h *Hub) Broadcast(update model.RecordUpdate) {
	h.broadcast <- update
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case update := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- update:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}
