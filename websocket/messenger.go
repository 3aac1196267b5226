// Package websocket Description: This file contains the hubMessenger, which
// pushes display state to every kiosk connected to that display.
// file: websocket/messenger.go
package websocket

import (
	"encoding/json"

	"catfish-cull/logger"
)

// Messenger is an interface for broadcasting messages to kiosks.
type Messenger interface {
	BroadcastState(state DisplayState)
	BroadcastProgress(display string, progress float64)
}

// stateMessage is the envelope kiosks receive on every change.
type stateMessage struct {
	Action string       `json:"action"`
	State  DisplayState `json:"state"`
}

// progressMessage is the small frame sent on progress ticks between full states.
type progressMessage struct {
	Action          string  `json:"action"`
	Display         string  `json:"display"`
	SectionProgress float64 `json:"sectionProgress"`
}

type hubMessenger struct {
	hub *Hub
}

// NewHubMessenger sends through hub.
func NewHubMessenger(hub *Hub) Messenger {
	return &hubMessenger{hub: hub}
}

// --------------- Methods on hubMessenger -----------------

// BroadcastState marshals the state and sends it to the display's connections.
func (m *hubMessenger) BroadcastState(state DisplayState) {
	msg, err := encodeState(state)
	if err != nil {
		logger.Error.Printf("hubMessenger: Error marshalling state for display %s: %v", state.Display, err)
		return
	}
	m.hub.Broadcast(state.Display, msg)
}

// BroadcastProgress sends only the dwell progress of a display.
func (m *hubMessenger) BroadcastProgress(display string, progress float64) {
	msg, err := json.Marshal(progressMessage{Action: "progress", Display: display, SectionProgress: progress})
	if err != nil {
		logger.Error.Printf("hubMessenger: Error marshalling progress for display %s: %v", display, err)
		return
	}
	m.hub.Broadcast(display, msg)
}

func encodeState(state DisplayState) ([]byte, error) {
	return json.Marshal(stateMessage{Action: "displayState", State: state})
}
