// action.go

// This file contains the action manager, which owns the lifecycle of at most
// one outstanding vehicle command.
//
// Overall flow:
// 1. Send issues the command string through the ActionClient
// 2. the vehicle acknowledges with an ActionResponse, observed by Poll
// 3. later, the vehicle reports a CommandCompletion, delivered via Complete
//
// The completion may arrive before the acknowledgment; both orders are legal.
// Only one action can be active at a time.

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package dronebase

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActionState is the lifecycle state of the current (or last) command.
type ActionState int

const (
	ActionIdle                 ActionState = iota // No request sent yet
	ActionWaitingForAck                           // Waiting for the acknowledgment
	ActionWaitingForCompletion                    // Accepted, waiting for the completion
	ActionSucceeded                               // Done, see the result string
	ActionFailed                                  // Failed, see the result string
	ActionFailedLostConnection                    // Failed, no connection to the vehicle
)

func (s ActionState) String() string {
	switch s {
	case ActionIdle:
		return "idle"
	case ActionWaitingForAck:
		return "waiting_for_ack"
	case ActionWaitingForCompletion:
		return "waiting_for_completion"
	case ActionSucceeded:
		return "succeeded"
	case ActionFailed:
		return "failed"
	case ActionFailedLostConnection:
		return "failed_lost_connection"
	}
	return "invalid"
}

// ActionMgr drives the two-phase command lifecycle. It is not safe for
// concurrent use; like the rest of the core it belongs to the Run loop.
type ActionMgr struct {
	log    *zap.SugaredLogger
	client ActionClient
	state  ActionState

	// set by Send
	action Action
	id     uuid.UUID // log correlation only, never sent on the wire
	ack    <-chan ActionResponse
	result string
}

// NewActionMgr returns a manager in the idle state.
func NewActionMgr(client ActionClient, log *zap.SugaredLogger) *ActionMgr {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ActionMgr{log: log, client: client}
}

// Send issues the command. The caller is responsible for checking Busy and
// the action legality table first.
func (m *ActionMgr) Send(a Action) ActionState {
	m.action = a
	m.id = uuid.New()
	m.result = ""
	m.log.Debugw("sending action", "action", a.String(), "id", m.id)
	m.ack = m.client.Call(a.String())
	m.state = ActionWaitingForAck
	return m.state
}

// Poll checks, without blocking, whether the acknowledgment has arrived.
func (m *ActionMgr) Poll() ActionState {
	if m.state != ActionWaitingForAck {
		return m.state
	}

	select {
	case resp := <-m.ack:
		switch resp.Code {
		case ResponseOK:
			m.log.Debugw("action accepted", "action", m.action.String(), "id", m.id)
			m.state = ActionWaitingForCompletion
		case ResponseBusy:
			m.log.Errorw("action failed, drone is busy", "action", m.action.String(), "id", m.id)
			m.result = "drone is busy"
			m.state = ActionFailed
		case ResponseNotConnected:
			m.log.Errorw("action failed, lost connection", "action", m.action.String(), "id", m.id)
			m.result = "lost connection"
			m.state = ActionFailedLostConnection
		}
	default:
	}

	return m.state
}

// Complete applies an out-of-band completion notification. The notification
// may arrive before the acknowledgment has been observed by Poll -- that's OK.
func (m *ActionMgr) Complete(msg CommandCompletion) ActionState {
	switch {
	case !m.Busy():
		m.log.Errorw("unexpected response", "message", msg.Message)
		m.result = "unexpected response"
		m.state = ActionFailed

	case msg.Code == CompletionOK:
		m.log.Debugw("action succeeded", "action", m.action.String(), "id", m.id, "message", msg.Message)
		m.result = msg.Message
		m.state = ActionSucceeded

	case msg.Code == CompletionError:
		m.log.Errorw("action failed", "action", m.action.String(), "id", m.id, "message", msg.Message)
		m.result = msg.Message
		m.state = ActionFailed

	case msg.Code == CompletionTimeout:
		m.log.Errorw("action failed, drone timed out", "action", m.action.String(), "id", m.id)
		m.result = "drone timed out"
		m.state = ActionFailed
	}

	return m.state
}

// Busy reports whether a command is outstanding.
func (m *ActionMgr) Busy() bool {
	return m.state == ActionWaitingForAck || m.state == ActionWaitingForCompletion
}

// State returns the current lifecycle state.
func (m *ActionMgr) State() ActionState { return m.state }

// Action returns the action passed to the last Send.
func (m *ActionMgr) Action() Action { return m.action }

// Result returns the human-readable outcome of the last resolved command.
func (m *ActionMgr) Result() string { return m.result }
