// sim.go

// This file contains a loopback flight-deck simulator: it acknowledges
// takeoff/land requests, reports completions, publishes telemetry and
// odometry, and integrates incoming velocity commands into its pose.

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

package main

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"dronebase"
)

const (
	simTickHz      = 20
	simActionDelay = 2 * time.Second // takeoff/land execution time
	simMaxSpeed    = 1.0             // m/s at full stick
	simMaxYawRate  = 1.0             // rad/s at full stick
	simHoverZ      = 1.0             // m reached by takeoff
)

type simRequest struct {
	cmd string
	ack chan dronebase.ActionResponse
}

// simDeck stands in for the vehicle's command service and sensor streams.
// Call is safe to use from the drone's goroutine; everything else lives in
// run's goroutine.
type simDeck struct {
	log *zap.SugaredLogger

	requests    chan simRequest
	telemetry   chan<- dronebase.Telemetry
	odometry    chan<- dronebase.Odometry
	completions chan<- dronebase.CommandCompletion
	cmdVel      <-chan dronebase.VelocityCommand
}

func newSimDeck(log *zap.SugaredLogger,
	telemetry chan<- dronebase.Telemetry,
	odometry chan<- dronebase.Odometry,
	completions chan<- dronebase.CommandCompletion,
	cmdVel <-chan dronebase.VelocityCommand) *simDeck {
	return &simDeck{
		log:         log,
		requests:    make(chan simRequest, 1),
		telemetry:   telemetry,
		odometry:    odometry,
		completions: completions,
		cmdVel:      cmdVel,
	}
}

// Call implements dronebase.ActionClient.
func (s *simDeck) Call(cmd string) <-chan dronebase.ActionResponse {
	ack := make(chan dronebase.ActionResponse, 1)
	select {
	case s.requests <- simRequest{cmd: cmd, ack: ack}:
	default:
		// the deck is still chewing on the previous request
		ack <- dronebase.ActionResponse{Code: dronebase.ResponseBusy}
	}
	return ack
}

func (s *simDeck) run(ctx context.Context) error {
	tick := time.NewTicker(time.Second / simTickHz)
	defer tick.Stop()

	var (
		pose      dronebase.Pose
		vel       dronebase.VelocityCommand
		flying    bool
		battery   = 100.0
		pending   string    // command being executed, "" if none
		pendingAt time.Time // when the pending command completes
		last      = time.Now()
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case req := <-s.requests:
			switch req.cmd {
			case "takeoff", "land":
				req.ack <- dronebase.ActionResponse{Code: dronebase.ResponseOK}
				pending = req.cmd
				pendingAt = time.Now().Add(simActionDelay)
				s.log.Infow("sim deck accepted command", "cmd", req.cmd)
			default:
				req.ack <- dronebase.ActionResponse{Code: dronebase.ResponseNotConnected}
			}

		case cmd := <-s.cmdVel:
			vel = cmd

		case now := <-tick.C:
			dt := now.Sub(last).Seconds()
			last = now

			if pending != "" && now.After(pendingAt) {
				switch pending {
				case "takeoff":
					flying = true
					pose.Z = simHoverZ
				case "land":
					flying = false
					pose.Z = 0
					vel = dronebase.VelocityCommand{}
				}
				select {
				case s.completions <- dronebase.CommandCompletion{Code: dronebase.CompletionOK, Message: pending + " completed"}:
				case <-ctx.Done():
					return nil
				}
				pending = ""
			}

			if flying {
				sinYaw, cosYaw := math.Sincos(pose.Yaw)
				pose.X += (vel.Throttle*cosYaw - vel.Strafe*sinYaw) * simMaxSpeed * dt
				pose.Y += (vel.Throttle*sinYaw + vel.Strafe*cosYaw) * simMaxSpeed * dt
				pose.Z += vel.Vertical * simMaxSpeed * dt
				pose.Yaw += vel.Yaw * simMaxYawRate * dt
				battery -= dt / 3.0 // roughly five minutes of flight
				if battery < 0 {
					battery = 0
				}
			}

			// Sensor streams never block the deck; a slow consumer loses samples
			select {
			case s.telemetry <- dronebase.Telemetry{Battery: int(battery), Stamp: now}:
			default:
			}
			select {
			case s.odometry <- dronebase.Odometry{
				Position: dronebase.Point{X: pose.X, Y: pose.Y, Z: pose.Z},
				Orientation: dronebase.Quaternion{
					Z: math.Sin(pose.Yaw / 2),
					W: math.Cos(pose.Yaw / 2),
				},
				Stamp: now,
			}:
			default:
			}
		}
	}
}
