// messages.go

// This file describes the messages exchanged with the external collaborators:
// telemetry and odometry sources, the joystick, the path planner and the
// vehicle-command service.

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

import "time"

// Telemetry is one sample from the vehicle's health stream.
type Telemetry struct {
	Battery int       `json:"battery"` // percent, 0-100
	Stamp   time.Time `json:"stamp"`
}

// Odometry is one sample from the pose-estimate stream.
type Odometry struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
	Stamp       time.Time  `json:"stamp"`
}

// Pose flattens the sample into the 4-DoF world-frame pose.
func (o Odometry) Pose() Pose {
	return Pose{X: o.Position.X, Y: o.Position.Y, Z: o.Position.Z, Yaw: o.Orientation.Yaw()}
}

// Waypoint is one timed pose in a plan. The vehicle must reach Pose
// by Stamp or earlier.
type Waypoint struct {
	Pose  Pose      `json:"pose"`
	Stamp time.Time `json:"stamp"`
}

// Plan is an ordered waypoint sequence produced by the external planner.
// Insertion order is execution order. A plan is immutable once received,
// until replaced by the next plan.
type Plan struct {
	Stamp     time.Time  `json:"stamp"`
	Waypoints []Waypoint `json:"waypoints"`
}

// JoystickFrame is one button/axis snapshot from the operator's controller.
// Axis values follow the usual convention of [-1, 1] with 1.0 left/forward.
type JoystickFrame struct {
	Buttons []bool    `json:"buttons"`
	Axes    []float64 `json:"axes"`
}

func (f JoystickFrame) button(i int) bool {
	return i >= 0 && i < len(f.Buttons) && f.Buttons[i]
}

func (f JoystickFrame) axis(i int) float64 {
	if i < 0 || i >= len(f.Axes) {
		return 0
	}
	return f.Axes[i]
}

// buttonDown detects a rising edge between two frames.
func buttonDown(curr, prev JoystickFrame, i int) bool {
	return curr.button(i) && !prev.button(i)
}

// VelocityCommand is the outbound command, each component clamped to [-1, 1].
type VelocityCommand struct {
	Throttle float64 `json:"throttle"`
	Strafe   float64 `json:"strafe"`
	Vertical float64 `json:"vertical"`
	Yaw      float64 `json:"yaw"`
}

// ResponseCode is the immediate result of an action request.
type ResponseCode int

const (
	ResponseOK ResponseCode = iota + 1
	ResponseNotConnected
	ResponseBusy
)

// ActionResponse is the acknowledgment to an action request.
type ActionResponse struct {
	Code ResponseCode `json:"code"`
}

// CompletionCode is the result carried by an out-of-band completion
// notification.
type CompletionCode int

const (
	CompletionOK CompletionCode = iota + 1
	CompletionError
	CompletionTimeout
)

// CommandCompletion reports that the vehicle finished (or gave up on) the
// command in flight. There is no request id; correlation is by busy-ness.
type CommandCompletion struct {
	Code    CompletionCode `json:"code"`
	Message string         `json:"message"`
}

// ActionClient issues a vehicle command and answers with an acknowledgment
// later, on the returned channel. Call must not block: implementations return
// a buffered channel immediately and deliver exactly one response on it.
type ActionClient interface {
	Call(cmd string) <-chan ActionResponse
}
