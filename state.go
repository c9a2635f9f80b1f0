// state.go

// This file contains the flight states, events and actions, and the two fixed
// transition legality tables.

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

// FlightState is the vehicle's flight state. Exactly one value holds at a
// time, and it changes only via the event and action tables below.
type FlightState int

const (
	StateUnknown    FlightState = iota // No telemetry
	StateReady                         // Ready for manual flight
	StateFlight                        // Flying, autonomous operation not available
	StateReadyOdom                     // Ready for manual or autonomous flight
	StateFlightOdom                    // Flying, autonomous operation available
	StateLowBattery                    // Battery must be swapped
)

func (s FlightState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateReady:
		return "ready"
	case StateFlight:
		return "flight"
	case StateReadyOdom:
		return "ready_odom"
	case StateFlightOdom:
		return "flight_odom"
	case StateLowBattery:
		return "low_battery"
	}
	return "invalid"
}

// Event is a connectivity or health observation.
type Event int

const (
	EventConnected Event = iota
	EventDisconnected
	EventOdometryStarted
	EventOdometryStopped
	EventLowBattery
)

func (e Event) String() string {
	switch e {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventOdometryStarted:
		return "odometry_started"
	case EventOdometryStopped:
		return "odometry_stopped"
	case EventLowBattery:
		return "low_battery"
	}
	return "invalid"
}

// Action is a command the operator or the mission executor can take.
type Action int

const (
	ActionTakeoff Action = iota
	ActionLand
)

// String doubles as the command string sent to the action client.
func (a Action) String() string {
	switch a {
	case ActionTakeoff:
		return "takeoff"
	case ActionLand:
		return "land"
	}
	return "invalid"
}

// nextStateForEvent is the event legality table. Absent pairs are illegal.
func nextStateForEvent(s FlightState, e Event) (FlightState, bool) {
	switch s {
	case StateUnknown:
		if e == EventConnected {
			return StateReady, true
		}
	case StateReady:
		switch e {
		case EventDisconnected:
			return StateUnknown, true
		case EventOdometryStarted:
			return StateReadyOdom, true
		case EventLowBattery:
			return StateLowBattery, true
		}
	case StateFlight:
		switch e {
		case EventDisconnected:
			return StateUnknown, true
		case EventOdometryStarted:
			return StateFlightOdom, true
		case EventLowBattery:
			return StateLowBattery, true
		}
	case StateReadyOdom:
		switch e {
		case EventDisconnected:
			return StateUnknown, true
		case EventOdometryStopped:
			return StateReady, true
		case EventLowBattery:
			return StateLowBattery, true
		}
	case StateFlightOdom:
		switch e {
		case EventDisconnected:
			return StateUnknown, true
		case EventOdometryStopped:
			return StateFlight, true
		case EventLowBattery:
			return StateLowBattery, true
		}
	case StateLowBattery:
		if e == EventDisconnected {
			return StateUnknown, true
		}
	}
	return StateUnknown, false
}

// nextStateForAction is the action legality table. Land is legal in every
// state so an emergency landing is always possible; takeoff is not.
func nextStateForAction(s FlightState, a Action) (FlightState, bool) {
	switch s {
	case StateUnknown:
		if a == ActionLand {
			return StateUnknown, true
		}
	case StateReady:
		switch a {
		case ActionTakeoff:
			return StateFlight, true
		case ActionLand:
			return StateReady, true
		}
	case StateFlight:
		if a == ActionLand {
			return StateReady, true
		}
	case StateReadyOdom:
		switch a {
		case ActionTakeoff:
			return StateFlightOdom, true
		case ActionLand:
			return StateReadyOdom, true
		}
	case StateFlightOdom:
		if a == ActionLand {
			return StateReadyOdom, true
		}
	case StateLowBattery:
		if a == ActionLand {
			return StateLowBattery, true
		}
	}
	return StateUnknown, false
}
