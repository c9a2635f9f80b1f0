// drone.go

// This file contains the per-vehicle context, the connectivity/health
// monitor, the control-loop tick and the command publisher.

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
	"context"
	"time"

	"go.uber.org/zap"
)

// Drone holds the complete state of one vehicle context. All fields are owned
// by the Run loop (or by the caller of the handler methods in tests); nothing
// here is safe for concurrent use.
type Drone struct {
	cfg     Config
	log     *zap.SugaredLogger
	metrics *Metrics
	now     func() time.Time

	state FlightState

	// telemetry freshness; the zero time is "stale"
	telemetryTime time.Time
	battery       int

	// pose freshness
	odomTime time.Time
	pose     Pose

	actions         *ActionMgr
	lastActionState ActionState

	cmdVel chan<- VelocityCommand

	// mission state
	mission        bool // flying autonomously
	havePlan       bool
	plan           Plan
	target         int  // index into plan.Waypoints
	prevTarget     Pose
	currTarget     Pose
	prevTargetTime time.Time
	currTargetTime time.Time // stabilization deadline for the current target
	vx, vy, vz     float64   // velocity required to hit the current target

	xCtrl, yCtrl, zCtrl, yawCtrl AxisController

	prevJoy JoystickFrame
}

// NewDrone wires a vehicle context. A nil logger disables logging and a nil
// metrics registry keeps the instruments private.
func NewDrone(cfg Config, client ActionClient, cmdVel chan<- VelocityCommand, log *zap.SugaredLogger, m *Metrics) *Drone {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if m == nil {
		m = NewMetrics(nil)
	}
	return &Drone{
		cfg:     cfg,
		log:     log,
		metrics: m,
		now:     time.Now,
		actions: NewActionMgr(client, log),
		cmdVel:  cmdVel,
		xCtrl:   NewPID(false, 0.1, 0, 0),
		yCtrl:   NewPID(false, 0.1, 0, 0),
		zCtrl:   NewPID(false, 0.1, 0, 0),
		yawCtrl: NewPID(true, 0.2, 0, 0),
	}
}

// Inputs bundles the inbound channels dispatched by Run. Nil channels are
// simply never ready.
type Inputs struct {
	StartMission <-chan struct{}
	StopMission  <-chan struct{}
	Joystick     <-chan JoystickFrame
	Telemetry    <-chan Telemetry
	Odometry     <-chan Odometry
	Plans        <-chan Plan
	Completions  <-chan CommandCompletion
	StateReq     <-chan chan Snapshot
}

// Run owns the vehicle context until ctx is cancelled: a fixed-rate tick
// drives SpinOnce and inbound messages are dispatched between ticks. Control
// failures are logged and absorbed; Run only returns on cancellation.
func (d *Drone) Run(ctx context.Context, in Inputs) error {
	tick := time.NewTicker(d.cfg.spinPeriod())
	defer tick.Stop()

	d.log.Infow("drone initialized", "spin_rate", d.cfg.SpinRate)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			d.SpinOnce()
		case <-in.StartMission:
			d.StartMission()
		case <-in.StopMission:
			d.log.Infow("stop mission")
			d.stopMission()
		case msg := <-in.Joystick:
			d.HandleJoystick(msg)
		case msg := <-in.Telemetry:
			d.HandleTelemetry(msg)
		case msg := <-in.Odometry:
			d.HandleOdometry(msg)
		case p := <-in.Plans:
			d.HandlePlan(p)
		case c := <-in.Completions:
			d.HandleCompletion(c)
		case reply := <-in.StateReq:
			reply <- d.snapshot()
		}
	}
}

// SpinOnce performs one control-loop tick: freshness checks, an action poll,
// then one step of mission progression.
func (d *Drone) SpinOnce() {
	now := d.now()

	// Check for telemetry timeout
	if !d.telemetryTime.IsZero() && now.Sub(d.telemetryTime) > d.cfg.telemetryTimeout() {
		d.log.Errorw("telemetry timeout", "now", now, "last", d.telemetryTime)
		d.transitionEvent(EventDisconnected)
		d.telemetryTime = time.Time{}
		d.odomTime = time.Time{}
		if d.mission {
			d.abortMission("disconnected")
		}
	}

	// Check for odometry timeout
	if !d.odomTime.IsZero() && now.Sub(d.odomTime) > d.cfg.odomTimeout() {
		d.log.Errorw("odometry timeout", "now", now, "last", d.odomTime)
		d.transitionEvent(EventOdometryStopped)
		d.odomTime = time.Time{}
	}

	d.observeActionState(d.actions.Poll())

	d.spinMission()
}

// HandleTelemetry ingests one telemetry sample.
func (d *Drone) HandleTelemetry(msg Telemetry) {
	if d.telemetryTime.IsZero() {
		d.transitionEvent(EventConnected)
	}

	d.battery = msg.Battery
	d.metrics.Battery.Set(float64(msg.Battery))

	if msg.Battery < d.cfg.MinBattery && d.state != StateLowBattery {
		d.log.Errorw("low battery", "percent", msg.Battery)
		d.transitionEvent(EventLowBattery)
		d.abortMission("low_battery")
	}

	d.telemetryTime = msg.Stamp
}

// HandleCompletion reconciles an out-of-band command completion. A successful
// completion is what actually moves the flight state (takeoff and land change
// the world only once the vehicle confirms them).
func (d *Drone) HandleCompletion(msg CommandCompletion) {
	res := d.actions.Complete(msg)
	d.observeActionState(res)
	if res == ActionSucceeded {
		d.transitionAction(d.actions.Action())
	}
}

// StartMission arms autonomous flight; nothing happens until a plan arrives.
func (d *Drone) StartMission() {
	d.log.Infow("start mission")
	d.mission = true
}

// startAction checks the busy guard and the action legality table, then
// issues the command. Requests while busy are dropped, never queued.
func (d *Drone) startAction(a Action) {
	if d.actions.Busy() {
		d.log.Infow("busy, dropping action", "action", a.String())
		d.metrics.ActionsDropped.Inc()
		return
	}

	if _, ok := nextStateForAction(d.state, a); !ok {
		d.log.Debugw("action not allowed", "action", a.String(), "state", d.state.String())
		return
	}

	d.log.Infow("initiating action", "state", d.state.String(), "action", a.String())
	d.metrics.Actions.WithLabelValues(a.String()).Inc()
	d.observeActionState(d.actions.Send(a))
}

// observeActionState records terminal outcomes exactly once per command.
func (d *Drone) observeActionState(st ActionState) {
	if st == d.lastActionState {
		return
	}
	d.lastActionState = st
	switch st {
	case ActionSucceeded, ActionFailed, ActionFailedLostConnection:
		d.metrics.ActionResults.WithLabelValues(d.actions.Action().String(), st.String()).Inc()
	}
}

// transitionEvent applies an event against the event table. Illegal
// transitions are logged and ignored; the state is unchanged.
func (d *Drone) transitionEvent(e Event) bool {
	next, ok := nextStateForEvent(d.state, e)
	if !ok {
		d.log.Debugw("event not allowed", "event", e.String(), "state", d.state.String())
		return false
	}
	d.metrics.Events.WithLabelValues(e.String()).Inc()
	d.setState(next)
	return true
}

// transitionAction applies a completed action against the action table.
func (d *Drone) transitionAction(a Action) bool {
	next, ok := nextStateForAction(d.state, a)
	if !ok {
		d.log.Debugw("action not allowed", "action", a.String(), "state", d.state.String())
		return false
	}
	d.setState(next)
	return true
}

func (d *Drone) setState(next FlightState) {
	if d.state == next {
		return
	}
	d.log.Infow("transition", "from", d.state.String(), "to", next.String())
	d.metrics.Transitions.WithLabelValues(d.state.String(), next.String()).Inc()
	d.metrics.FlightState.Set(float64(next))
	d.state = next
}

func (d *Drone) flying() bool {
	return d.state == StateFlight || d.state == StateFlightOdom
}

// publishVelocity clamps each component to [-1, 1] and emits the command.
// The send never blocks; a full channel drops the command.
func (d *Drone) publishVelocity(throttle, strafe, vertical, yaw float64) {
	cmd := VelocityCommand{
		Throttle: clamp(throttle, -1.0, 1.0),
		Strafe:   clamp(strafe, -1.0, 1.0),
		Vertical: clamp(vertical, -1.0, 1.0),
		Yaw:      clamp(yaw, -1.0, 1.0),
	}
	d.metrics.CmdVel.Inc()
	select {
	case d.cmdVel <- cmd:
	default:
		d.log.Warnw("velocity channel full, dropping command")
	}
}

func (d *Drone) allStop() {
	d.log.Debugw("all stop")
	d.publishVelocity(0, 0, 0, 0)
}

// Snapshot is a point-in-time view of the vehicle context for reporting.
type Snapshot struct {
	State       string `json:"state"`
	ActionState string `json:"action_state"`
	Battery     int    `json:"battery"`
	Mission     bool   `json:"mission"`
	HavePlan    bool   `json:"have_plan"`
	Target      int    `json:"target"`
}

func (d *Drone) snapshot() Snapshot {
	return Snapshot{
		State:       d.state.String(),
		ActionState: d.actions.State().String(),
		Battery:     d.battery,
		Mission:     d.mission,
		HavePlan:    d.havePlan,
		Target:      d.target,
	}
}
