// mission_test.go

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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squarePlan is a two-waypoint plan: hold position, then 10m forward at 1m/s.
func squarePlan(t0 time.Time) Plan {
	return Plan{
		Stamp: t0,
		Waypoints: []Waypoint{
			{Pose: Pose{X: 0, Y: 0, Z: 0, Yaw: 0}, Stamp: t0.Add(6 * time.Second)},
			{Pose: Pose{X: 10, Y: 0, Z: 0, Yaw: 0}, Stamp: t0.Add(16 * time.Second)},
		},
	}
}

func TestPlanIgnoredWithoutMission(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)

	rig.drone.HandlePlan(squarePlan(rig.now))
	assert.False(t, rig.drone.havePlan)
}

func TestSpinMissionTakesOffFromReadyOdom(t *testing.T) {
	rig := newRig(t)
	rig.connect()
	rig.odomAt(0, 0, 0, 0)
	require.Equal(t, StateReadyOdom, rig.drone.state)

	rig.drone.StartMission()
	rig.drone.HandlePlan(squarePlan(rig.now))
	rig.drone.SpinOnce()

	assert.Equal(t, "takeoff", rig.client.lastCall())

	// Subsequent ticks must not re-request while the first is pending
	rig.drone.SpinOnce()
	assert.Len(t, rig.client.calls, 1)
}

func TestMissionAdvancesAndInterpolates(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)
	t0 := rig.now

	rig.drone.StartMission()
	rig.drone.HandlePlan(squarePlan(t0))
	require.Equal(t, 0, rig.drone.target)
	rig.drainCmds()

	// Past wp0's stabilization deadline (t0+1s) and close to it: advance
	rig.advance(2 * time.Second)
	rig.connect()
	rig.odomAt(0.05, 0, 0, 0)
	require.Equal(t, 1, rig.drone.target)
	assert.InDelta(t, 1.0, rig.drone.vx, 1e-9, "10m over 10s of waypoint stamps")
	assert.InDelta(t, 0.0, rig.drone.vy, 1e-9)

	// Mid-segment at t0+7s: the interpolated setpoint is 1m along, we are at
	// 0.5m, so a modest forward command comes out
	rig.advance(5 * time.Second)
	rig.connect()
	rig.odomAt(0.5, 0, 0, 0)

	cmd := rig.lastCmd(t)
	assert.InDelta(t, 0.05, cmd.Throttle, 1e-9)
	assert.InDelta(t, 0.0, cmd.Strafe, 1e-9)
	assert.InDelta(t, 0.0, cmd.Vertical, 1e-9)
	assert.InDelta(t, 0.0, cmd.Yaw, 1e-9)
	assert.Equal(t, 1, rig.drone.target, "still working on wp1")
}

func TestMissionAbortsWhenTargetMissed(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)
	t0 := rig.now

	rig.drone.StartMission()
	rig.drone.HandlePlan(squarePlan(t0))

	// Reach wp0, then blow wp1's deadline far from it
	rig.advance(2 * time.Second)
	rig.connect()
	rig.odomAt(0, 0, 0, 0)
	require.Equal(t, 1, rig.drone.target)
	rig.drainCmds()

	rig.advance(10 * time.Second) // t0+12s, past the t0+11s deadline
	rig.connect()
	rig.odomAt(1.2, 0, 0, 0)

	assert.False(t, rig.drone.mission)
	assert.False(t, rig.drone.havePlan)
	assert.Equal(t, VelocityCommand{}, rig.lastCmd(t))
	assert.Equal(t, "land", rig.client.lastCall())
}

func TestMissionCompleteLands(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)
	t0 := rig.now

	rig.drone.StartMission()
	rig.drone.HandlePlan(Plan{
		Stamp: t0,
		Waypoints: []Waypoint{
			{Pose: Pose{X: 0, Y: 0, Z: 0}, Stamp: t0.Add(6 * time.Second)},
		},
	})

	rig.advance(2 * time.Second)
	rig.connect()
	rig.odomAt(0, 0, 0, 0)
	require.Equal(t, 1, rig.drone.target, "cursor past the end")
	rig.drainCmds()

	rig.drone.SpinOnce()

	assert.False(t, rig.drone.mission)
	assert.Equal(t, VelocityCommand{}, rig.lastCmd(t))
	assert.Equal(t, "land", rig.client.lastCall())
}

func TestMissionAbortsOnOdometryLoss(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)

	rig.drone.StartMission()
	rig.drone.HandlePlan(squarePlan(rig.now))
	rig.drainCmds()

	// Telemetry stays fresh while odometry goes quiet
	rig.advance(time.Second)
	rig.connect()
	rig.advance(600 * time.Millisecond)
	rig.connect()
	rig.drone.SpinOnce()

	assert.False(t, rig.drone.mission)
	assert.Equal(t, StateFlight, rig.drone.state, "airborne until the land completes")
	assert.Equal(t, VelocityCommand{}, rig.lastCmd(t))
	assert.Equal(t, "land", rig.client.lastCall())
}

func TestSetTargetBadTimestamps(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)
	t0 := rig.now

	rig.drone.StartMission()
	rig.drone.HandlePlan(Plan{
		Stamp: t0,
		Waypoints: []Waypoint{
			{Pose: Pose{X: 0}, Stamp: t0.Add(6 * time.Second)},
			{Pose: Pose{X: 10}, Stamp: t0.Add(6 * time.Second)}, // same stamp
		},
	})

	rig.advance(2 * time.Second)
	rig.connect()
	rig.odomAt(0, 0, 0, 0)
	require.Equal(t, 1, rig.drone.target)
	assert.Zero(t, rig.drone.vx, "degenerate segment gets zero velocity")
}

func TestStopMissionGrounded(t *testing.T) {
	rig := newRig(t)
	rig.connect()
	rig.drone.StartMission()
	rig.drone.stopMission()

	assert.False(t, rig.drone.mission)
	assert.Equal(t, VelocityCommand{}, rig.lastCmd(t))
	assert.Empty(t, rig.client.calls, "no land needed on the ground")
}
