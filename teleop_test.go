// teleop_test.go

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame builds a joystick frame big enough for the default assignments.
func frame() JoystickFrame {
	return JoystickFrame{
		Buttons: make([]bool, 11),
		Axes:    make([]float64, 8),
	}
}

func TestTakeoffOnRisingEdgeOnly(t *testing.T) {
	rig := newRig(t)
	rig.connect()

	held := frame()
	held.Buttons[rig.drone.cfg.JoyButtonTakeoff] = true

	rig.drone.HandleJoystick(held)
	require.Equal(t, []string{"takeoff"}, rig.client.calls)

	// Held down: no repeat
	rig.drone.HandleJoystick(held)
	assert.Len(t, rig.client.calls, 1)

	// Release and press again
	rig.drone.HandleJoystick(frame())
	rig.drone.HandleJoystick(held)
	assert.Len(t, rig.client.calls, 2)
}

func TestLandButton(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)

	f := frame()
	f.Buttons[rig.drone.cfg.JoyButtonLand] = true
	rig.drone.HandleJoystick(f)

	assert.Equal(t, "land", rig.client.lastCall())
}

func TestSticksMapToVelocity(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)
	rig.drainCmds()

	f := frame()
	f.Axes[rig.drone.cfg.JoyAxisThrottle] = 0.7
	f.Axes[rig.drone.cfg.JoyAxisStrafe] = -0.3
	f.Axes[rig.drone.cfg.JoyAxisVertical] = 0.2
	f.Axes[rig.drone.cfg.JoyAxisYaw] = -0.1
	rig.drone.HandleJoystick(f)

	cmd := rig.lastCmd(t)
	assert.Equal(t, VelocityCommand{Throttle: 0.7, Strafe: -0.3, Vertical: 0.2, Yaw: -0.1}, cmd)
}

func TestTrimOverridesSticks(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)
	rig.drainCmds()

	f := frame()
	f.Axes[rig.drone.cfg.JoyAxisThrottle] = 1.0 // ignored while trimming
	f.Axes[rig.drone.cfg.JoyAxisTrimLR] = 1.0
	f.Axes[rig.drone.cfg.JoyAxisTrimFB] = -1.0
	rig.drone.HandleJoystick(f)

	cmd := rig.lastCmd(t)
	assert.Equal(t, VelocityCommand{Strafe: 0.2, Vertical: -0.2}, cmd)
}

func TestShiftedTrimMovesYawAndThrottle(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)
	rig.drainCmds()

	f := frame()
	f.Buttons[rig.drone.cfg.JoyButtonShift] = true
	f.Axes[rig.drone.cfg.JoyAxisTrimLR] = 1.0
	f.Axes[rig.drone.cfg.JoyAxisTrimFB] = 1.0
	rig.drone.HandleJoystick(f)

	cmd := rig.lastCmd(t)
	assert.Equal(t, VelocityCommand{Throttle: 0.2, Yaw: 0.2}, cmd)
}

func TestNoManualFlightOnTheGround(t *testing.T) {
	rig := newRig(t)
	rig.connect()

	f := frame()
	f.Axes[rig.drone.cfg.JoyAxisThrottle] = 1.0
	rig.drone.HandleJoystick(f)

	assert.Empty(t, rig.cmds)
}

func TestJoystickIgnoredDuringMission(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)
	rig.drone.StartMission()
	rig.drainCmds()

	f := frame()
	f.Axes[rig.drone.cfg.JoyAxisThrottle] = 1.0
	f.Buttons[rig.drone.cfg.JoyButtonLand] = true
	rig.drone.HandleJoystick(f)

	assert.Empty(t, rig.cmds)
	assert.Equal(t, "takeoff", rig.client.lastCall(), "no land issued")

	// The frame is still retained: the button held across the mission's end
	// must not read as a fresh press
	rig.drone.stopMission() // issues its own land
	calls := len(rig.client.calls)
	rig.drainCmds()
	rig.drone.HandleJoystick(f)
	assert.Len(t, rig.client.calls, calls)
}

func TestShortFramesAreSafe(t *testing.T) {
	rig := newRig(t)
	rig.takeoff(t)
	rig.drainCmds()

	// A frame from a pad with fewer controls than configured
	rig.drone.HandleJoystick(JoystickFrame{Buttons: make([]bool, 2), Axes: make([]float64, 2)})

	cmd := rig.lastCmd(t)
	assert.Equal(t, VelocityCommand{}, cmd, "missing axes read as centred")
}
