// teleop.go

// This file contains the teleop arbiter: joystick frames become velocity
// commands or takeoff/land requests when no mission is running.

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

// HandleJoystick processes one joystick frame. The previous frame is always
// retained for edge detection, even while a mission has manual input ignored.
func (d *Drone) HandleJoystick(msg JoystickFrame) {
	// Ignore the joystick if we're in a mission
	if d.mission {
		d.prevJoy = msg
		return
	}

	// Takeoff/land on button press
	if buttonDown(msg, d.prevJoy, d.cfg.JoyButtonTakeoff) {
		d.startAction(ActionTakeoff)
	} else if buttonDown(msg, d.prevJoy, d.cfg.JoyButtonLand) {
		d.startAction(ActionLand)
	}

	// Manual flight
	if d.flying() && !d.actions.Busy() {
		trimLR := msg.axis(d.cfg.JoyAxisTrimLR)
		trimFB := msg.axis(d.cfg.JoyAxisTrimFB)

		// Trim (slow, steady) mode vs. joystick mode
		if trimLR != 0 || trimFB != 0 {
			var throttle, strafe, vertical, yaw float64
			if trimLR != 0 {
				if msg.button(d.cfg.JoyButtonShift) {
					yaw = d.cfg.TrimSpeed * trimLR
				} else {
					strafe = d.cfg.TrimSpeed * trimLR
				}
			}
			if trimFB != 0 {
				if msg.button(d.cfg.JoyButtonShift) {
					throttle = d.cfg.TrimSpeed * trimFB
				} else {
					vertical = d.cfg.TrimSpeed * trimFB
				}
			}
			d.publishVelocity(throttle, strafe, vertical, yaw)
		} else {
			d.publishVelocity(
				msg.axis(d.cfg.JoyAxisThrottle),
				msg.axis(d.cfg.JoyAxisStrafe),
				msg.axis(d.cfg.JoyAxisVertical),
				msg.axis(d.cfg.JoyAxisYaw))
		}
	}

	d.prevJoy = msg
}
