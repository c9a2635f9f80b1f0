// pid.go

// This file contains a small per-axis feedback controller. The mission
// executor only relies on the AxisController contract; the control law here is
// deliberately simple and can be swapped out.

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

// AxisController is the contract the mission executor consumes: push a
// setpoint, then compute an output from the measured value and the elapsed
// time since the previous measurement.
type AxisController interface {
	SetTarget(target float64)
	Calc(actual, dt, feedforward float64) float64
}

// PID is a textbook PID controller. When angle is true, errors are wrapped
// into [-pi, pi] so the controller turns the short way round.
type PID struct {
	angle      bool
	kp, ki, kd float64

	target   float64
	integral float64
	prevErr  float64
	hasPrev  bool
}

// NewPID returns a controller with zero target.
func NewPID(angle bool, kp, ki, kd float64) *PID {
	return &PID{angle: angle, kp: kp, ki: ki, kd: kd}
}

// SetTarget moves the setpoint. A new setpoint clears the accumulated state.
func (c *PID) SetTarget(target float64) {
	if target != c.target {
		c.target = target
		c.integral = 0
		c.hasPrev = false
	}
}

// Calc computes the control output.
func (c *PID) Calc(actual, dt, feedforward float64) float64 {
	err := c.target - actual
	if c.angle {
		err = normAngle(err)
	}

	c.integral += err * dt

	var deriv float64
	if c.hasPrev && dt > 0 {
		deriv = (err - c.prevErr) / dt
	}
	c.prevErr = err
	c.hasPrev = true

	return feedforward + c.kp*err + c.ki*c.integral + c.kd*deriv
}
