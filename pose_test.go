// pose_test.go

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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloseEnough(t *testing.T) {
	target := Pose{X: 1, Y: 2, Z: 3, Yaw: 0}

	assert.True(t, Pose{X: 1.05, Y: 2.05, Z: 2.95, Yaw: 0.05}.CloseEnough(target, 0.1, 0.1))
	assert.False(t, Pose{X: 1.2, Y: 2, Z: 3, Yaw: 0}.CloseEnough(target, 0.1, 0.1),
		"exceeds tolerance on x")
	assert.False(t, Pose{X: 1, Y: 2, Z: 3, Yaw: 0.2}.CloseEnough(target, 0.1, 0.1),
		"exceeds tolerance on yaw")

	// Headings either side of the pi wrap are neighbours
	assert.True(t, Pose{X: 1, Y: 2, Z: 3, Yaw: math.Pi - 0.02}.CloseEnough(
		Pose{X: 1, Y: 2, Z: 3, Yaw: -math.Pi + 0.02}, 0.1, 0.1))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, clamp(2.0, -1.0, 1.0))
	assert.Equal(t, -1.0, clamp(-5.0, -1.0, 1.0))
	assert.Equal(t, 0.5, clamp(0.5, -1.0, 1.0))
}

func TestNormAngle(t *testing.T) {
	assert.InDelta(t, 0, normAngle(2*math.Pi), 1e-9)
	assert.InDelta(t, -math.Pi/2, normAngle(3*math.Pi/2), 1e-9)
	assert.InDelta(t, 0.5, normAngle(0.5), 1e-9)
}

func TestQuaternionYaw(t *testing.T) {
	assert.InDelta(t, 0, Quaternion{W: 1}.Yaw(), 1e-9)

	// 90 degrees about z
	q := Quaternion{Z: math.Sin(math.Pi / 4), W: math.Cos(math.Pi / 4)}
	assert.InDelta(t, math.Pi/2, q.Yaw(), 1e-9)

	// 180 degrees about z
	q = Quaternion{Z: 1}
	assert.InDelta(t, math.Pi, math.Abs(q.Yaw()), 1e-9)
}

func TestOdometryPose(t *testing.T) {
	o := Odometry{Position: Point{X: 1, Y: 2, Z: 3}}
	o.Orientation = Quaternion{Z: math.Sin(0.25), W: math.Cos(0.25)}
	p := o.Pose()
	assert.Equal(t, 1.0, p.X)
	assert.Equal(t, 2.0, p.Y)
	assert.Equal(t, 3.0, p.Z)
	assert.InDelta(t, 0.5, p.Yaw, 1e-9)
}
