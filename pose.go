// pose.go

// This file contains the 4-DoF pose model and small geometry helpers.

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

import "math"

// Point is a position in the world frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pose is a 4-DoF vehicle pose in the world frame.
// Roll and pitch are assumed negligible for a hovering vehicle.
type Pose struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	Yaw float64 `json:"yaw"` // radians, in [-pi, pi]
}

// CloseEnough reports whether p is within epsXYZ of that on every linear axis
// and within epsYaw radians of that's heading.
func (p Pose) CloseEnough(that Pose, epsXYZ, epsYaw float64) bool {
	return math.Abs(p.X-that.X) < epsXYZ &&
		math.Abs(p.Y-that.Y) < epsXYZ &&
		math.Abs(p.Z-that.Z) < epsXYZ &&
		math.Abs(normAngle(p.Yaw-that.Yaw)) < epsYaw
}

// Quaternion is an orientation as supplied by the odometry source.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Yaw extracts the heading about the world z axis, in radians.
func (q Quaternion) Yaw() float64 {
	return math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
}

// normAngle moves an angle to the region [-pi, pi].
func normAngle(a float64) float64 {
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

func clamp(v, min, max float64) float64 {
	switch {
	case v > max:
		return max
	case v < min:
		return min
	default:
		return v
	}
}
