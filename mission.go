// mission.go

// This file contains the waypoint-plan executor: target cursor management,
// feedforward interpolation and mission progression.

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

// spinMission performs one tick of mission progression.
func (d *Drone) spinMission() {
	if !d.mission || !d.havePlan {
		return
	}

	if d.target < len(d.plan.Waypoints) {
		// There's more to do
		switch d.state {
		case StateReadyOdom:
			if !d.actions.Busy() {
				d.log.Infow("start mission, taking off")
				d.startAction(ActionTakeoff)
			}
		case StateFlight:
			d.log.Errorw("lost odometry during mission")
			d.abortMission("odometry_lost")
		}
		return
	}

	// We're done
	if d.flying() {
		d.log.Infow("mission complete")
		d.stopMission()
	}
}

// HandlePlan stores a plan received from the external planner. Plans arriving
// outside a mission are ignored.
func (d *Drone) HandlePlan(p Plan) {
	if !d.mission {
		return
	}

	d.plan = p
	d.havePlan = true
	d.log.Infow("got a plan", "waypoints", len(p.Waypoints), "stamp", p.Stamp)

	// Go to first waypoint
	d.setTarget(0)
}

// HandleOdometry ingests one pose sample and, while a mission is active,
// advances the executor. Pose samples are ignored entirely while telemetry is
// stale: telemetry validity gates pose processing.
func (d *Drone) HandleOdometry(msg Odometry) {
	if d.telemetryTime.IsZero() {
		return
	}

	if d.odomTime.IsZero() {
		d.transitionEvent(EventOdometryStarted)
	}

	pose := msg.Pose()

	if d.mission && d.havePlan && d.target < len(d.plan.Waypoints) && !d.actions.Busy() {
		if msg.Stamp.After(d.currTargetTime) {
			// Past the stabilization deadline: either we made it or we didn't
			if pose.CloseEnough(d.currTarget, d.cfg.EpsilonXYZ, d.cfg.EpsilonYaw) {
				d.setTarget(d.target + 1)
			} else {
				d.log.Errorw("didn't reach target", "target", d.target)
				d.abortMission("target_timeout")
			}
		} else {
			// Compute the expected position along the segment and move the
			// controller setpoints to it
			if msg.Stamp.Before(d.currTargetTime) {
				elapsed := msg.Stamp.Sub(d.prevTargetTime).Seconds()
				if elapsed > 0 {
					d.xCtrl.SetTarget(d.prevTarget.X + d.vx*elapsed)
					d.yCtrl.SetTarget(d.prevTarget.Y + d.vy*elapsed)
					d.zCtrl.SetTarget(d.prevTarget.Z + d.vz*elapsed)
				}
			}

			dt := msg.Stamp.Sub(d.odomTime).Seconds()
			if dt > 0 {
				ubarX := d.xCtrl.Calc(pose.X, dt, 0)
				ubarY := d.yCtrl.Calc(pose.Y, dt, 0)
				ubarZ := d.zCtrl.Calc(pose.Z, dt, 0)
				ubarYaw := d.yawCtrl.Calc(pose.Yaw, dt, 0)

				d.publishVelocity(ubarX, ubarY, ubarZ, ubarYaw)
			}
		}
	}

	d.odomTime = msg.Stamp
	d.pose = pose
}

// setTarget moves the target cursor. The stabilization deadline is the
// waypoint's nominal arrival time minus the stabilization window; the segment
// velocity comes from the raw waypoint timestamps.
func (d *Drone) setTarget(target int) {
	d.target = target

	if target < 0 || target >= len(d.plan.Waypoints) {
		return
	}

	wp := d.plan.Waypoints[target]
	d.log.Infow("target", "index", target,
		"x", wp.Pose.X, "y", wp.Pose.Y, "z", wp.Pose.Z, "yaw", wp.Pose.Yaw)

	d.currTarget = wp.Pose
	d.currTargetTime = wp.Stamp.Add(-d.cfg.stabilizeTime())
	d.yawCtrl.SetTarget(wp.Pose.Yaw)

	if target > 0 {
		prev := d.plan.Waypoints[target-1]
		d.prevTarget = prev.Pose
		d.prevTargetTime = prev.Stamp

		dt := wp.Stamp.Sub(prev.Stamp).Seconds()
		if dt > 0 {
			d.vx = (wp.Pose.X - prev.Pose.X) / dt
			d.vy = (wp.Pose.Y - prev.Pose.Y) / dt
			d.vz = (wp.Pose.Z - prev.Pose.Z) / dt
			d.log.Infow("segment velocity", "vx", d.vx, "vy", d.vy, "vz", d.vz)
		} else {
			d.log.Errorw("waypoint timestamps not increasing", "target", target)
			d.vx, d.vy, d.vz = 0, 0, 0
		}
	} else {
		// Bootstrap: there is no prior waypoint to interpolate from
		d.prevTarget = wp.Pose
		d.prevTargetTime = d.now()
		d.vx, d.vy, d.vz = 0, 0, 0
	}
}

// abortMission is stopMission with a reason on the books, plus an emergency
// land attempt even when the state machine no longer reads as airborne
// (low battery and disconnection both admit a legal land).
func (d *Drone) abortMission(reason string) {
	if d.mission {
		d.log.Errorw("mission aborted", "reason", reason)
		d.metrics.MissionAborts.WithLabelValues(reason).Inc()
	}
	d.stopMission()
	if !d.flying() {
		d.startAction(ActionLand)
	}
}

// stopMission halts autonomous flight, publishes an all-stop and, if the
// vehicle is airborne, attempts to land. The land request is best-effort: it
// is dropped if a command is already in flight.
func (d *Drone) stopMission() {
	d.mission = false
	d.havePlan = false
	d.allStop()
	if d.flying() {
		d.startAction(ActionLand)
	}
}
