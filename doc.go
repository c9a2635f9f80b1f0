/*Package dronebase implements the onboard flight-control core of a small
teleoperated/autonomous aerial vehicle.

The package turns raw connectivity, telemetry and pose events into safe
flight-state transitions, arbitrates between manual (joystick) and automated
(waypoint-plan) control, and drives an external vehicle-command channel.

Features

The following features are implemented...
  * Connectivity and health monitoring (telemetry/odometry freshness, battery floor)
  * A fixed flight-state machine with separate event and action legality tables
  * An asynchronous takeoff/land action lifecycle with two independent completion paths
  * Waypoint-plan execution with timed targets and feedforward interpolation
  * Stick-based manual flight, including a slow trim mode
  * Clamped velocity-command publication

A runnable vehicle node using this package is available under cmd/dronebased.

Concepts

Single-threaded dispatch

All mutable vehicle state is owned by one goroutine: the Run loop. A fixed-rate
tick (default 20 Hz) drives timeout checks, action polling and mission
progression, and the same loop dispatches inbound telemetry, odometry, joystick,
plan and completion messages between ticks. Handlers run to completion, so the
core needs no locking.

Funcs vs. Channels

Inbound traffic arrives on channels supplied via Inputs; the outbound velocity
command is emitted on a channel supplied at construction. Sends never block: a
full outbound channel drops the command rather than stalling the control loop.

Actions

Takeoff and land are two-phase: the action client answers immediately with an
acknowledgment code, and a completion notification arrives later on its own
channel. The two paths are independent and may be observed in either order.
Only one action can be outstanding at a time; requests made while busy are
dropped, not queued.
*/
package dronebase
