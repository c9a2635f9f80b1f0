// metrics.go

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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments of one vehicle context.
type Metrics struct {
	Events         *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	FlightState    prometheus.Gauge
	Battery        prometheus.Gauge
	Actions        *prometheus.CounterVec
	ActionResults  *prometheus.CounterVec
	ActionsDropped prometheus.Counter
	MissionAborts  *prometheus.CounterVec
	CmdVel         prometheus.Counter
}

// NewMetrics registers all instruments with reg. Passing nil registers with a
// private registry, which is handy in tests and when metrics are unwanted.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		Events: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dronebase_events_total",
				Help: "Health events applied to the flight state machine, by kind",
			},
			[]string{"event"},
		),
		Transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dronebase_state_transitions_total",
				Help: "Flight state transitions taken",
			},
			[]string{"from", "to"},
		),
		FlightState: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "dronebase_flight_state",
				Help: "Current flight state as its enum value",
			},
		),
		Battery: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "dronebase_battery_percent",
				Help: "Battery percentage from the last telemetry sample",
			},
		),
		Actions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dronebase_actions_total",
				Help: "Vehicle commands issued, by kind",
			},
			[]string{"action"},
		),
		ActionResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dronebase_action_results_total",
				Help: "Terminal outcomes of vehicle commands",
			},
			[]string{"action", "result"},
		),
		ActionsDropped: f.NewCounter(
			prometheus.CounterOpts{
				Name: "dronebase_actions_dropped_total",
				Help: "Commands requested while another was in flight",
			},
		),
		MissionAborts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dronebase_mission_aborts_total",
				Help: "Missions aborted, by reason",
			},
			[]string{"reason"},
		),
		CmdVel: f.NewCounter(
			prometheus.CounterOpts{
				Name: "dronebase_velocity_commands_total",
				Help: "Velocity commands published",
			},
		),
	}
}
