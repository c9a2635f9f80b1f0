// config.go

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
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Default joystick assignments, XBox-style pad.
const (
	joyAxisLeftLR  = 0 // 1.0 is left, -1.0 is right
	joyAxisLeftFB  = 1 // 1.0 is forward, -1.0 is back
	joyAxisRightLR = 3
	joyAxisRightFB = 4
	joyAxisTrimLR  = 6
	joyAxisTrimFB  = 7

	joyButtonLeftBumper = 4
	joyButtonView       = 6
	joyButtonMenu       = 7
)

// Config carries the tunables of one vehicle context.
type Config struct {
	SpinRate int `json:"spin_rate"` // control-loop rate, Hz

	TelemetryTimeoutSec float64 `json:"telemetry_timeout_sec"` // error if no telemetry within this duration
	OdomTimeoutSec      float64 `json:"odom_timeout_sec"`      // error if no pose estimate within this duration
	StabilizeTimeSec    float64 `json:"stabilize_time_sec"`    // time buffer to converge onto each waypoint

	MinBattery int `json:"min_battery"` // percent

	EpsilonXYZ float64 `json:"epsilon_xyz"` // per-axis proximity tolerance, m
	EpsilonYaw float64 `json:"epsilon_yaw"` // heading proximity tolerance, rad

	TrimSpeed float64 `json:"trim_speed"`

	JoyAxisThrottle int `json:"joy_axis_throttle"`
	JoyAxisStrafe   int `json:"joy_axis_strafe"`
	JoyAxisVertical int `json:"joy_axis_vertical"`
	JoyAxisYaw      int `json:"joy_axis_yaw"`
	JoyAxisTrimLR   int `json:"joy_axis_trim_lr"`
	JoyAxisTrimFB   int `json:"joy_axis_trim_fb"`
	JoyButtonTakeoff int `json:"joy_button_takeoff"`
	JoyButtonLand    int `json:"joy_button_land"`
	JoyButtonShift   int `json:"joy_button_shift"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		SpinRate:            20,
		TelemetryTimeoutSec: 1.5,
		OdomTimeoutSec:      1.5,
		StabilizeTimeSec:    5.0,
		MinBattery:          20,
		EpsilonXYZ:          0.1,
		EpsilonYaw:          0.1,
		TrimSpeed:           0.2,
		JoyAxisThrottle:     joyAxisRightFB,
		JoyAxisStrafe:       joyAxisRightLR,
		JoyAxisVertical:     joyAxisLeftFB,
		JoyAxisYaw:          joyAxisLeftLR,
		JoyAxisTrimLR:       joyAxisTrimLR,
		JoyAxisTrimFB:       joyAxisTrimFB,
		JoyButtonTakeoff:    joyButtonMenu,
		JoyButtonLand:       joyButtonView,
		JoyButtonShift:      joyButtonLeftBumper,
	}
}

// LoadConfig reads JSON overrides on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SpinRate <= 0 {
		return fmt.Errorf("spin_rate must be positive, got %d", c.SpinRate)
	}
	if c.TelemetryTimeoutSec <= 0 || c.OdomTimeoutSec <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.StabilizeTimeSec < 0 {
		return fmt.Errorf("stabilize_time_sec must not be negative")
	}
	return nil
}

func (c Config) spinPeriod() time.Duration {
	return time.Second / time.Duration(c.SpinRate)
}

func (c Config) telemetryTimeout() time.Duration {
	return time.Duration(c.TelemetryTimeoutSec * float64(time.Second))
}

func (c Config) odomTimeout() time.Duration {
	return time.Duration(c.OdomTimeoutSec * float64(time.Second))
}

func (c Config) stabilizeTime() time.Duration {
	return time.Duration(c.StabilizeTimeSec * float64(time.Second))
}
