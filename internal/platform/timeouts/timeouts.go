// Package timeouts defines timeout constants shared by the commands.
package timeouts

import "time"

// ScenarioStep caps a single scripted scenario step.
const ScenarioStep = 10 * time.Second

// Shutdown limits how long telemetry exporters may flush on exit.
const Shutdown = 5 * time.Second
