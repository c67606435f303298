// Package hooks provides ready-made hsm.Hook implementations for logging,
// metrics and recording of state machine activity.
package hooks
