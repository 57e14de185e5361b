// Package broadcast streams a running simulation to websocket clients.
//
// A Server owns one Simulator and ticks it on a fixed frame interval. Each
// Signal is copied out through a spin.ChannelObserver, encoded as a Frame and
// fanned out by the Hub to every client connected on /signal. Clients that
// fall behind are dropped rather than allowed to stall the simulation.
//
// # Thread Safety
//
// Only the goroutine started by Server.Run touches the Simulator. The Hub
// and the /state handler are safe for concurrent use.
package broadcast
