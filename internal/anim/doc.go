// Package anim drives a particle field from a host's frame clock.
//
// An [Animator] has two states, Stopped and Running. Start acquires the
// host's drawing surface, seeds the field from the host size, subscribes to
// resize (and pointer) notifications and requests the first frame. Every
// frame steps the field once and renders it once, then requests the next
// frame. Stop cancels the pending frame and drops every subscription.
//
// Frames come from a [Scheduler]:
//
//   - [FrameQueue]: pumped by the host once per display refresh (TUI tick,
//     window loop, offline recorder)
//   - [TickerScheduler]: wall-clock timers at a fixed rate
package anim
