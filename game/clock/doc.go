// Package clock drives yard sessions in real time.
//
// Scheduler calls Ticker.TickAll at a fixed rate (DefaultTickRate, 60Hz)
// and hands the resulting updates to every Sink, typically the WebSocket
// hub. Manual stepping through YardService.Advance works alongside it.
//
//	sched := clock.NewScheduler(yard, 60, hub)
//	sched.Start(ctx)
//	defer sched.Stop()
package clock
