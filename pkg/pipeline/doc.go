// Package pipeline runs many independent instances of a filter chain concurrently.
//
// A pipeline instance (Logic) owns a fixed topology of filters wired at construction time.
// Every filter performs a bounded unit of work and then notifies its observers. An observer
// (Link) either dispatches the next filter in a new goroutine, or, at the end of the chain,
// marks the owning instance terminal. Nothing waits for a dispatched filter: ordering inside an
// instance comes from the notifications only.
//
// Starting an instance dispatches its start filter and waits for it up to a timeout. A timeout
// or a cancelled wait is reported but never stops the chain, which still reaches its terminal
// state on its own.
//
// The Supervisor creates the instances, starts them all concurrently and waits until every one
// of them is terminal, either by polling the terminal flags or by counting down their done
// channels.
//
// Options implementing model.PipelineOption observe instances while they run. The measure and
// drawer packages provide options to collect filter durations and to draw the topology.
package pipeline
