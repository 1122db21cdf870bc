// Package chat implements the conversation lifecycle: session establishment
// with silent degradation when the backend's bookkeeping is unreachable
// ([Manager]), and the optimistic send/receive message cycle ([Exchanger]).
//
// A transcript never dangles: every user turn is followed by an assistant
// turn, synthesized from the failure reason when the exchange fails.
package chat
