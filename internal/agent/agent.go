package agent

import "context"

// Agent sends requests to canisters through an IC boundary gateway.
//
// Query is a read-only call answered by a single replica; Call goes through
// consensus and mutates canister state. Both decode the canister reply into
// reply, which must be a pointer.
type Agent interface {
	Query(ctx context.Context, canisterID Principal, method string, args any, reply any) error
	Call(ctx context.Context, canisterID Principal, method string, args any, reply any) error

	// Identity returns the principal requests are signed as.
	Identity() Principal
}
