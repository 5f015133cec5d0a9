// If you are AI: the contract every operator hook implements.
package hooks

import "context"

// Hook is a handler invoked for every Event it's registered against.
type Hook interface {
	Execute(ctx context.Context, event Event) error
	ID() string
}
