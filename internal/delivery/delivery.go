// Package delivery defines the contract shared by the process's inbound transports.
package delivery

import "context"

// Delivery is a long-running inbound transport started by main.
type Delivery interface {
	Serve(ctx context.Context) error
}
