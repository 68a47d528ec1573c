package app

import "inventory-orders/internal/core"

// CreateUserRequest is the input for provisioning a user. Password is plain text.
type CreateUserRequest struct {
	Username string
	Email    string
	Password string
	Role     core.Role
}

// CreateOrderRequest is the input for creating an order on behalf of ActorID.
type CreateOrderRequest struct {
	ActorID string
	Order   core.CreateOrderInput
}

// UpdateOrderRequest is a partial order update on behalf of ActorID.
type UpdateOrderRequest struct {
	ActorID string
	OrderID string
	Changes core.UpdateOrderInput
}
