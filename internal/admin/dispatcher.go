package admin

import (
	"context"
	"fmt"

	"github.com/NALLOO/AnTruaNao-V2/internal/order"
	"github.com/NALLOO/AnTruaNao-V2/internal/payment"
	"github.com/NALLOO/AnTruaNao-V2/internal/user"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
)

// WeekCommands is the week service as seen by the dispatcher
type WeekCommands interface {
	Create(ctx context.Context, req *week.CreateWeekRequest) (*week.Week, error)
	Finalize(ctx context.Context, id string) (*week.Week, error)
	Delete(ctx context.Context, id string) error
}

// MemberCommands is the user service as seen by the dispatcher
type MemberCommands interface {
	CreateMany(ctx context.Context, req *user.CreateUsersRequest) ([]*user.User, error)
	Update(ctx context.Context, id string, req *user.UpdateUserRequest) (*user.User, error)
	Delete(ctx context.Context, id string) error
}

// OrderCommands is the order service as seen by the dispatcher
type OrderCommands interface {
	Create(ctx context.Context, req *order.OrderRequest) (*order.Order, error)
	Replace(ctx context.Context, id string, req *order.OrderRequest) (*order.Order, error)
	Delete(ctx context.Context, id string) error
}

// PaymentCommands is the payment service as seen by the dispatcher
type PaymentCommands interface {
	SetStatus(ctx context.Context, req *payment.UpdatePaymentRequest) (*payment.Payment, error)
}

// Dispatcher runs each command variant against the owning service
type Dispatcher struct {
	weeks    WeekCommands
	members  MemberCommands
	orders   OrderCommands
	payments PaymentCommands
}

// NewDispatcher creates a dispatcher over the feature services
func NewDispatcher(weeks WeekCommands, members MemberCommands, orders OrderCommands, payments PaymentCommands) *Dispatcher {
	return &Dispatcher{weeks: weeks, members: members, orders: orders, payments: payments}
}

// Dispatch executes cmd and returns the response DTO of its result
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (any, error) {
	switch c := cmd.(type) {
	case *WeekCreate:
		return d.weekCreate(ctx, c)
	case *WeekFinalize:
		return d.weekFinalize(ctx, c)
	case *WeekDelete:
		return nil, d.weeks.Delete(ctx, c.ID)
	case *MemberCreate:
		return d.memberCreate(ctx, c)
	case *MemberUpdate:
		return d.memberUpdate(ctx, c)
	case *MemberDelete:
		return nil, d.members.Delete(ctx, c.ID)
	case *OrderCreate:
		return d.orderCreate(ctx, c)
	case *OrderUpdate:
		return d.orderUpdate(ctx, c)
	case *OrderDelete:
		return nil, d.orders.Delete(ctx, c.ID)
	case *PaymentUpdate:
		return d.paymentUpdate(ctx, c)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

func (d *Dispatcher) weekCreate(ctx context.Context, c *WeekCreate) (any, error) {
	w, err := d.weeks.Create(ctx, &c.CreateWeekRequest)
	if err != nil {
		return nil, err
	}
	return w.ToResponse(), nil
}

func (d *Dispatcher) weekFinalize(ctx context.Context, c *WeekFinalize) (any, error) {
	w, err := d.weeks.Finalize(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return w.ToResponse(), nil
}

func (d *Dispatcher) memberCreate(ctx context.Context, c *MemberCreate) (any, error) {
	users, err := d.members.CreateMany(ctx, &c.CreateUsersRequest)
	if err != nil {
		return nil, err
	}
	resp := make([]*user.UserResponse, len(users))
	for i, u := range users {
		resp[i] = u.ToResponse()
	}
	return resp, nil
}

func (d *Dispatcher) memberUpdate(ctx context.Context, c *MemberUpdate) (any, error) {
	u, err := d.members.Update(ctx, c.ID, &c.UpdateUserRequest)
	if err != nil {
		return nil, err
	}
	return u.ToResponse(), nil
}

func (d *Dispatcher) orderCreate(ctx context.Context, c *OrderCreate) (any, error) {
	o, err := d.orders.Create(ctx, &c.OrderRequest)
	if err != nil {
		return nil, err
	}
	return o.ToResponse(), nil
}

func (d *Dispatcher) orderUpdate(ctx context.Context, c *OrderUpdate) (any, error) {
	o, err := d.orders.Replace(ctx, c.ID, &c.OrderRequest)
	if err != nil {
		return nil, err
	}
	return o.ToResponse(), nil
}

func (d *Dispatcher) paymentUpdate(ctx context.Context, c *PaymentUpdate) (any, error) {
	p, err := d.payments.SetStatus(ctx, &c.UpdatePaymentRequest)
	if err != nil {
		return nil, err
	}
	return p.ToResponse(), nil
}
