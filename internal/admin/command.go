package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NALLOO/AnTruaNao-V2/internal/order"
	"github.com/NALLOO/AnTruaNao-V2/internal/payment"
	"github.com/NALLOO/AnTruaNao-V2/internal/user"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
	"github.com/NALLOO/AnTruaNao-V2/pkg/validation"
)

// Kind names a command variant
type Kind string

const (
	KindWeekCreate    Kind = "week.create"
	KindWeekFinalize  Kind = "week.finalize"
	KindWeekDelete    Kind = "week.delete"
	KindMemberCreate  Kind = "member.create"
	KindMemberUpdate  Kind = "member.update"
	KindMemberDelete  Kind = "member.delete"
	KindOrderCreate   Kind = "order.create"
	KindOrderUpdate   Kind = "order.update"
	KindOrderDelete   Kind = "order.delete"
	KindPaymentUpdate Kind = "payment.update"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidPayload = errors.New("invalid command payload")
)

// Command is one admin mutation
type Command interface {
	Kind() Kind
}

// ByID targets an existing entity
type ByID struct {
	ID string `json:"id" validate:"required,max=64"`
}

type WeekCreate struct{ week.CreateWeekRequest }
type WeekFinalize struct{ ByID }
type WeekDelete struct{ ByID }

type MemberCreate struct{ user.CreateUsersRequest }
type MemberUpdate struct {
	ByID
	user.UpdateUserRequest
}
type MemberDelete struct{ ByID }

type OrderCreate struct{ order.OrderRequest }
type OrderUpdate struct {
	ByID
	order.OrderRequest
}
type OrderDelete struct{ ByID }

type PaymentUpdate struct{ payment.UpdatePaymentRequest }

func (WeekCreate) Kind() Kind    { return KindWeekCreate }
func (WeekFinalize) Kind() Kind  { return KindWeekFinalize }
func (WeekDelete) Kind() Kind    { return KindWeekDelete }
func (MemberCreate) Kind() Kind  { return KindMemberCreate }
func (MemberUpdate) Kind() Kind  { return KindMemberUpdate }
func (MemberDelete) Kind() Kind  { return KindMemberDelete }
func (OrderCreate) Kind() Kind   { return KindOrderCreate }
func (OrderUpdate) Kind() Kind   { return KindOrderUpdate }
func (OrderDelete) Kind() Kind   { return KindOrderDelete }
func (PaymentUpdate) Kind() Kind { return KindPaymentUpdate }

// Decode turns an envelope into its command variant and validates it
func Decode(req CommandRequest) (Command, error) {
	var cmd Command
	switch req.Type {
	case KindWeekCreate:
		cmd = &WeekCreate{}
	case KindWeekFinalize:
		cmd = &WeekFinalize{}
	case KindWeekDelete:
		cmd = &WeekDelete{}
	case KindMemberCreate:
		cmd = &MemberCreate{}
	case KindMemberUpdate:
		cmd = &MemberUpdate{}
	case KindMemberDelete:
		cmd = &MemberDelete{}
	case KindOrderCreate:
		cmd = &OrderCreate{}
	case KindOrderUpdate:
		cmd = &OrderUpdate{}
	case KindOrderDelete:
		cmd = &OrderDelete{}
	case KindPaymentUpdate:
		cmd = &PaymentUpdate{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, req.Type)
	}

	payload := bytes.TrimSpace(req.Payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		payload = []byte("{}")
	}
	if err := json.Unmarshal(payload, cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := validation.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return cmd, nil
}
