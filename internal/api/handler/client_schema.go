package handler

import (
	"time"

	"github.com/zabotech/ops-system/internal/core/domain"
	"github.com/zabotech/ops-system/internal/core/ports"
)

type createClientRequest struct {
	Name                    string    `json:"name"                    validate:"required,min=2,max=50"`
	Email                   string    `json:"email"                   validate:"required,email"`
	Phone                   string    `json:"phone"                   validate:"required,min=7,max=20"`
	Company                 string    `json:"company"                 validate:"required,min=2,max=100"`
	SubscriptionRenewalDate time.Time `json:"subscriptionRenewalDate" validate:"required"`
	SubscriptionAmount      *float64  `json:"subscriptionAmount"      validate:"required,gte=0"`
	Notes                   string    `json:"notes"                   validate:"max=500"`
}

type updateClientRequest struct {
	Name                    string     `json:"name"    validate:"required,min=2,max=50"`
	Email                   string     `json:"email"   validate:"required,email"`
	Phone                   string     `json:"phone"   validate:"required,min=7,max=20"`
	Company                 string     `json:"company" validate:"required,min=2,max=100"`
	SubscriptionRenewalDate *time.Time `json:"subscriptionRenewalDate"`
	SubscriptionAmount      *float64   `json:"subscriptionAmount" validate:"omitempty,gte=0"`
	Notes                   string     `json:"notes"              validate:"max=500"`
}

type patchClientRequest struct {
	Name                    *string    `json:"name"    validate:"omitempty,min=2,max=50"`
	Email                   *string    `json:"email"   validate:"omitempty,email"`
	Phone                   *string    `json:"phone"   validate:"omitempty,min=7,max=20"`
	Company                 *string    `json:"company" validate:"omitempty,min=2,max=100"`
	SubscriptionRenewalDate *time.Time `json:"subscriptionRenewalDate"`
	SubscriptionAmount      *float64   `json:"subscriptionAmount" validate:"omitempty,gte=0"`
	Notes                   *string    `json:"notes"              validate:"omitempty,max=500"`
}

type clientPagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalClients int64 `json:"totalClients"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

type listClientsResponse struct {
	Clients    []*domain.Client `json:"clients"`
	Pagination clientPagination `json:"pagination"`
}

func (r *createClientRequest) toInput() ports.CreateClientInput {
	amount := 0.0
	if r.SubscriptionAmount != nil {
		amount = *r.SubscriptionAmount
	}
	return ports.CreateClientInput{
		Name:                    r.Name,
		Email:                   r.Email,
		Phone:                   r.Phone,
		Company:                 r.Company,
		SubscriptionRenewalDate: r.SubscriptionRenewalDate,
		SubscriptionAmount:      amount,
		Notes:                   r.Notes,
	}
}

func (r *updateClientRequest) toInput() ports.UpdateClientInput {
	return ports.UpdateClientInput{
		Name:                    r.Name,
		Email:                   r.Email,
		Phone:                   r.Phone,
		Company:                 r.Company,
		SubscriptionRenewalDate: r.SubscriptionRenewalDate,
		SubscriptionAmount:      r.SubscriptionAmount,
		Notes:                   r.Notes,
	}
}

func (r *patchClientRequest) toPatch() ports.ClientPatch {
	return ports.ClientPatch{
		Name:                    r.Name,
		Email:                   r.Email,
		Phone:                   r.Phone,
		Company:                 r.Company,
		SubscriptionRenewalDate: r.SubscriptionRenewalDate,
		SubscriptionAmount:      r.SubscriptionAmount,
		Notes:                   r.Notes,
	}
}
