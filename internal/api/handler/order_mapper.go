package handler

import (
	"github.com/zabotech/ops-system/internal/core/domain"
	"github.com/zabotech/ops-system/internal/core/ports"
)

func (r *createOrderRequest) toInput() ports.CreateOrderInput {
	return ports.CreateOrderInput{
		ClientID:          r.Client,
		Title:             r.Title,
		Description:       r.Description,
		Category:          r.Category,
		Priority:          r.Priority,
		AssignedTo:        r.AssignedTo,
		EstimatedCost:     r.EstimatedCost,
		EstimatedDuration: r.EstimatedDuration,
		ScheduledDate:     r.ScheduledDate,
		DueDate:           r.DueDate,
		Materials:         toMaterialInputs(r.Materials),
		Notes:             r.Notes,
		InternalNotes:     r.InternalNotes,
	}
}

func (r *updateOrderRequest) toInput() ports.UpdateOrderInput {
	input := ports.UpdateOrderInput{
		Title:             r.Title,
		Description:       r.Description,
		Category:          r.Category,
		Priority:          r.Priority,
		AssignedTo:        r.AssignedTo,
		EstimatedCost:     r.EstimatedCost,
		ActualCost:        r.ActualCost,
		EstimatedDuration: r.EstimatedDuration,
		ActualDuration:    r.ActualDuration,
		ScheduledDate:     r.ScheduledDate,
		DueDate:           r.DueDate,
		Notes:             r.Notes,
		InternalNotes:     r.InternalNotes,
	}
	if r.Materials != nil {
		materials := toMaterialInputs(*r.Materials)
		input.Materials = &materials
	}
	if r.Attachments != nil {
		attachments := make([]ports.AttachmentInput, len(*r.Attachments))
		for i, a := range *r.Attachments {
			attachments[i] = ports.AttachmentInput{Filename: a.Filename, URL: a.URL}
		}
		input.Attachments = &attachments
	}
	return input
}

func toMaterialInputs(reqs []materialRequest) []ports.MaterialInput {
	if len(reqs) == 0 {
		return nil
	}
	materials := make([]ports.MaterialInput, len(reqs))
	for i, m := range reqs {
		materials[i] = ports.MaterialInput{Name: m.Name, Quantity: m.Quantity, Cost: m.Cost}
	}
	return materials
}

func toClientRefResponse(ref *ports.ClientRef) *clientRefResponse {
	if ref == nil {
		return nil
	}
	return &clientRefResponse{ID: ref.ID, Name: ref.Name, Email: ref.Email, Company: ref.Company}
}

func toUserRefResponse(ref *ports.UserRef) *userRefResponse {
	if ref == nil {
		return nil
	}
	return &userRefResponse{ID: ref.ID, Name: ref.Name, Email: ref.Email}
}

func toOrderResponse(d ports.OrderDetail) orderResponse {
	o := d.Order

	materials := make([]materialResponse, len(o.Materials))
	for i, m := range o.Materials {
		materials[i] = materialResponse{Name: m.Name, Quantity: m.Quantity, Cost: m.Cost}
	}

	var attachments []attachmentResponse
	for _, a := range o.Attachments {
		attachments = append(attachments, attachmentResponse{
			Filename:   a.Filename,
			URL:        a.URL,
			UploadedAt: a.UploadedAt,
		})
	}

	history := make([]statusChangeResponse, len(o.StatusHistory))
	for i, sc := range o.StatusHistory {
		history[i] = statusChangeResponse{
			Status:    string(sc.Status),
			ChangedBy: historyActor(sc, d.Actors),
			ChangedAt: sc.ChangedAt,
			Comment:   sc.Comment,
		}
	}

	return orderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		Client:            toClientRefResponse(d.Client),
		CreatedBy:         toUserRefResponse(d.CreatedBy),
		AssignedTo:        toUserRefResponse(d.AssignedTo),
		Title:             o.Title,
		Description:       o.Description,
		Category:          string(o.Category),
		Priority:          string(o.Priority),
		Status:            string(o.Status),
		EstimatedCost:     o.EstimatedCost,
		ActualCost:        o.ActualCost,
		EstimatedDuration: o.EstimatedDuration,
		ActualDuration:    o.ActualDuration,
		ScheduledDate:     o.ScheduledDate,
		DueDate:           o.DueDate,
		CompletedDate:     o.CompletedDate,
		Materials:         materials,
		Attachments:       attachments,
		Notes:             o.Notes,
		InternalNotes:     o.InternalNotes,
		StatusHistory:     history,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// historyActor resolves the user behind a history entry. Deleted users leave
// a bare id reference so the entry still tells who acted.
func historyActor(sc domain.StatusChange, actors map[string]ports.UserRef) *userRefResponse {
	if sc.ChangedBy == "" {
		return nil
	}
	if ref, ok := actors[sc.ChangedBy]; ok {
		return &userRefResponse{ID: ref.ID, Name: ref.Name, Email: ref.Email}
	}
	return &userRefResponse{ID: sc.ChangedBy}
}

func toOrderResponses(details []ports.OrderDetail) []orderResponse {
	orders := make([]orderResponse, len(details))
	for i, d := range details {
		orders[i] = toOrderResponse(d)
	}
	return orders
}

func toStatCounts(counts []ports.StatusCount) []statCountResponse {
	out := make([]statCountResponse, len(counts))
	for i, c := range counts {
		out[i] = statCountResponse{ID: c.Value, Count: c.Count}
	}
	return out
}
