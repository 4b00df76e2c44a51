package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zabotech/ops-system/internal/api/metrics"
	"github.com/zabotech/ops-system/internal/core/ports"
)

// OrderHandler handles work-order routes.
type OrderHandler struct {
	orderService ports.OrderService
}

func NewOrderHandler(orderService ports.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create registers a new order for a client.
//
// @Summary      Create an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrderRequest  true  "Order details"
// @Success      201   {object}  createOrderResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	creatorID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	detail, err := h.orderService.CreateOrder(c.Request().Context(), req.toInput(), creatorID)
	if err != nil {
		return err
	}

	metrics.OrdersCreatedTotal.WithLabelValues(req.Category).Inc()
	return c.JSON(http.StatusCreated, createOrderResponse{
		Message: "Order created successfully",
		Order:   toOrderResponse(*detail),
	})
}

// List returns a filtered, sorted page of orders.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        status      query  string  false  "Filter by status"
// @Param        priority    query  string  false  "Filter by priority"
// @Param        category    query  string  false  "Filter by category"
// @Param        client      query  string  false  "Filter by client id"
// @Param        createdBy   query  string  false  "Filter by creator id"
// @Param        assignedTo  query  string  false  "Filter by assignee id"
// @Param        sortBy      query  string  false  "Sort field (default createdAt)"
// @Param        sortOrder   query  string  false  "asc or desc (default desc)"
// @Param        page        query  int     false  "Page number (default 1)"
// @Param        limit       query  int     false  "Page size (default 10, max 100)"
// @Success      200  {object}  listOrdersResponse
// @Router       /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.orderService.ListOrders(c.Request().Context(), ports.ListOrdersInput{
		Status:     c.QueryParam("status"),
		Priority:   c.QueryParam("priority"),
		Category:   c.QueryParam("category"),
		ClientID:   c.QueryParam("client"),
		CreatedBy:  c.QueryParam("createdBy"),
		AssignedTo: c.QueryParam("assignedTo"),
		SortBy:     c.QueryParam("sortBy"),
		SortOrder:  c.QueryParam("sortOrder"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listOrdersResponse{
		Orders: toOrderResponses(result.Items),
		Pagination: orderPagination{
			CurrentPage: result.Pagination.CurrentPage,
			TotalPages:  result.Pagination.TotalPages,
			TotalOrders: result.Pagination.TotalOrders,
			HasNext:     result.Pagination.HasNext,
			HasPrev:     result.Pagination.HasPrev,
		},
	})
}

// GetByID returns one order with its references resolved.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Order id"
// @Success      200  {object}  orderResponse
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c echo.Context) error {
	detail, err := h.orderService.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(*detail))
}

// ListByClient returns all orders belonging to one client.
//
// @Summary      List a client's orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        clientId  path   string  true   "Client id"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        limit     query  int     false  "Page size (default 10, max 100)"
// @Success      200  {object}  clientOrdersResponse
// @Failure      404  {object}  errorResponse
// @Router       /orders/client/{clientId} [get]
func (h *OrderHandler) ListByClient(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.orderService.ListByClient(c.Request().Context(), c.Param("clientId"), page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, clientOrdersResponse{
		Client: clientRefResponse{
			ID:      result.Client.ID,
			Name:    result.Client.Name,
			Email:   result.Client.Email,
			Company: result.Client.Company,
		},
		Orders:      toOrderResponses(result.Orders),
		TotalOrders: result.TotalOrders,
	})
}

// Update modifies an order's descriptive fields. Status is rejected here;
// only the status endpoint may transition an order.
//
// @Summary      Update an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Order id"
// @Param        body  body      updateOrderRequest  true  "Fields to change"
// @Success      200   {object}  createOrderResponse
// @Failure      404   {object}  errorResponse
// @Router       /orders/{id} [put]
func (h *OrderHandler) Update(c echo.Context) error {
	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	detail, err := h.orderService.UpdateOrder(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, createOrderResponse{
		Message: "Order updated successfully",
		Order:   toOrderResponse(*detail),
	})
}

// ChangeStatus transitions an order and appends the history entry.
//
// @Summary      Change order status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Order id"
// @Param        body  body      changeStatusRequest  true  "Target status and optional comment"
// @Success      200   {object}  createOrderResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) ChangeStatus(c echo.Context) error {
	var req changeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actorID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	detail, err := h.orderService.ChangeStatus(c.Request().Context(), c.Param("id"), req.Status, req.Comment, actorID)
	if err != nil {
		return err
	}

	metrics.OrderStatusChangesTotal.WithLabelValues(req.Status).Inc()
	return c.JSON(http.StatusOK, createOrderResponse{
		Message: "Order status updated successfully",
		Order:   toOrderResponse(*detail),
	})
}

// Delete removes an order.
//
// @Summary      Delete an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Order id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Delete(c echo.Context) error {
	if err := h.orderService.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Order deleted successfully"})
}

// Stats returns the dashboard aggregates.
//
// @Summary      Order statistics
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  orderStatsResponse
// @Router       /orders/stats [get]
func (h *OrderHandler) Stats(c echo.Context) error {
	stats, err := h.orderService.Stats(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orderStatsResponse{
		StatusStats:   toStatCounts(stats.StatusCounts),
		PriorityStats: toStatCounts(stats.PriorityCounts),
		RecentOrders:  toOrderResponses(stats.RecentOrders),
		OverdueOrders: stats.OverdueOrders,
	})
}
