package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/metrics"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/sms"
	"github.com/Skotchmaster/marketplace/internal/storage"
)

// RejectedItem reports an order item that was dropped during order creation.
type RejectedItem struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type OrderDetails struct {
	Order    models.Order
	Items    []models.OrderItem
	Rejected []RejectedItem
}

type OrderService struct {
	Store    storage.Storage
	Events   mykafka.Publisher
	Notifier sms.Notifier
	Metrics  *metrics.Metrics
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.Store.GetOrders(ctx)
}

func (s *OrderService) GetOrder(ctx context.Context, id int) (*OrderDetails, error) {
	o, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, *o)
}

func (s *OrderService) Track(ctx context.Context, code string) (*OrderDetails, error) {
	o, err := s.Store.GetOrderByTrackingCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, *o)
}

func (s *OrderService) withItems(ctx context.Context, o models.Order) (*OrderDetails, error) {
	items, err := s.Store.GetOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &OrderDetails{Order: o, Items: items}, nil
}

// CreateOrder persists the order and then each item on its own. An item that fails to
// decode, validate or persist is reported in Rejected and does not undo the order or
// the items already written. The order id is forced onto every item.
func (s *OrderService) CreateOrder(ctx context.Context, in models.InsertOrder, rawItems []json.RawMessage) (*OrderDetails, error) {
	l := logging.FromContext(ctx).With("service", "order.create")

	if err := validate(in); err != nil {
		return nil, err
	}

	o, err := s.Store.CreateOrder(ctx, in)
	if err != nil {
		return nil, err
	}

	res := &OrderDetails{Order: *o, Items: make([]models.OrderItem, 0, len(rawItems)), Rejected: make([]RejectedItem, 0)}
	for i, raw := range rawItems {
		var item models.InsertOrderItem
		if err := json.Unmarshal(raw, &item); err != nil {
			res.Rejected = append(res.Rejected, RejectedItem{Index: i, Reason: "malformed item: " + err.Error()})
			continue
		}
		orderID := o.ID
		item.OrderID = &orderID

		if err := validate(item); err != nil {
			res.Rejected = append(res.Rejected, RejectedItem{Index: i, Reason: err.Error()})
			continue
		}

		created, err := s.Store.CreateOrderItem(ctx, item)
		if err != nil {
			l.Error("order_item_create_error", "order_id", o.ID, "index", i, "error", err)
			res.Rejected = append(res.Rejected, RejectedItem{Index: i, Reason: "could not store item"})
			continue
		}
		res.Items = append(res.Items, *created)
	}

	if len(res.Rejected) > 0 {
		l.Warn("order_items_rejected", "order_id", o.ID, "rejected", len(res.Rejected), "accepted", len(res.Items))
	}
	if s.Metrics != nil {
		s.Metrics.OrdersCreated.Inc()
		s.Metrics.OrderItemsRejected.Add(float64(len(res.Rejected)))
	}

	publish(ctx, s.Events, mykafka.TopicOrders, strconv.Itoa(o.ID), mykafka.NewEvent("order_created", map[string]any{
		"order":         res.Order,
		"items":         res.Items,
		"rejectedItems": len(res.Rejected),
	}))
	return res, nil
}

// UpdateOrder merges the patch without any status checks. When the status changes the
// customer gets an SMS.
func (s *OrderService) UpdateOrder(ctx context.Context, id int, patch models.OrderPatch) (*models.Order, error) {
	before, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	o, err := s.Store.UpdateOrder(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicOrders, strconv.Itoa(o.ID), mykafka.NewEvent("order_updated", o))
	if o.Status != before.Status {
		s.notifyStatus(ctx, *o)
	}
	return o, nil
}

// ChangeStatus moves an order along the admin workflow and rejects any other move.
func (s *OrderService) ChangeStatus(ctx context.Context, id int, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}

	o, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(o.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}

	// the store re-checks the status inside its write so a concurrent change cannot slip
	// between the transition check and the update
	updated, err := s.UpdateOrder(ctx, id, models.OrderPatch{Status: &to, ExpectedStatus: &o.Status})
	if errors.Is(err, storage.ErrConflict) {
		return nil, fmt.Errorf("%w: %s -> %s: %w", ErrInvalidTransition, o.Status, to, err)
	}
	return updated, err
}

func (s *OrderService) notifyStatus(ctx context.Context, o models.Order) {
	if s.Notifier == nil || o.PhoneNumber == "" {
		return
	}

	nctx, cancel := context.WithTimeout(ctx, outboundTimeout)
	defer cancel()

	result := "sent"
	if err := s.Notifier.Send(nctx, o.PhoneNumber, sms.StatusMessage(o)); err != nil {
		result = "failed"
		logging.FromContext(ctx).Error("sms_send_error", "order_id", o.ID, "status", o.Status, "error", err)
	}
	if s.Metrics != nil {
		s.Metrics.StatusNotifications.WithLabelValues(result).Inc()
	}
}
