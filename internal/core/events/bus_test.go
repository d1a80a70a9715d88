package events_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frahmantamala/invoice-management/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var (
		bus *events.EventBus
		evt *events.InvoiceStatusChangedEvent
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		evt = events.NewInvoiceStatusChangedEvent(events.EventTypeInvoiceApproved,
			"inv-1", "owner-1", "admin-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "SENT", "APPROVED")
	})

	It("builds events with an id and a payload", func() {
		Expect(evt.EventID()).NotTo(BeEmpty())
		Expect(evt.EventType()).To(Equal(events.EventTypeInvoiceApproved))
		Expect(evt.Payload()).To(HaveKeyWithValue("invoice_date", "2024-01-01"))
	})

	It("delivers asynchronously to every subscriber even after the caller's context ends", func() {
		var calls, cancelled int32
		handler := func(ctx context.Context, e events.Event) error {
			if ctx.Err() != nil {
				atomic.AddInt32(&cancelled, 1)
			}
			atomic.AddInt32(&calls, 1)
			return nil
		}
		bus.Subscribe(events.EventTypeInvoiceApproved, handler)
		bus.Subscribe(events.EventTypeInvoiceApproved, handler)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, evt)).To(Succeed())
		bus.Wait()

		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(2)))
		Expect(atomic.LoadInt32(&cancelled)).To(BeZero())
	})

	It("ignores events nobody listens to", func() {
		Expect(bus.Publish(context.Background(), evt)).To(Succeed())
		Expect(bus.PublishSync(context.Background(), evt)).To(Succeed())
	})

	It("surfaces handler failures on the synchronous path", func() {
		bus.Subscribe(events.EventTypeInvoiceApproved, func(ctx context.Context, e events.Event) error {
			return errors.New("boom")
		})

		err := bus.PublishSync(context.Background(), evt)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invoice.approved"))
	})
	It("contains a panicking handler without starving the others", func() {
		var calls int32
		bus.Subscribe(events.EventTypeInvoiceApproved, func(ctx context.Context, e events.Event) error {
			panic("nil map")
		})
		bus.Subscribe(events.EventTypeInvoiceApproved, func(ctx context.Context, e events.Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})

		Expect(bus.Publish(context.Background(), evt)).To(Succeed())
		bus.Wait()
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(1)))

		err := bus.PublishSync(context.Background(), evt)
		Expect(err).To(MatchError(ContainSubstring("panicked")))
	})
})
