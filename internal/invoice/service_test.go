package invoice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/auth"
	"github.com/frahmantamala/invoice-management/internal/core/events"
	"github.com/frahmantamala/invoice-management/internal/settings"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type mockRepository struct {
	invoices     map[string]*Invoice
	lastChanges  ItemChanges
	writes       int
	getCalls     int
	failWrites   error
	statusRaceTo Status
}

func newMockRepository() *mockRepository {
	return &mockRepository{invoices: map[string]*Invoice{}}
}

func clone(inv *Invoice) *Invoice {
	cp := *inv
	cp.Items = append([]Item(nil), inv.Items...)
	return &cp
}

func (m *mockRepository) Create(_ context.Context, inv *Invoice) error {
	if m.failWrites != nil {
		return m.failWrites
	}
	m.writes++
	m.invoices[inv.ID] = clone(inv)
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*Invoice, error) {
	m.getCalls++
	inv, ok := m.invoices[id]
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	return clone(inv), nil
}

func (m *mockRepository) Update(_ context.Context, inv *Invoice, changes ItemChanges) error {
	if m.failWrites != nil {
		return m.failWrites
	}
	stored := m.invoices[inv.ID]
	if stored.Status != StatusDraft {
		return ErrInvoiceLocked
	}
	m.writes++
	m.lastChanges = changes
	m.invoices[inv.ID] = clone(inv)
	return nil
}

func (m *mockRepository) UpdateStatus(_ context.Context, inv *Invoice, from Status) error {
	stored := m.invoices[inv.ID]
	if m.statusRaceTo != "" {
		stored.Status = m.statusRaceTo
	}
	if stored.Status != from {
		return ErrStatusChanged
	}
	m.writes++
	m.invoices[inv.ID] = clone(inv)
	return nil
}

type mockQueries struct {
	lastFilter ListFilter
	views      []View
	counts     map[Status]int64
	nextDue    *time.Time
}

func (m *mockQueries) List(_ context.Context, f ListFilter) ([]View, int64, error) {
	m.lastFilter = f
	return append([]View(nil), m.views...), int64(len(m.views)), nil
}

func (m *mockQueries) StatusCounts(_ context.Context, _ string) (map[Status]int64, error) {
	return m.counts, nil
}

func (m *mockQueries) NextDraftDue(_ context.Context, _ string, _ time.Time) (*time.Time, error) {
	return m.nextDue, nil
}

type mockSchedules map[string]*settings.PaymentSchedule

func (m mockSchedules) GetPaymentSchedule(_ context.Context, id string) (*settings.PaymentSchedule, error) {
	if s, ok := m[id]; ok {
		return s, nil
	}
	return nil, settings.ErrPaymentScheduleNotFound
}

type mockCategories map[string]bool

func (m mockCategories) Exists(_ context.Context, id string) (bool, error) {
	return m[id], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

var _ = ginkgo.Describe("Invoice Service", func() {
	var (
		service   *Service
		repo      *mockRepository
		queries   *mockQueries
		publisher *recordingPublisher
		ctx       context.Context
		now       = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

		owner   = auth.Caller{UserID: "owner", Email: "owner@example.com", Role: auth.RoleUser}
		other   = auth.Caller{UserID: "other", Email: "other@example.com", Role: auth.RoleUser}
		payroll = auth.Caller{UserID: "payroll", Role: auth.RolePayrollManager}
		admin   = auth.Caller{UserID: "admin", Role: auth.RoleAdmin}
	)

	validDTO := func() InvoiceDTO {
		return InvoiceDTO{
			InvoiceDate:       "2024-01-01",
			PaymentScheduleID: "net15",
			Items: []ItemDTO{
				{Description: "development", Hours: dec("10"), Rate: dec("20"), CategoryID: strPtr("cat-dev")},
				{Description: "testing", Hours: dec("5"), Rate: dec("30")},
			},
		}
	}

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRepository()
		queries = &mockQueries{}
		publisher = &recordingPublisher{}
		schedules := mockSchedules{
			"net15": {ID: "net15", Name: "Net 15", DaysDue: 15},
			"net30": {ID: "net30", Name: "Net 30", DaysDue: 30},
			"now":   {ID: "now", Name: "On receipt", DaysDue: 0},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(repo, queries, schedules, mockCategories{"cat-dev": true}, publisher, logger)
		service.now = func() time.Time { return now }
	})

	createDraft := func() *Invoice {
		inv, err := service.CreateInvoice(ctx, owner, validDTO())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return inv
	}

	ginkgo.Describe("CreateInvoice", func() {
		ginkgo.It("creates a draft owned by the caller with computed totals", func() {
			inv := createDraft()

			gomega.Expect(inv.UserID).To(gomega.Equal("owner"))
			gomega.Expect(inv.Status).To(gomega.Equal(StatusDraft))
			gomega.Expect(inv.DueDate).To(gomega.Equal(date(2024, time.January, 16)))
			gomega.Expect(inv.TotalHours.Equal(dec("15"))).To(gomega.BeTrue())
			gomega.Expect(inv.TotalCost.Equal(dec("350"))).To(gomega.BeTrue())
			gomega.Expect(repo.invoices).To(gomega.HaveKey(inv.ID))
		})

		ginkgo.It("uses a zero-day schedule as the invoice date", func() {
			dto := validDTO()
			dto.PaymentScheduleID = "now"
			inv, err := service.CreateInvoice(ctx, owner, dto)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(inv.DueDate).To(gomega.Equal(inv.InvoiceDate))
		})

		ginkgo.It("fails validation without writing anything", func() {
			dto := validDTO()
			dto.Items[0].Hours = dec("0")
			_, err := service.CreateInvoice(ctx, owner, dto)
			gomega.Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(gomega.BeTrue())

			dto = validDTO()
			dto.Items = nil
			_, err = service.CreateInvoice(ctx, owner, dto)
			gomega.Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(gomega.BeTrue())

			gomega.Expect(repo.writes).To(gomega.BeZero())
		})

		ginkgo.It("rejects hours finer than the stored precision before writing", func() {
			dto := validDTO()
			dto.Items[0].Hours = dec("0.004")
			_, err := service.CreateInvoice(ctx, owner, dto)
			gomega.Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(gomega.BeTrue())
			gomega.Expect(internal.HasType(err, internal.ErrorTypeTransactionFailed)).To(gomega.BeFalse())
			gomega.Expect(repo.writes).To(gomega.BeZero())
		})

		ginkgo.It("returns not found for an unknown schedule", func() {
			dto := validDTO()
			dto.PaymentScheduleID = "net99"
			_, err := service.CreateInvoice(ctx, owner, dto)
			gomega.Expect(errors.Is(err, settings.ErrPaymentScheduleNotFound)).To(gomega.BeTrue())
		})

		ginkgo.It("rejects unknown categories", func() {
			dto := validDTO()
			dto.Items[1].CategoryID = strPtr("cat-nope")
			_, err := service.CreateInvoice(ctx, owner, dto)
			gomega.Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(gomega.BeTrue())
			gomega.Expect(repo.writes).To(gomega.BeZero())
		})

		ginkgo.It("requires an authenticated caller", func() {
			_, err := service.CreateInvoice(ctx, auth.Caller{}, validDTO())
			gomega.Expect(errors.Is(err, internal.ErrUnauthenticated)).To(gomega.BeTrue())
		})

		ginkgo.It("surfaces storage failures as transaction failures", func() {
			repo.failWrites = errors.New("disk full")
			_, err := service.CreateInvoice(ctx, owner, validDTO())
			gomega.Expect(internal.HasType(err, internal.ErrorTypeTransactionFailed)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("UpdateInvoice", func() {
		ginkgo.It("reconciles items and recomputes totals and due date", func() {
			inv := createDraft()
			keep := inv.Items[0]

			dto := InvoiceDTO{
				InvoiceDate:       "2024-01-05",
				PaymentScheduleID: "net30",
				Items: []ItemDTO{
					{ID: keep.ID, Description: "development", Hours: dec("2"), Rate: dec("50")},
					{Description: "review", Hours: dec("1"), Rate: dec("10")},
				},
			}
			updated, err := service.UpdateInvoice(ctx, owner, inv.ID, dto)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(updated.Status).To(gomega.Equal(StatusDraft))
			gomega.Expect(updated.DueDate).To(gomega.Equal(date(2024, time.February, 4)))
			gomega.Expect(updated.TotalHours.Equal(dec("3"))).To(gomega.BeTrue())
			gomega.Expect(updated.TotalCost.Equal(dec("110"))).To(gomega.BeTrue())

			gomega.Expect(repo.lastChanges.Update).To(gomega.HaveLen(1))
			gomega.Expect(repo.lastChanges.Insert).To(gomega.HaveLen(1))
			gomega.Expect(repo.lastChanges.DeleteIDs).To(gomega.ConsistOf(inv.Items[1].ID))
		})

		ginkgo.It("lets an admin edit someone else's draft", func() {
			inv := createDraft()
			_, err := service.UpdateInvoice(ctx, admin, inv.ID, validDTO())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("forbids other users and payroll managers", func() {
			inv := createDraft()
			_, err := service.UpdateInvoice(ctx, other, inv.ID, validDTO())
			gomega.Expect(errors.Is(err, internal.ErrForbidden)).To(gomega.BeTrue())
			_, err = service.UpdateInvoice(ctx, payroll, inv.ID, validDTO())
			gomega.Expect(errors.Is(err, internal.ErrForbidden)).To(gomega.BeTrue())
		})

		ginkgo.It("refuses to edit locked invoices for every role", func() {
			inv := createDraft()
			_, err := service.UpdateInvoiceStatus(ctx, admin, inv.ID, UpdateStatusDTO{Status: "SENT"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			for _, c := range []auth.Caller{owner, admin} {
				_, err := service.UpdateInvoice(ctx, c, inv.ID, validDTO())
				gomega.Expect(errors.Is(err, ErrInvoiceLocked)).To(gomega.BeTrue())
				gomega.Expect(internal.HasType(err, internal.ErrorTypeForbidden)).To(gomega.BeTrue())
			}
			_, err = service.UpdateInvoice(ctx, payroll, inv.ID, validDTO())
			gomega.Expect(internal.HasType(err, internal.ErrorTypeForbidden)).To(gomega.BeTrue())
		})

		ginkgo.It("rejects item ids from another invoice", func() {
			first := createDraft()
			second := createDraft()

			dto := validDTO()
			dto.Items[0].ID = second.Items[0].ID
			_, err := service.UpdateInvoice(ctx, owner, first.ID, dto)
			gomega.Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(gomega.BeTrue())
		})

		ginkgo.It("returns not found for unknown invoices", func() {
			_, err := service.UpdateInvoice(ctx, owner, "missing", validDTO())
			gomega.Expect(errors.Is(err, ErrInvoiceNotFound)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("UpdateInvoiceStatus", func() {
		ginkgo.It("walks DRAFT -> SENT -> APPROVED and publishes events", func() {
			inv := createDraft()

			sent, err := service.UpdateInvoiceStatus(ctx, payroll, inv.ID, UpdateStatusDTO{Status: "SENT"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(sent.Status).To(gomega.Equal(StatusSent))
			gomega.Expect(*sent.SubmittedDate).To(gomega.Equal(now))

			approved, err := service.UpdateInvoiceStatus(ctx, admin, inv.ID, UpdateStatusDTO{Status: "APPROVED"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(*approved.ApprovedDate).To(gomega.Equal(now))
			gomega.Expect(approved.TotalCost.Equal(inv.TotalCost)).To(gomega.BeTrue())

			gomega.Expect(publisher.events).To(gomega.HaveLen(2))
			first := publisher.events[0].(*events.InvoiceStatusChangedEvent)
			gomega.Expect(first.EventType()).To(gomega.Equal(events.EventTypeInvoiceSubmitted))
			gomega.Expect(first.OwnerID).To(gomega.Equal("owner"))
			gomega.Expect(publisher.events[1].EventType()).To(gomega.Equal(events.EventTypeInvoiceApproved))
		})

		ginkgo.It("rejects skipping straight to APPROVED", func() {
			inv := createDraft()
			_, err := service.UpdateInvoiceStatus(ctx, admin, inv.ID, UpdateStatusDTO{Status: "APPROVED"})
			gomega.Expect(internal.HasType(err, internal.ErrorTypeInvalidTransition)).To(gomega.BeTrue())
			gomega.Expect(err.Error()).To(gomega.Equal("invalid status transition from DRAFT to APPROVED"))
			gomega.Expect(publisher.events).To(gomega.BeEmpty())
		})

		ginkgo.It("checks the role before looking the invoice up", func() {
			_, err := service.UpdateInvoiceStatus(ctx, owner, "missing", UpdateStatusDTO{Status: "SENT"})
			gomega.Expect(errors.Is(err, internal.ErrForbidden)).To(gomega.BeTrue())
			gomega.Expect(repo.getCalls).To(gomega.BeZero())
		})

		ginkgo.It("returns not found before validating the status", func() {
			_, err := service.UpdateInvoiceStatus(ctx, admin, "missing", UpdateStatusDTO{Status: "PAID"})
			gomega.Expect(errors.Is(err, ErrInvoiceNotFound)).To(gomega.BeTrue())
		})

		ginkgo.It("rejects unknown statuses", func() {
			inv := createDraft()
			_, err := service.UpdateInvoiceStatus(ctx, admin, inv.ID, UpdateStatusDTO{Status: "PAID"})
			gomega.Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(gomega.BeTrue())
		})

		ginkgo.It("reports a lost race as an invalid transition", func() {
			inv := createDraft()
			repo.statusRaceTo = StatusSent
			_, err := service.UpdateInvoiceStatus(ctx, admin, inv.ID, UpdateStatusDTO{Status: "SENT"})
			gomega.Expect(internal.HasType(err, internal.ErrorTypeInvalidTransition)).To(gomega.BeTrue())
			gomega.Expect(publisher.events).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("GetInvoice", func() {
		ginkgo.It("is visible to the owner and reviewers only", func() {
			inv := createDraft()
			for _, c := range []auth.Caller{owner, payroll, admin} {
				got, err := service.GetInvoice(ctx, c, inv.ID)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(got.ID).To(gomega.Equal(inv.ID))
			}
			_, err := service.GetInvoice(ctx, other, inv.ID)
			gomega.Expect(errors.Is(err, internal.ErrForbidden)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("ListInvoices", func() {
		ginkgo.BeforeEach(func() {
			queries.views = []View{
				{ID: "1", Status: StatusDraft, DueDate: date(2024, time.January, 12)},
				{ID: "2", Status: StatusSent, DueDate: date(2024, time.January, 1)},
			}
		})

		ginkgo.It("forces plain users onto their own invoices", func() {
			resp, err := service.ListInvoices(ctx, owner, ListFilter{})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(queries.lastFilter.UserID).To(gomega.Equal("owner"))
			gomega.Expect(queries.lastFilter.Limit).To(gomega.Equal(DefaultLimit))
			gomega.Expect(resp.Total).To(gomega.Equal(int64(2)))
		})

		ginkgo.It("forbids users from asking for someone else's invoices", func() {
			_, err := service.ListInvoices(ctx, owner, ListFilter{UserID: "other"})
			gomega.Expect(errors.Is(err, internal.ErrForbidden)).To(gomega.BeTrue())
		})

		ginkgo.It("lets reviewers list everything or filter by user", func() {
			_, err := service.ListInvoices(ctx, payroll, ListFilter{})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(queries.lastFilter.UserID).To(gomega.BeEmpty())

			_, err = service.ListInvoices(ctx, admin, ListFilter{UserID: "other"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(queries.lastFilter.UserID).To(gomega.Equal("other"))
		})

		ginkgo.It("adds a countdown to drafts only", func() {
			resp, err := service.ListInvoices(ctx, owner, ListFilter{})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.Invoices[0].Countdown).To(gomega.Equal("due in 2 days"))
			gomega.Expect(resp.Invoices[1].Countdown).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("ExportCSV", func() {
		ginkgo.It("is admin only", func() {
			_, err := service.ExportCSV(ctx, payroll, ListFilter{})
			gomega.Expect(errors.Is(err, internal.ErrForbidden)).To(gomega.BeTrue())
		})

		ginkgo.It("exports every matching row without paging", func() {
			queries.views = []View{{ID: "1", EmployeeEmail: "a@example.com", Status: StatusSent, TotalCost: dec("1")}}
			body, err := service.ExportCSV(ctx, admin, ListFilter{Limit: 5, Offset: 10})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(queries.lastFilter.Limit).To(gomega.BeZero())
			gomega.Expect(queries.lastFilter.Offset).To(gomega.BeZero())

			lines := strings.Split(strings.TrimSpace(string(body)), "\n")
			gomega.Expect(lines).To(gomega.HaveLen(2))
			gomega.Expect(lines[1]).To(gomega.HavePrefix("a@example.com,a@example.com,"))
		})
	})

	ginkgo.Describe("Summary", func() {
		ginkgo.It("fills missing statuses with zero and reports the next draft due date", func() {
			due := date(2024, time.January, 13)
			queries.counts = map[Status]int64{StatusDraft: 2, StatusApproved: 1}
			queries.nextDue = &due

			summary, err := service.Summary(ctx, owner)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(summary.Counts).To(gomega.Equal(map[Status]int64{StatusDraft: 2, StatusSent: 0, StatusApproved: 1}))
			gomega.Expect(summary.Total).To(gomega.Equal(int64(3)))
			gomega.Expect(summary.NextCountdown).To(gomega.Equal("due in 3 days"))
		})
	})
})
