package internal_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

var _ = Describe("Context helpers", func() {
	It("applies the requested timeout", func() {
		ctx, cancel := internal.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		deadline, ok := ctx.Deadline()
		Expect(ok).To(BeTrue())
		Expect(deadline).To(BeTemporally("~", time.Now().Add(time.Minute), time.Second))
	})

	It("falls back to five seconds for a non-positive duration", func() {
		ctx, cancel := internal.WithTimeout(context.Background(), 0)
		defer cancel()

		deadline, ok := ctx.Deadline()
		Expect(ok).To(BeTrue())
		Expect(deadline).To(BeTemporally("~", time.Now().Add(5*time.Second), time.Second))
	})

	It("carries the trace id", func() {
		Expect(internal.TraceIDFromContext(context.Background())).To(BeEmpty())

		ctx := internal.ContextWithTraceID(context.Background(), "trace-1")
		Expect(internal.TraceIDFromContext(ctx)).To(Equal("trace-1"))
	})
})
