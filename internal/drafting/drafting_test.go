package drafting_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/cadence/common/llm"
	"basegraph.app/cadence/internal/drafting"
	"basegraph.app/cadence/internal/model"
)

type mockLLM struct {
	chatFn   func(ctx context.Context, req llm.Request, result any) (*llm.Response, error)
	requests []llm.Request
}

func (m *mockLLM) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	return m.chatFn(ctx, req, result)
}

func (m *mockLLM) Model() string { return "test-model" }

type mockItems struct {
	getItemFn func(ctx context.Context, planID, itemID int64) (*model.PlanItem, error)
}

func (m *mockItems) GetItem(ctx context.Context, planID, itemID int64) (*model.PlanItem, error) {
	return m.getItemFn(ctx, planID, itemID)
}

func answer(body string) func(context.Context, llm.Request, any) (*llm.Response, error) {
	return func(_ context.Context, _ llm.Request, result any) (*llm.Response, error) {
		if err := json.Unmarshal([]byte(body), result); err != nil {
			return nil, err
		}
		return &llm.Response{PromptTokens: 100, CompletionTokens: 50}, nil
	}
}

var _ = Describe("Service", func() {
	var (
		ctx    context.Context
		client *mockLLM
		items  *mockItems
		slept  []time.Duration
		svc    *drafting.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		slept = nil
		client = &mockLLM{chatFn: answer(`{"headline":"SEO audits that work","summary":"How to run one.","outline":["Why","How"],"call_to_action":"Book a review."}`)}
		items = &mockItems{getItemFn: func(_ context.Context, planID, itemID int64) (*model.PlanItem, error) {
			return &model.PlanItem{ID: itemID, PlanID: planID, PlanItemDraft: model.PlanItemDraft{
				Channel:           model.ChannelBlog,
				Title:             "SEO audit: a practical guide",
				PrimaryKeyword:    "seo audit",
				SecondaryKeywords: []string{"crawl budget"},
				ClusterLabel:      "Technical SEO",
				Note:              "(test)",
				InternalLinks:     []model.LinkSuggestion{{URL: "https://acme.test/audit", Title: "Audit"}},
				ExternalLinks:     []model.LinkSuggestion{{URL: "https://example.org/seo"}},
			}}, nil
		}}
		svc = drafting.NewService(client, items).WithSleep(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		})
	})

	It("returns the structured draft", func() {
		draft, err := svc.Draft(ctx, 1, 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(draft.Headline).To(Equal("SEO audits that work"))
		Expect(draft.Outline).To(Equal([]string{"Why", "How"}))
		Expect(draft.CallToAction).To(Equal("Book a review."))
	})

	It("describes the item in the prompt", func() {
		_, err := svc.Draft(ctx, 1, 2)
		Expect(err).NotTo(HaveOccurred())

		Expect(client.requests).To(HaveLen(1))
		req := client.requests[0]
		Expect(req.SchemaName).To(Equal("content_draft"))
		Expect(req.Schema).NotTo(BeNil())
		Expect(req.UserPrompt).To(ContainSubstring("## Channel\nblog"))
		Expect(req.UserPrompt).To(ContainSubstring("primary keyword: seo audit"))
		Expect(req.UserPrompt).To(ContainSubstring("- crawl budget"))
		Expect(req.UserPrompt).To(ContainSubstring("- Audit (https://acme.test/audit)"))
		Expect(req.UserPrompt).To(ContainSubstring("- https://example.org/seo"))
		Expect(req.UserPrompt).To(ContainSubstring("## Note\n(test)"))
	})

	It("never returns a nil outline", func() {
		client.chatFn = answer(`{"headline":"h","summary":"s","call_to_action":"c"}`)
		draft, err := svc.Draft(ctx, 1, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(draft.Outline).NotTo(BeNil())
	})

	It("retries transient failures with backoff", func() {
		calls := 0
		ok := answer(`{"headline":"h","summary":"s","outline":[],"call_to_action":"c"}`)
		client.chatFn = func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("connection reset")
			}
			return ok(ctx, req, result)
		}

		draft, err := svc.Draft(ctx, 1, 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(draft.Headline).To(Equal("h"))
		Expect(slept).To(Equal([]time.Duration{time.Second, 2 * time.Second}))
	})

	It("discards fields decoded by a failed attempt", func() {
		calls := 0
		ok := answer(`{"headline":"h","summary":"s","outline":["One"]}`)
		client.chatFn = func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
			calls++
			if calls == 1 {
				_ = json.Unmarshal([]byte(`{"headline":"stale","call_to_action":"Leftover."}`), result)
				return nil, errors.New("unexpected EOF")
			}
			return ok(ctx, req, result)
		}

		draft, err := svc.Draft(ctx, 1, 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(draft.Headline).To(Equal("h"))
		Expect(draft.CallToAction).To(BeEmpty())
	})

	It("stops waiting when the context is canceled during backoff", func() {
		cctx, cancel := context.WithCancel(ctx)
		client.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
			cancel()
			return nil, errors.New("connection reset")
		}
		realSleep := drafting.NewService(client, items)

		start := time.Now()
		_, err := realSleep.Draft(cctx, 1, 2)

		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(client.requests).To(HaveLen(1))
		Expect(time.Since(start)).To(BeNumerically("<", 500*time.Millisecond))
	})

	It("gives up after three attempts", func() {
		client.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
			return nil, errors.New("connection reset")
		}
		_, err := svc.Draft(ctx, 1, 2)
		Expect(err).To(MatchError(ContainSubstring("after 3 attempts")))
		Expect(client.requests).To(HaveLen(3))
	})

	It("does not retry a canceled context", func() {
		client.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
			return nil, context.Canceled
		}
		_, err := svc.Draft(ctx, 1, 2)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(client.requests).To(HaveLen(1))
	})

	It("passes item lookup errors through", func() {
		missing := errors.New("item not found")
		items.getItemFn = func(context.Context, int64, int64) (*model.PlanItem, error) { return nil, missing }
		_, err := svc.Draft(ctx, 1, 2)
		Expect(err).To(MatchError(missing))
		Expect(client.requests).To(BeEmpty())
	})

	It("is disabled without a client", func() {
		disabled := drafting.NewService(nil, items)
		Expect(disabled.Enabled()).To(BeFalse())
		_, err := disabled.Draft(ctx, 1, 2)
		Expect(err).To(MatchError(drafting.ErrDraftingDisabled))
	})
})
