package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/cadence/common/llm"
)

type outline struct {
	Headline string   `json:"headline"`
	Sections []string `json:"sections"`
}

var _ = Describe("New", func() {
	It("requires an API key", func() {
		_, err := llm.New(llm.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("defaults the model", func() {
		c, err := llm.New(llm.Config{APIKey: "sk-test"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Model()).To(Equal("gpt-4o-mini"))
	})
})

var _ = Describe("GenerateSchema", func() {
	It("produces a closed object schema with every field", func() {
		raw, err := json.Marshal(llm.GenerateSchema[outline]())
		Expect(err).NotTo(HaveOccurred())

		var schema map[string]any
		Expect(json.Unmarshal(raw, &schema)).To(Succeed())
		Expect(schema["type"]).To(Equal("object"))
		Expect(schema["additionalProperties"]).To(BeFalse())
		Expect(schema["properties"]).To(HaveKey("headline"))
		Expect(schema["properties"]).To(HaveKey("sections"))
	})
})

var _ = Describe("IsRetryable", func() {
	ctx := context.Background()

	It("never retries a nil error", func() {
		Expect(llm.IsRetryable(ctx, nil)).To(BeFalse())
	})

	It("does not retry cancellation", func() {
		Expect(llm.IsRetryable(ctx, fmt.Errorf("chat: %w", context.Canceled))).To(BeFalse())
		Expect(llm.IsRetryable(ctx, context.DeadlineExceeded)).To(BeFalse())
	})

	It("retries transport failures", func() {
		Expect(llm.IsRetryable(ctx, errors.New("connection reset by peer"))).To(BeTrue())
	})
})

var _ = Describe("New with a provider", func() {
	It("builds an anthropic client with its own default model", func() {
		c, err := llm.New(llm.Config{Provider: llm.ProviderAnthropic, APIKey: "sk-ant-test"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Model()).To(Equal("claude-sonnet-4-5-20250514"))
	})

	It("keeps an explicit model", func() {
		c, err := llm.New(llm.Config{Provider: llm.ProviderAnthropic, APIKey: "k", Model: "claude-haiku"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Model()).To(Equal("claude-haiku"))
	})

	It("rejects an unknown provider", func() {
		_, err := llm.New(llm.Config{Provider: "mistral", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unknown llm provider")))
	})
})
