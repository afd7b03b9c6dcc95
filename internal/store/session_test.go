package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/store"
)

var _ = Describe("SessionStore", func() {
	var (
		ctx      context.Context
		querier  *mockQuerier
		database *mockDatabase
		sessions store.SessionStore
		outcome  model.PlanOutcome
	)

	BeforeEach(func() {
		ctx = context.Background()
		querier = &mockQuerier{}
		database = &mockDatabase{querier: querier}
		sessions = store.NewSessionStore(database)
		outcome = model.PlanOutcome{
			SessionID:  42,
			Transcript: "add dark mode and fix the login button",
			Provider:   model.ProviderClaude,
			Repo:       model.Repository{Owner: "acme", Name: "app"},
			Plan: model.Plan{
				Summary:   "Dark mode and login polish",
				Rationale: "Two independent UI changes",
				Issues: []model.IssueDraft{
					{Title: "Add dark mode toggle", Body: "Toggle in settings, persisted per user.", Labels: []string{"feature"}},
					{Title: "Fix login button spacing", Body: "Button overlaps the footer on small screens."},
				},
			},
			CreatedIssues: []model.CreatedIssue{
				{Number: 101, URL: "https://github.com/acme/app/issues/101", Title: "Add dark mode toggle"},
			},
			RecordedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		}
	})

	Describe("RecordOutcome", func() {
		It("writes the session and its issue refs in one transaction", func() {
			Expect(sessions.RecordOutcome(ctx, outcome)).To(Succeed())

			Expect(database.txCalls).To(Equal(1))
			Expect(database.committed).To(BeTrue())
			Expect(querier.execs).To(HaveLen(2))

			session := querier.execs[0]
			Expect(session.sql).To(ContainSubstring("INSERT INTO voice_sessions"))
			Expect(session.args).To(HaveLen(9))
			Expect(session.args[0]).To(Equal(int64(42)))
			Expect(session.args[1]).To(Equal(outcome.Transcript))
			Expect(session.args[2]).To(Equal("claude"))
			Expect(session.args[3]).To(Equal("acme/app"))
			Expect(session.args[4]).To(Equal("Dark mode and login polish"))
			Expect(session.args[7]).To(Equal(2))
			Expect(session.args[8]).To(Equal(outcome.RecordedAt))

			var stored model.Plan
			Expect(json.Unmarshal(session.args[6].([]byte), &stored)).To(Succeed())
			Expect(stored.Issues).To(HaveLen(2))
			Expect(stored.Issues[0].Labels).To(Equal([]string{"feature"}))

			ref := querier.execs[1]
			Expect(ref.sql).To(ContainSubstring("INSERT INTO voice_issue_refs"))
			Expect(ref.args).To(Equal([]any{int64(42), 0, int64(101), "https://github.com/acme/app/issues/101", "Add dark mode toggle"}))
		})

		It("writes only the session row when nothing was created", func() {
			outcome.CreatedIssues = nil

			Expect(sessions.RecordOutcome(ctx, outcome)).To(Succeed())

			Expect(querier.execs).To(HaveLen(1))
		})

		It("rolls back when the session insert fails", func() {
			querier.execErr = errors.New("duplicate key")
			querier.execErrAt = 0

			err := sessions.RecordOutcome(ctx, outcome)

			Expect(err).To(MatchError(ContainSubstring("inserting voice session")))
			Expect(querier.execs).To(HaveLen(1))
			Expect(database.committed).To(BeFalse())
		})

		It("fails the transaction when an issue ref insert fails", func() {
			querier.execErr = errors.New("connection reset")
			querier.execErrAt = 1

			err := sessions.RecordOutcome(ctx, outcome)

			Expect(err).To(MatchError(ContainSubstring("inserting issue ref")))
			Expect(database.committed).To(BeFalse())
		})
	})

	Describe("ListRecent", func() {
		planJSON := func(p model.Plan) []byte {
			raw, err := json.Marshal(p)
			Expect(err).NotTo(HaveOccurred())
			return raw
		}

		It("returns sessions newest first with their created issues attached", func() {
			newer := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
			older := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
			querier.results = [][][]any{
				{
					{int64(2), "second transcript", "openai", "acme/app", "s2", "r2", planJSON(outcome.Plan), 2, newer},
					{int64(1), "first transcript", "gemini", "acme/web", "s1", "r1", planJSON(model.Plan{}), 1, older},
				},
				{
					{int64(2), int64(7), "https://github.com/acme/app/issues/7", "Add dark mode toggle"},
					{int64(2), int64(8), "https://github.com/acme/app/issues/8", "Fix login button spacing"},
				},
			}

			list, err := sessions.ListRecent(ctx, 20, 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(querier.queries).To(HaveLen(2))
			Expect(querier.queries[0].sql).To(ContainSubstring("ORDER BY created_at DESC"))
			Expect(querier.queries[0].args).To(Equal([]any{20, 5}))
			Expect(querier.queries[1].args).To(Equal([]any{[]int64{2, 1}}))

			Expect(list).To(HaveLen(2))
			Expect(list[0].ID).To(Equal(int64(2)))
			Expect(list[0].Provider).To(Equal(model.ProviderOpenAI))
			Expect(list[0].Issues).To(HaveLen(2))
			Expect(list[0].CreatedAt).To(Equal(newer))
			Expect(list[0].CreatedIssues).To(HaveLen(2))
			Expect(list[0].CreatedIssues[1].Number).To(Equal(int64(8)))
			Expect(list[1].Repo).To(Equal("acme/web"))
			Expect(list[1].CreatedIssues).NotTo(BeNil())
			Expect(list[1].CreatedIssues).To(BeEmpty())
		})

		It("returns an empty list without querying issue refs", func() {
			list, err := sessions.ListRecent(ctx, 20, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(list).NotTo(BeNil())
			Expect(list).To(BeEmpty())
			Expect(querier.queries).To(HaveLen(1))
		})

		It("wraps query failures", func() {
			querier.queryErr = errors.New("relation does not exist")

			_, err := sessions.ListRecent(ctx, 20, 0)

			Expect(err).To(MatchError(ContainSubstring("listing voice sessions")))
		})
	})

	Describe("as an outcome recorder", func() {
		It("still records when a sibling recorder fails", func() {
			sibling := &failingRecorder{err: errors.New("stream unavailable")}
			recorder := service.MultiRecorder{sibling, sessions}

			err := recorder.RecordOutcome(ctx, outcome)

			Expect(err).To(MatchError(ContainSubstring("stream unavailable")))
			Expect(database.committed).To(BeTrue())
			Expect(querier.execs).To(HaveLen(2))
		})
	})
})
