package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/cli"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/domain"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
)

var _ = Describe("voiceplan", func() {
	var (
		svc   *mockPlanService
		out   *bytes.Buffer
		stdin *strings.Reader
	)

	BeforeEach(func() {
		svc = &mockPlanService{}
		out = &bytes.Buffer{}
		stdin = strings.NewReader("")
	})

	run := func(args ...string) error {
		root := cli.NewRootCommand(svc, "test", time.Minute)
		root.SetOut(out)
		root.SetErr(out)
		root.SetIn(stdin)
		root.SetArgs(args)
		return root.ExecuteContext(context.Background())
	}

	Describe("status", func() {
		It("prints provider and tracker configuration", func() {
			svc.providerStatusFn = func(context.Context) service.ProviderStatusResult {
				return service.ProviderStatusResult{
					Providers: []model.ProviderStatus{
						{ID: model.ProviderOpenAI, IsConfigured: true},
						{ID: model.ProviderClaude, IsConfigured: false},
					},
					Tracker: service.TrackerStatus{ID: "gitlab", IsConfigured: true},
				}
			}

			Expect(run("status")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("openai   configured"))
			Expect(out.String()).To(ContainSubstring("claude   not configured"))
			Expect(out.String()).To(ContainSubstring("gitlab   configured"))
		})
	})

	Describe("plan", func() {
		var captured service.PlanParams

		BeforeEach(func() {
			svc.planFn = func(_ context.Context, params service.PlanParams) (*model.PlanResult, error) {
				captured = params
				return &model.PlanResult{
					SessionID:   42,
					PlanSummary: "Dark mode and spacing",
					CreatedIssues: []model.CreatedIssue{
						{Number: 7, Title: "Add dark mode toggle", URL: "https://github.com/acme/app/issues/7"},
					},
					FailedIssues:         []model.FailedIssue{{Index: 1, Title: "Fix spacing", Reason: "422"}},
					TotalIssuesCreated:   1,
					TotalIssuesRequested: 2,
				}, nil
			}
		})

		It("prints created versus requested", func() {
			err := run("plan", "--provider", "claude", "--repo", "acme/app", "--branch", "main",
				"Add a dark mode toggle and fix the login button spacing")

			Expect(err).NotTo(HaveOccurred())
			Expect(captured.Provider).To(Equal(model.ProviderClaude))
			Expect(captured.Repo).To(Equal(model.Repository{Owner: "acme", Name: "app"}))
			Expect(captured.BranchContext).To(Equal("main"))
			Expect(captured.DefaultLabels).To(BeNil())
			Expect(out.String()).To(ContainSubstring("#7 Add dark mode toggle"))
			Expect(out.String()).To(ContainSubstring("failed: Fix spacing (422)"))
			Expect(out.String()).To(ContainSubstring("Created 1 of 2 issue(s)."))
		})

		It("replaces default labels when --label is given", func() {
			Expect(run("plan", "-l", "feature", "-l", "voice-created", "Add a dark mode toggle")).To(Succeed())

			Expect(captured.DefaultLabels).To(Equal([]string{"feature", "voice-created"}))
		})

		It("reads the transcript from stdin", func() {
			stdin = strings.NewReader("  Add a dark mode toggle\n")

			Expect(run("plan")).To(Succeed())
			Expect(captured.Transcript).To(Equal("Add a dark mode toggle"))
		})

		It("rejects a short transcript without calling the service", func() {
			err := run("plan", "hey")

			Expect(errors.Is(err, cli.ErrTranscriptTooShort)).To(BeTrue())
			Expect(svc.planCalls).To(Equal(0))
		})

		It("rejects a malformed repository", func() {
			err := run("plan", "--repo", "acme", "Add a dark mode toggle")

			Expect(err).To(MatchError(ContainSubstring("owner/name")))
			Expect(svc.planCalls).To(Equal(0))
		})

		It("names the failing stage", func() {
			svc.planFn = func(context.Context, service.PlanParams) (*model.PlanResult, error) {
				return nil, domain.ErrRepoInaccessible
			}

			err := run("plan", "Add a dark mode toggle")

			Expect(err).To(MatchError(HavePrefix("access failed")))
		})

		It("previews the plan on --dry-run", func() {
			svc.dryRunFn = func(_ context.Context, params service.DryRunParams) (*model.Plan, error) {
				return &model.Plan{
					Summary:   "Dark mode",
					Rationale: "One task",
					Issues: []model.IssueDraft{
						{Title: "Add dark mode toggle", Body: "Line one\nLine two", Labels: []string{"feature"}},
					},
				}, nil
			}

			Expect(run("plan", "--dry-run", "Add a dark mode toggle")).To(Succeed())

			Expect(svc.planCalls).To(Equal(0))
			Expect(out.String()).To(ContainSubstring("1. Add dark mode toggle"))
			Expect(out.String()).To(ContainSubstring("labels: feature"))
			Expect(out.String()).To(ContainSubstring("Dry run: 1 issue(s) planned, none created."))
		})
	})

	Describe("recent", func() {
		It("lists issues", func() {
			var captured service.RecentIssuesParams
			svc.recentFn = func(_ context.Context, params service.RecentIssuesParams) ([]model.RecentIssue, error) {
				captured = params
				return []model.RecentIssue{
					{Number: 12, Title: "Add dark mode toggle", State: "open", CreatedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
				}, nil
			}

			Expect(run("recent", "--repo", "acme/app", "--since", "24h", "-n", "5")).To(Succeed())

			Expect(captured.Limit).To(Equal(5))
			Expect(captured.Since).NotTo(BeNil())
			Expect(*captured.Since).To(BeTemporally("~", time.Now().Add(-24*time.Hour), time.Minute))
			Expect(out.String()).To(ContainSubstring("2026-05-01  Add dark mode toggle"))
		})

		It("says so when there is nothing", func() {
			Expect(run("recent")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("No issues found."))
		})
	})
})
