package service_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/punchlab/punchd/internal/adapters/repository"
	service "github.com/punchlab/punchd/internal/app"
	"github.com/punchlab/punchd/internal/domain/judge"
	"github.com/punchlab/punchd/internal/domain/model"
	"github.com/punchlab/punchd/internal/domain/tier"
	"github.com/punchlab/punchd/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// fixedJudge returns a canned verdict or error.
type fixedJudge struct {
	verdict judge.Verdict
	err     error
}

func (j *fixedJudge) Judge(context.Context, string) (judge.Verdict, error) {
	return j.verdict, j.err
}

// failingStore fails every append with a transient network error.
type failingStore struct{}

func (failingStore) Append(context.Context, model.Draft) (model.Entry, error) {
	return model.Entry{}, repository.ErrNetwork
}
func (failingStore) List(context.Context, int) ([]model.Entry, error) { return nil, nil }
func (failingStore) CountAbove(context.Context, int) (int, error)     { return 0, nil }
func (failingStore) Count(context.Context) int                        { return 0 }

func startedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("failed to start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_Submit(t *testing.T) {
	Convey("Given a started service over an empty store", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		Convey("When submitting a perfect score with a garbage rank", func() {
			result, err := svc.Submit(ctx, "Tester", 9999, "???")

			Convey("Then the rank is derived as SSS", func() {
				So(err, ShouldBeNil)
				So(result.Entry.Rank, ShouldEqual, tier.SSS)
				So(result.Entry.Score, ShouldEqual, 9999)
			})

			Convey("And it holds first position on the empty board", func() {
				So(result.Position, ShouldEqual, 1)
			})

			Convey("And the updated top view contains it", func() {
				So(result.Top, ShouldHaveLength, 1)
				So(result.Top[0].ID, ShouldEqual, result.Entry.ID)
			})
		})

		Convey("When submitting two equal scores in order A then B", func() {
			a, errA := svc.Submit(ctx, "A", 5000, "B")
			b, errB := svc.Submit(ctx, "B", 5000, "B")

			Convey("Then the tie breaks by insertion order", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(b.Top, ShouldHaveLength, 2)
				So(b.Top[0].ID, ShouldEqual, a.Entry.ID)
				So(b.Top[1].ID, ShouldEqual, b.Entry.ID)
			})

			Convey("And both share the same positional rank", func() {
				So(svc.Position(ctx, 5000), ShouldEqual, 1)
			})
		})

		Convey("When submitting an empty name", func() {
			_, err := svc.Submit(ctx, "   ", 1000, "C")

			Convey("Then the submission aborts before any write", func() {
				So(errors.Is(err, service.ErrInvalidName), ShouldBeTrue)
				So(svc.Leaderboard(ctx, 10), ShouldBeEmpty)
			})
		})

		Convey("When submitting an overlong name", func() {
			result, err := svc.Submit(ctx, strings.Repeat("x", 40), 1000, "C")

			Convey("Then the name is truncated to the limit", func() {
				So(err, ShouldBeNil)
				So(result.Entry.Name, ShouldHaveLength, 20)
			})
		})

		Convey("When submitting a non-representable score", func() {
			nan := math.NaN()
			_, err := svc.Submit(ctx, "Tester", nan, "A")

			Convey("Then classification fails and nothing is stored", func() {
				So(errors.Is(err, tier.ErrInvalidScore), ShouldBeTrue)
				So(svc.Leaderboard(ctx, 10), ShouldBeEmpty)
			})
		})
	})
}

func TestService_SubmitRetention(t *testing.T) {
	Convey("Given 101 sequential successful submissions", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		for i := 0; i <= repository.DefaultCapacity; i++ {
			_, err := svc.Submit(ctx, "P", float64(i), "")
			So(err, ShouldBeNil)
		}

		Convey("Then only the top 100 scores survive", func() {
			entries := svc.Leaderboard(ctx, repository.DefaultCapacity+1)
			So(entries, ShouldHaveLength, repository.DefaultCapacity)
			So(entries[0].Score, ShouldEqual, repository.DefaultCapacity)
			So(entries[len(entries)-1].Score, ShouldEqual, 1)
		})
	})
}

func TestService_SubmitAppendFailure(t *testing.T) {
	Convey("Given a store whose appends fail with a network error", t, func() {
		svc := startedService(t, service.WithStore(failingStore{}))

		Convey("When submitting", func() {
			_, err := svc.Submit(context.Background(), "Tester", 5000, "B")

			Convey("Then the failure surfaces untranslated", func() {
				So(errors.Is(err, repository.ErrNetwork), ShouldBeTrue)
			})
		})
	})
}

func TestService_Punch(t *testing.T) {
	Convey("Given a service with a canned judge verdict", t, func() {
		svc := startedService(t, service.WithJudge(&fixedJudge{
			verdict: judge.Verdict{Score: 7200, Rank: "A", Comment: "warning", Effect: "explosion"},
		}))
		ctx := context.Background()

		Convey("When punching", func() {
			result, err := svc.Punch(ctx, "Boxer", "a building-shattering straight")

			Convey("Then the verdict flows through classification into the board", func() {
				So(err, ShouldBeNil)
				So(result.Entry.Score, ShouldEqual, 7200)
				So(result.Entry.Rank, ShouldEqual, tier.A)
				So(result.Comment, ShouldEqual, "warning")
				So(result.Effect, ShouldEqual, "explosion")
				So(result.Position, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a judge that is unreachable", t, func() {
		svc := startedService(t, service.WithJudge(&fixedJudge{err: judge.ErrUnavailable}))
		ctx := context.Background()

		Convey("When punching", func() {
			result, err := svc.Punch(ctx, "Boxer", "any punch")

			Convey("Then a zero-score fallback verdict is recorded instead", func() {
				So(err, ShouldBeNil)
				So(result.Entry.Score, ShouldEqual, 0)
				So(result.Entry.Rank, ShouldEqual, tier.C)
				So(result.Effect, ShouldEqual, "none")
				So(result.Comment, ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given a judge verdict with an inconsistent rank label", t, func() {
		svc := startedService(t, service.WithJudge(&fixedJudge{
			verdict: judge.Verdict{Score: 9999, Rank: "amazing!!", Comment: "!", Effect: "cosmic_horror"},
		}))

		Convey("When punching", func() {
			result, err := svc.Punch(context.Background(), "Boxer", "the last punch")

			Convey("Then the rank is re-derived from the score", func() {
				So(err, ShouldBeNil)
				So(result.Entry.Rank, ShouldEqual, tier.SSS)
			})
		})
	})
}

func TestService_Stats(t *testing.T) {
	Convey("Given a started service with one entry", t, func() {
		svc := startedService(t)
		_, err := svc.Submit(context.Background(), "Tester", 100, "")
		So(err, ShouldBeNil)

		Convey("Then stats report the entry count", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["totalEntries"], ShouldEqual, 1)
		})
	})
}
