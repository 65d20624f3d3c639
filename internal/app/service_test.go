package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	service "github.com/okian/safeeats/internal/app"
	"github.com/okian/safeeats/internal/adapters/upstream"
	"github.com/okian/safeeats/internal/domain/model"
	"github.com/okian/safeeats/internal/domain/ranking"
	"github.com/okian/safeeats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type fakeUpstream struct {
	mu      sync.Mutex
	queries []upstream.SearchQuery
	details []string
	results []model.Restaurant
	detail  *model.Detail
	err     error
}

func (f *fakeUpstream) Search(_ context.Context, q upstream.SearchQuery) ([]model.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeUpstream) Restaurant(_ context.Context, id, display string) (*model.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details = append(f.details, id+"/"+display)
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeUpstream) searchCalls() []upstream.SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]upstream.SearchQuery(nil), f.queries...)
}

func inspected(id, name, borough, cuisine, grade string, stars float64) model.Restaurant {
	return model.Restaurant{
		ID:                 model.ID(id),
		Name:               name,
		Borough:            borough,
		CuisineDescription: cuisine,
		StarRating:         stars,
		LatestInspection:   &model.InspectionSummary{Grade: grade},
	}
}

func sampleResults() []model.Restaurant {
	return []model.Restaurant{
		inspected("1", "Lucali", "Brooklyn", "Pizza", "A", 4),
		inspected("2", "Katz's", "Manhattan", "Deli", "B", 3),
		inspected("3", "Di Fara", "Brooklyn", "Pizza", "C", 2),
		inspected("4", "Arthur Ave", "Bronx", "Italian", "A", 1),
	}
}

func names(rs []model.Restaurant) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func startService(t *testing.T, up *fakeUpstream, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(append([]service.Option{service.WithUpstream(up)}, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service without an upstream", t, func() {
		svc := service.New()

		Convey("Then starting should fail", func() {
			So(errors.Is(svc.Start(context.Background()), service.ErrNoUpstream), ShouldBeTrue)
		})

		Convey("And searching should report it is not started", func() {
			_, err := svc.Search(context.Background(), service.SearchRequest{Query: "x"})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a started service", t, func() {
		svc := startService(t, &fakeUpstream{})

		Convey("Then it should be marked as started", func() {
			So(svc.GetStats()["started"], ShouldEqual, true)
			So(svc.GetStats()["cacheEntries"], ShouldEqual, 0)
		})

		Convey("When stopping the service twice", func() {
			svc.Stop()
			svc.Stop()
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}

func TestService_Search(t *testing.T) {
	Convey("Given a service in upstream filter mode", t, func() {
		up := &fakeUpstream{results: sampleResults()}
		svc := startService(t, up)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When searching with a sort mode", func() {
			res, err := svc.Search(ctx, service.SearchRequest{Query: "a", Sort: "stars_desc"})

			So(err, ShouldBeNil)
			So(names(res.Results), ShouldResemble, []string{"Lucali", "Katz's", "Di Fara", "Arthur Ave"})
			So(res.Sort, ShouldEqual, ranking.StarsDesc)
			So(res.Display, ShouldEqual, service.DisplayLetter)
			So(res.Total, ShouldEqual, 4)
			So(res.Matched, ShouldEqual, 4)
		})

		Convey("When the sort mode is omitted", func() {
			res, err := svc.Search(ctx, service.SearchRequest{Query: "a"})
			So(err, ShouldBeNil)
			So(res.Sort, ShouldEqual, ranking.NameAsc)
			So(res.Results[0].Name, ShouldEqual, "Arthur Ave")
		})

		Convey("When filtering by borough only", func() {
			_, err := svc.Search(ctx, service.SearchRequest{Borough: "Brooklyn"})
			So(err, ShouldBeNil)

			Convey("Then the borough should be sent upstream with the wildcard", func() {
				calls := up.searchCalls()
				So(calls, ShouldHaveLength, 1)
				So(upstream.BuildSearchQuery(calls[0]), ShouldEqual, "borough=Brooklyn&display=letter&q=%2A")
			})
		})

		Convey("When filtering by grade", func() {
			res, err := svc.Search(ctx, service.SearchRequest{Query: "a", Grade: "a"})
			So(err, ShouldBeNil)
			So(names(res.Results), ShouldResemble, []string{"Arthur Ave", "Lucali"})
			So(res.Filters.Grade, ShouldEqual, "A")
			So(res.Matched, ShouldEqual, 2)
			So(res.Total, ShouldEqual, 4)
		})

		Convey("When the same search is repeated", func() {
			first, err := svc.Search(ctx, service.SearchRequest{Query: "a"})
			So(err, ShouldBeNil)
			second, err := svc.Search(ctx, service.SearchRequest{Query: "a", Sort: "name_desc"})
			So(err, ShouldBeNil)

			Convey("Then the cache should serve the second one", func() {
				So(first.Cached, ShouldBeFalse)
				So(second.Cached, ShouldBeTrue)
				So(up.searchCalls(), ShouldHaveLength, 1)
				So(second.Results[0].Name, ShouldEqual, "Lucali")
			})
		})

		Convey("When a limit is requested", func() {
			res, err := svc.Search(ctx, service.SearchRequest{Query: "a", Limit: 2})
			So(err, ShouldBeNil)
			So(res.Results, ShouldHaveLength, 2)
			So(res.Matched, ShouldEqual, 4)
		})

		Convey("When the request is invalid", func() {
			_, err := svc.Search(ctx, service.SearchRequest{})
			So(errors.Is(err, upstream.ErrEmptyQuery), ShouldBeTrue)

			_, err = svc.Search(ctx, service.SearchRequest{Query: "a", Sort: "best"})
			So(errors.Is(err, ranking.ErrUnknownSortMode), ShouldBeTrue)

			_, err = svc.Search(ctx, service.SearchRequest{Query: "a", Grade: "Z"})
			So(errors.Is(err, ranking.ErrUnknownGrade), ShouldBeTrue)

			_, err = svc.Search(ctx, service.SearchRequest{Query: "a", Display: "emoji"})
			So(errors.Is(err, service.ErrInvalidDisplay), ShouldBeTrue)

			_, err = svc.Search(ctx, service.SearchRequest{Query: "a", Limit: -1})
			So(errors.Is(err, service.ErrInvalidLimit), ShouldBeTrue)

			So(up.searchCalls(), ShouldBeEmpty)
		})

		Convey("When the upstream fails", func() {
			up.err = &upstream.APIError{Status: http.StatusBadGateway, Message: "Bad Gateway"}
			_, err := svc.Search(ctx, service.SearchRequest{Query: "a"})
			So(upstream.StatusOf(err), ShouldEqual, http.StatusBadGateway)
		})
	})

	Convey("Given a service in client filter mode", t, func() {
		up := &fakeUpstream{results: sampleResults()}
		svc := startService(t, up, service.WithFilterMode("client"), service.WithMaxResults(3))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When the filters change between searches by name", func() {
			brooklyn, err := svc.Search(ctx, service.SearchRequest{Query: "a", Borough: "Brooklyn"})
			So(err, ShouldBeNil)
			pizza, err := svc.Search(ctx, service.SearchRequest{Query: "a", Cuisine: "pizza", Sort: "stars_asc"})
			So(err, ShouldBeNil)

			Convey("Then only the name should be sent and filtering should stay local", func() {
				calls := up.searchCalls()
				So(calls, ShouldHaveLength, 1)
				So(upstream.BuildSearchQuery(calls[0]), ShouldEqual, "display=letter&q=a")
				So(names(brooklyn.Results), ShouldResemble, []string{"Di Fara", "Lucali"})
				So(names(pizza.Results), ShouldResemble, []string{"Di Fara", "Lucali"})
				So(pizza.Cached, ShouldBeTrue)
			})

			Convey("And facets should cover the whole fetched set", func() {
				So(brooklyn.Facets.Boroughs, ShouldResemble, []string{"Bronx", "Brooklyn", "Manhattan"})
			})
		})

		Convey("When results exceed the configured maximum", func() {
			res, err := svc.Search(ctx, service.SearchRequest{Query: "a", Limit: 10})
			So(err, ShouldBeNil)
			So(res.Results, ShouldHaveLength, 3)
			So(res.Matched, ShouldEqual, 4)
		})
	})
}

func TestService_Restaurant(t *testing.T) {
	Convey("Given a service with a detail upstream", t, func() {
		up := &fakeUpstream{detail: &model.Detail{
			Restaurant:  model.Restaurant{ID: "9", Name: "Deli"},
			Inspections: []model.InspectionSummary{{Grade: "A"}, {Grade: "B"}},
		}}
		svc := startService(t, up, service.WithDefaultDisplay("stars"))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When fetching a restaurant twice", func() {
			d, err := svc.Restaurant(ctx, "9", "")
			So(err, ShouldBeNil)
			So(d.Name, ShouldEqual, "Deli")
			So(d.Inspections, ShouldHaveLength, 2)

			_, err = svc.Restaurant(ctx, "9", "")
			So(err, ShouldBeNil)

			Convey("Then the default display should be used and the second read cached", func() {
				So(up.details, ShouldResemble, []string{"9/stars"})
				So(svc.GetStats()["cacheHits"], ShouldEqual, int64(1))
			})
		})

		Convey("When the restaurant is unknown", func() {
			up.err = &upstream.APIError{Status: http.StatusNotFound, Message: "Not found."}
			_, err := svc.Restaurant(ctx, "404", "letter")
			So(upstream.StatusOf(err), ShouldEqual, http.StatusNotFound)
		})

		Convey("When the display mode is invalid", func() {
			_, err := svc.Restaurant(ctx, "9", "emoji")
			So(errors.Is(err, service.ErrInvalidDisplay), ShouldBeTrue)
		})
	})
}

func TestParseFilterMode(t *testing.T) {
	Convey("Given filter mode names", t, func() {
		m, err := service.ParseFilterMode(" Client ")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, service.FilterModeClient)

		_, err = service.ParseFilterMode("server")
		So(errors.Is(err, service.ErrInvalidFilterMode), ShouldBeTrue)
	})
}

type gatedUpstream struct {
	fakeUpstream
	entered chan struct{}
	release chan struct{}
}

func (g *gatedUpstream) Search(ctx context.Context, q upstream.SearchQuery) ([]model.Restaurant, error) {
	g.entered <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.fakeUpstream.Search(ctx, q)
}

func TestService_SearchCoalescing(t *testing.T) {
	Convey("Given concurrent identical searches", t, func() {
		up := &gatedUpstream{
			fakeUpstream: fakeUpstream{results: sampleResults()},
			entered:      make(chan struct{}, 8),
			release:      make(chan struct{}),
		}
		svc := service.New(service.WithUpstream(up))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		var wg sync.WaitGroup
		errs := make(chan error, 4)
		search := func() {
			defer wg.Done()
			_, err := svc.Search(context.Background(), service.SearchRequest{Query: "pizza"})
			errs <- err
		}

		wg.Add(1)
		go search()
		<-up.entered

		for i := 0; i < 3; i++ {
			wg.Add(1)
			go search()
		}
		time.Sleep(50 * time.Millisecond)
		close(up.release)
		wg.Wait()
		close(errs)

		Convey("Then they should share one upstream call", func() {
			for err := range errs {
				So(err, ShouldBeNil)
			}
			So(up.searchCalls(), ShouldHaveLength, 1)
		})
	})
}

func TestService_SearchCancellation(t *testing.T) {
	Convey("Given a search in flight shared by two callers", t, func() {
		up := &gatedUpstream{
			fakeUpstream: fakeUpstream{results: sampleResults()},
			entered:      make(chan struct{}, 8),
			release:      make(chan struct{}),
		}
		svc := service.New(service.WithUpstream(up))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		firstCtx, cancelFirst := context.WithCancel(context.Background())
		defer cancelFirst()
		firstErr := make(chan error, 1)
		go func() {
			_, err := svc.Search(firstCtx, service.SearchRequest{Query: "pizza"})
			firstErr <- err
		}()
		<-up.entered

		type outcome struct {
			res *service.SearchResult
			err error
		}
		second := make(chan outcome, 1)
		go func() {
			res, err := svc.Search(context.Background(), service.SearchRequest{Query: "pizza"})
			second <- outcome{res: res, err: err}
		}()
		time.Sleep(50 * time.Millisecond)

		Convey("When the caller that started it goes away", func() {
			cancelFirst()
			So(errors.Is(<-firstErr, context.Canceled), ShouldBeTrue)
			close(up.release)
			got := <-second

			Convey("Then the other caller should still get its results", func() {
				So(got.err, ShouldBeNil)
				So(got.res.Results, ShouldNotBeEmpty)
				So(up.searchCalls(), ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given an upstream that never answers", t, func() {
		up := &gatedUpstream{
			fakeUpstream: fakeUpstream{results: sampleResults()},
			entered:      make(chan struct{}, 1),
			release:      make(chan struct{}),
		}
		svc := service.New(service.WithUpstream(up), service.WithFetchTimeout(30*time.Millisecond))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When a search waits on it", func() {
			_, err := svc.Search(context.Background(), service.SearchRequest{Query: "pizza"})

			Convey("Then the shared fetch should hit its own deadline", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}
