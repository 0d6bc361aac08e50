package site

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	service "github.com/okian/simboard/internal/app"
	"github.com/okian/simboard/pkg/logger"

	. "github.com/smartystreets/goconvey/convey"
)

type listerFunc func(ctx context.Context) ([]service.SimulationSummary, error)

func (f listerFunc) Simulations(ctx context.Context) ([]service.SimulationSummary, error) {
	return f(ctx)
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSiteHandler(t *testing.T) {
	Convey("Given a site handler", t, func() {
		So(logger.Init(logger.WithOutput(io.Discard)), ShouldBeNil)
		ctx := context.Background()
		mux := http.NewServeMux()

		Convey("When simulations are known", func() {
			Register(ctx, mux, listerFunc(func(context.Context) ([]service.SimulationSummary, error) {
				return []service.SimulationSummary{{ID: "sim-backend", Candidates: 5, Scored: 3}}, nil
			}))

			Convey("Then the landing page links each board", func() {
				w := get(mux, "/")

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, "/api-docs")
				So(w.Body.String(), ShouldContainSubstring, `href="/simulations/sim-backend/candidates"`)
				So(w.Body.String(), ShouldContainSubstring, "<td>5</td>")
			})

			Convey("And other paths should not be caught", func() {
				So(get(mux, "/nope").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When no lister is given", func() {
			Register(ctx, mux, nil)

			Convey("Then the page says the board is empty", func() {
				w := get(mux, "/")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "No candidates yet")
			})
		})

		Convey("When listing fails", func() {
			Register(ctx, mux, listerFunc(func(context.Context) ([]service.SimulationSummary, error) {
				return nil, errors.New("boom")
			}))

			Convey("Then the page is a server error", func() {
				So(get(mux, "/").Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When registering on a nil mux", func() {
			So(func() { Register(ctx, nil, nil) }, ShouldPanic)
		})
	})
}
