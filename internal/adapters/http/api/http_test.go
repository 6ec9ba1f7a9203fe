package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wrufbot/wruf/internal/adapters/http/api"
	"github.com/wrufbot/wruf/internal/adapters/store"
	session "github.com/wrufbot/wruf/internal/app"
	"github.com/wrufbot/wruf/internal/domain/model"
	"github.com/wrufbot/wruf/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeOracle struct {
	analysis model.Analysis
	err      error
}

func (f *fakeOracle) Analyze(ctx context.Context, content []byte, mediaType string) (model.Analysis, error) {
	if f.err != nil {
		return model.Analysis{}, f.err
	}
	return f.analysis, nil
}

type fakeFetcher struct {
	content   []byte
	mediaType string
	err       error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.content, f.mediaType, nil
}

func newTestServer(st store.Store, oracle session.Oracle, fetcher api.Fetcher, adminToken string) *httptest.Server {
	s := session.New(st, oracle, session.WithAllowDuplicate(true))
	srv := api.NewServer(s, fetcher, api.ServerConfig{MaxLeaderboardLimit: 100, AdminToken: adminToken})
	mux := http.NewServeMux()
	srv.Register(mux)
	return httptest.NewServer(mux)
}

func TestAnalyzeEndpoint(t *testing.T) {
	Convey("Given a running API", t, func() {
		st := store.NewMemoryStore()
		oracle := &fakeOracle{analysis: model.Analysis{
			Score:     40,
			Rationale: "good composition",
			Positives: []string{"sharp"},
			Negatives: []string{},
		}}
		fetcher := &fakeFetcher{content: []byte("img"), mediaType: "image/png"}
		ts := newTestServer(st, oracle, fetcher, "")
		defer ts.Close()

		post := func(body string) *http.Response {
			resp, err := http.Post(ts.URL+"/analyze", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			return resp
		}

		Convey("A valid submission returns the report without rationale", func() {
			resp := post(`{"image_url":"http://example.com/a.png","user_id":"alice"}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var got map[string]any
			So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
			So(got["score"], ShouldEqual, 40)
			So(got["new_average"], ShouldAlmostEqual, 40.4, 1e-9)
			So(got["rationale"], ShouldBeNil)
		})

		Convey("A deep submission includes the rationale", func() {
			resp := post(`{"image_url":"http://example.com/a.png","user_id":"alice","deep":true}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var got map[string]any
			So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
			So(got["rationale"], ShouldEqual, "good composition")
		})

		Convey("A missing user_id is a bad request", func() {
			resp := post(`{"image_url":"http://example.com/a.png"}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Malformed JSON is a bad request", func() {
			resp := post(`{nope`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A fetch failure maps to 502", func() {
			fetcher.err = errors.New("connection refused")
			resp := post(`{"image_url":"http://example.com/a.png","user_id":"alice"}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadGateway)
		})

		Convey("An unsupported media type maps to 422 and names the kind", func() {
			fetcher.mediaType = "text/html"
			resp := post(`{"image_url":"http://example.com/a.png","user_id":"alice"}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusUnprocessableEntity)

			var got map[string]any
			So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
			So(got["message"], ShouldContainSubstring, "text/html")
		})

		Convey("An oracle failure maps to a generic 500", func() {
			oracle.err = errors.New("model unavailable")
			resp := post(`{"image_url":"http://example.com/a.png","user_id":"alice"}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)

			var got map[string]any
			So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
			So(got["message"], ShouldNotContainSubstring, "model unavailable")
		})
	})
}

func TestScoreAndLeaderboardEndpoints(t *testing.T) {
	Convey("Given an API over seeded scores", t, func() {
		ctx := context.Background()
		st := store.NewMemoryStore()
		So(st.RecordSubmission(ctx, "alice", 40), ShouldBeNil)
		So(st.RecordSubmission(ctx, "bob", 20), ShouldBeNil)
		ts := newTestServer(st, &fakeOracle{}, &fakeFetcher{}, "")
		defer ts.Close()

		Convey("GET /score/{user} returns the scaled average", func() {
			resp, err := http.Get(ts.URL + "/score/alice")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var got map[string]any
			So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
			So(got["user_id"], ShouldEqual, "alice")
			So(got["average"], ShouldAlmostEqual, 40.4, 1e-9)
		})

		Convey("GET /score/{unknown} reads as zero", func() {
			resp, err := http.Get(ts.URL + "/score/nobody")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var got map[string]any
			So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
			So(got["average"], ShouldEqual, 0)
		})

		Convey("GET /score/ without a user is a bad request", func() {
			resp, err := http.Get(ts.URL + "/score/")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /leaderboard returns descending entries", func() {
			resp, err := http.Get(ts.URL + "/leaderboard")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var entries []model.Entry
			So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
			So(len(entries), ShouldEqual, 2)
			So(entries[0].UserID, ShouldEqual, "alice")
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[1].UserID, ShouldEqual, "bob")
		})

		Convey("GET /leaderboard honors limit", func() {
			resp, err := http.Get(ts.URL + "/leaderboard?limit=1")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var entries []model.Entry
			So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
			So(len(entries), ShouldEqual, 1)
		})

		Convey("GET /leaderboard rejects an excessive limit", func() {
			resp, err := http.Get(ts.URL + "/leaderboard?limit=9999")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestAdminEndpoints(t *testing.T) {
	Convey("Given an API with an admin token", t, func() {
		ctx := context.Background()
		st := store.NewMemoryStore()
		So(st.RecordSubmission(ctx, "alice", 40), ShouldBeNil)
		So(st.Add(ctx, "deadbeef"), ShouldBeNil)
		ts := newTestServer(st, &fakeOracle{}, &fakeFetcher{}, "s3cret")
		defer ts.Close()

		postAdmin := func(op, token string) *http.Response {
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/admin/"+op, nil)
			So(err, ShouldBeNil)
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			return resp
		}

		Convey("A missing token is forbidden", func() {
			resp := postAdmin("clear-all", "")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusForbidden)
		})

		Convey("A wrong token is forbidden", func() {
			resp := postAdmin("clear-all", "wrong")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusForbidden)
		})

		Convey("clear-scores wipes scores but keeps the ledger", func() {
			resp := postAdmin("clear-scores", "s3cret")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			avg, _ := st.Average(ctx, "alice")
			So(avg, ShouldEqual, 0.0)
			seen, _ := st.Contains(ctx, "deadbeef")
			So(seen, ShouldBeTrue)
		})

		Convey("clear-all wipes everything", func() {
			resp := postAdmin("clear-all", "s3cret")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			avg, _ := st.Average(ctx, "alice")
			So(avg, ShouldEqual, 0.0)
			seen, _ := st.Contains(ctx, "deadbeef")
			So(seen, ShouldBeFalse)
		})

		Convey("An unknown operation is not found", func() {
			resp := postAdmin("drop-tables", "s3cret")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given an API without an admin token", t, func() {
		ts := newTestServer(store.NewMemoryStore(), &fakeOracle{}, &fakeFetcher{}, "")
		defer ts.Close()

		Convey("Admin routes are disabled even with a bearer header", func() {
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/admin/clear-all", nil)
			So(err, ShouldBeNil)
			req.Header.Set("Authorization", "Bearer anything")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusForbidden)
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(store.NewMemoryStore(), &fakeOracle{}, &fakeFetcher{}, "")
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
