package healthapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/okian/healthdash/internal/adapters/catalog"
	"github.com/okian/healthdash/internal/adapters/http/healthapi"
	"github.com/okian/healthdash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// memEditor is a map-backed catalog.Editor for handler tests.
type memEditor struct {
	projects map[int64]catalog.ProjectRow
	tasks    map[int64]catalog.TaskRow
	nextID   int64
	broken   bool
}

func newMemEditor() *memEditor {
	return &memEditor{projects: map[int64]catalog.ProjectRow{}, tasks: map[int64]catalog.TaskRow{}}
}

func (m *memEditor) List(context.Context) ([]model.ProjectRecord, error) {
	return []model.ProjectRecord{}, nil
}

func (m *memEditor) ListProjects(context.Context) ([]catalog.ProjectRow, error) {
	if m.broken {
		return nil, errors.New("pool closed")
	}
	out := []catalog.ProjectRow{}
	for id := int64(1); id <= m.nextID; id++ {
		if p, ok := m.projects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memEditor) GetProject(_ context.Context, id int64) (catalog.ProjectRow, error) {
	p, ok := m.projects[id]
	if !ok {
		return catalog.ProjectRow{}, fmt.Errorf("%w: project %d", catalog.ErrNotFound, id)
	}
	return p, nil
}

func (m *memEditor) CreateProject(_ context.Context, row catalog.ProjectRow) (catalog.ProjectRow, error) {
	if err := catalog.ValidateProject(row); err != nil {
		return catalog.ProjectRow{}, err
	}
	m.nextID++
	row.ID = m.nextID
	m.projects[row.ID] = row
	return row, nil
}

func (m *memEditor) UpdateProject(ctx context.Context, id int64, patch catalog.ProjectPatch) (catalog.ProjectRow, error) {
	cur, err := m.GetProject(ctx, id)
	if err != nil {
		return cur, err
	}
	next := patch.Apply(cur)
	if err := catalog.ValidateProject(next); err != nil {
		return catalog.ProjectRow{}, err
	}
	m.projects[id] = next
	return next, nil
}

func (m *memEditor) DeleteProject(_ context.Context, id int64) error {
	if _, ok := m.projects[id]; !ok {
		return fmt.Errorf("%w: project %d", catalog.ErrNotFound, id)
	}
	delete(m.projects, id)
	return nil
}

func (m *memEditor) GetTask(_ context.Context, id int64) (catalog.TaskRow, error) {
	t, ok := m.tasks[id]
	if !ok {
		return catalog.TaskRow{}, fmt.Errorf("%w: task %d", catalog.ErrNotFound, id)
	}
	return t, nil
}

func (m *memEditor) CreateTask(_ context.Context, row catalog.TaskRow) (catalog.TaskRow, error) {
	if err := catalog.ValidateTask(row); err != nil {
		return catalog.TaskRow{}, err
	}
	if _, ok := m.projects[row.ProjectID]; !ok {
		return catalog.TaskRow{}, fmt.Errorf("%w: project %d", catalog.ErrNotFound, row.ProjectID)
	}
	m.nextID++
	row.ID = m.nextID
	m.tasks[row.ID] = row
	return row, nil
}

func (m *memEditor) UpdateTask(ctx context.Context, id int64, patch catalog.TaskPatch) (catalog.TaskRow, error) {
	cur, err := m.GetTask(ctx, id)
	if err != nil {
		return cur, err
	}
	next := patch.Apply(cur)
	if err := catalog.ValidateTask(next); err != nil {
		return catalog.TaskRow{}, err
	}
	m.tasks[id] = next
	return next, nil
}

func (m *memEditor) DeleteTask(_ context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("%w: task %d", catalog.ErrNotFound, id)
	}
	delete(m.tasks, id)
	return nil
}

func send(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestEditorRoutes(t *testing.T) {
	Convey("Given a health API over an editable catalog", t, func() {
		ed := newMemEditor()
		srv, err := healthapi.New(ed)
		So(err, ShouldBeNil)
		h := srv.Handler(context.Background())

		Convey("When a project is created", func() {
			w := send(h, http.MethodPost, "/projects", `{"name":"Alpha","description":"first","startDate":"2024-01-01"}`)

			Convey("Then it is stored and returned with its id", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var got catalog.ProjectRow
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.ID, ShouldEqual, 1)
				So(got.Name, ShouldEqual, "Alpha")
			})

			Convey("Then it is listed and readable by id", func() {
				list := send(h, http.MethodGet, "/projects", "")
				So(list.Code, ShouldEqual, http.StatusOK)
				So(list.Body.String(), ShouldContainSubstring, `"name":"Alpha"`)

				one := send(h, http.MethodGet, "/projects/1", "")
				So(one.Code, ShouldEqual, http.StatusOK)
				So(one.Body.String(), ShouldContainSubstring, `"description":"first"`)
			})

			Convey("Then a task can be attached, updated and deleted", func() {
				created := send(h, http.MethodPost, "/tasks", `{"name":"write","status":"open","projectId":1}`)
				So(created.Code, ShouldEqual, http.StatusCreated)

				updated := send(h, http.MethodPut, "/tasks/2", `{"status":"completed"}`)
				So(updated.Code, ShouldEqual, http.StatusOK)
				So(updated.Body.String(), ShouldContainSubstring, `"status":"completed"`)
				So(updated.Body.String(), ShouldContainSubstring, `"name":"write"`)

				So(send(h, http.MethodDelete, "/tasks/2", "").Code, ShouldEqual, http.StatusNoContent)
				So(send(h, http.MethodGet, "/tasks/2", "").Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("Then it can be renamed and deleted", func() {
				w := send(h, http.MethodPut, "/projects/1", `{"name":"Renamed"}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"name":"Renamed"`)
				So(w.Body.String(), ShouldContainSubstring, `"startDate":"2024-01-01"`)

				So(send(h, http.MethodDelete, "/projects/1", "").Code, ShouldEqual, http.StatusNoContent)
				So(send(h, http.MethodGet, "/projects/1", "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When ids do not exist", func() {
			Convey("Then every id route is a JSON 404", func() {
				for _, tc := range []struct{ method, path, body string }{
					{http.MethodGet, "/projects/42", ""},
					{http.MethodPut, "/projects/42", `{"name":"x"}`},
					{http.MethodDelete, "/projects/42", ""},
					{http.MethodGet, "/tasks/42", ""},
					{http.MethodPut, "/tasks/42", `{"status":"open"}`},
					{http.MethodDelete, "/tasks/42", ""},
					{http.MethodPost, "/tasks", `{"name":"t","status":"open","projectId":42}`},
					{http.MethodGet, "/projects/abc", ""},
				} {
					w := send(h, tc.method, tc.path, tc.body)
					So(w.Code, ShouldEqual, http.StatusNotFound)
					So(w.Body.String(), ShouldContainSubstring, `"code":"not_found"`)
				}
			})
		})

		Convey("When the body is invalid", func() {
			Convey("Then malformed JSON, unknown fields and a missing name are 400", func() {
				So(send(h, http.MethodPost, "/projects", `{"name":`).Code, ShouldEqual, http.StatusBadRequest)
				So(send(h, http.MethodPost, "/projects", `{"name":"A","owner":"x"}`).Code, ShouldEqual, http.StatusBadRequest)
				w := send(h, http.MethodPost, "/projects", `{"description":"no name"}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"invalid_request"`)
			})
		})

		Convey("When the catalog fails", func() {
			ed.broken = true
			w := send(h, http.MethodGet, "/projects", "")

			Convey("Then a 500 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, `"code":"catalog_unavailable"`)
			})
		})

		Convey("When a cross-origin client asks to delete", func() {
			req := httptest.NewRequest(http.MethodOptions, "/projects/1", http.NoBody)
			req.Header.Set("Origin", "http://localhost:9080")
			req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then the preflight allows it", func() {
				So(w.Header().Get("Access-Control-Allow-Methods"), ShouldContainSubstring, http.MethodDelete)
			})
		})
	})

	Convey("Given a read-only catalog", t, func() {
		srv, _ := healthapi.New(catalog.NewMemory(nil))
		h := srv.Handler(context.Background())

		Convey("Then the edit routes are not mounted", func() {
			So(send(h, http.MethodGet, "/projects", "").Code, ShouldEqual, http.StatusNotFound)
			So(send(h, http.MethodPost, "/tasks", `{}`).Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

// TestEditorRoutesPostgres drives the routes against the database named by
// HEALTHDASH_TEST_DATABASE_DSN and is skipped otherwise.
func TestEditorRoutesPostgres(t *testing.T) {
	dsn := os.Getenv("HEALTHDASH_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("HEALTHDASH_TEST_DATABASE_DSN not set")
	}

	Convey("Given the health API over an empty Postgres catalog", t, func() {
		ctx := context.Background()
		pg, err := catalog.OpenPostgres(ctx, catalog.PostgresConfig{DSN: dsn, MaxConns: 2})
		So(err, ShouldBeNil)
		defer pg.Close()
		So(pg.Migrate(ctx), ShouldBeNil)
		So(pg.Reset(ctx), ShouldBeNil)
		srv, _ := healthapi.New(pg, fixedAssessor())
		h := srv.Handler(ctx)

		Convey("When a project and a completed task are posted", func() {
			So(send(h, http.MethodPost, "/projects", `{"name":"Alpha","startDate":"2024-01-01","riskFactors":["a"]}`).Code, ShouldEqual, http.StatusCreated)
			So(send(h, http.MethodPost, "/tasks", `{"name":"t1","status":"completed","projectId":1}`).Code, ShouldEqual, http.StatusCreated)
			So(send(h, http.MethodPost, "/tasks", `{"name":"t2","status":"open","projectId":1}`).Code, ShouldEqual, http.StatusCreated)
			w := get(h, "/project-health", nil)

			Convey("Then the health view reflects them", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"healthMetrics":{"progress":50,"risks":1}`)
				So(w.Body.String(), ShouldContainSubstring, `"riskLevel":"Medium"`)
			})
		})

		Convey("When a missing project is read or given a task", func() {
			Convey("Then both are 404", func() {
				So(send(h, http.MethodGet, "/projects/999", "").Code, ShouldEqual, http.StatusNotFound)
				So(send(h, http.MethodPost, "/tasks", `{"name":"t","status":"open","projectId":999}`).Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
