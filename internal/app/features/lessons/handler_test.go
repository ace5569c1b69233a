package lessons_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harmonykeys/lessonhub/internal/app/features/lessons"
	"github.com/harmonykeys/lessonhub/internal/app/scheduling"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"github.com/harmonykeys/lessonhub/internal/app/system/indexes"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"github.com/harmonykeys/lessonhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*lessons.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens := auth.NewTokens("test-secret", 15*time.Minute)
	h := lessons.NewHandler(db, tokens, scheduling.NewEngine(db, zap.NewNop()), time.UTC, zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func TestHandleCreateRejectsDuplicate(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	if err := indexes.EnsureAll(ctx, fx.DB()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	user := fx.CreateUser(ctx, "parent@example.com", models.RolePortal)
	st := fx.CreateStudent(ctx, user.ID, "Alice", models.ProgramOneOnOne)

	start := time.Date(2026, 10, 5, 16, 0, 0, 0, time.UTC)
	body := map[string]any{
		"type":      "one",
		"studentId": st.ID.Hex(),
		"start":     start,
		"end":       start.Add(45 * time.Minute),
	}

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.AdminRequest(t, http.MethodPost, "/lessons", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.HandleCreate(rec, testutil.AdminRequest(t, http.MethodPost, "/lessons", body))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create status = %d, want 409", rec.Code)
	}
}

func TestHandleCreateDemoNeedsProspectName(t *testing.T) {
	h, _ := newHandler(t)

	start := time.Date(2026, 10, 5, 16, 0, 0, 0, time.UTC)
	body := map[string]any{
		"type":  "demo",
		"start": start,
		"end":   start.Add(30 * time.Minute),
	}
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.AdminRequest(t, http.MethodPost, "/lessons", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	body["demoName"] = "Walk-in prospect"
	rec = httptest.NewRecorder()
	h.HandleCreate(rec, testutil.AdminRequest(t, http.MethodPost, "/lessons", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created models.Lesson
	testutil.DecodeJSON(t, rec, &created)
	if created.DemoName != "Walk-in prospect" {
		t.Errorf("demoName = %q", created.DemoName)
	}
	if created.StudentID != nil {
		t.Error("demo lesson should have no student")
	}
}

func TestHandleUpdatePropagatesToSiblings(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	alice := fx.CreateStudentWithSlot(ctx, "Alice", models.ProgramGroup, 1, "16:00")
	bob := fx.CreateStudentWithSlot(ctx, "Bob", models.ProgramGroup, 1, "16:00")
	g := fx.CreateGroup(ctx, "Monday Ensemble", alice.ID, bob.ID)
	gid := g.ID

	start := time.Date(2026, 10, 5, 16, 0, 0, 0, time.UTC)
	edited := fx.GroupLesson(ctx, alice.ID, &gid, start, start.Add(time.Hour), models.StatusScheduled)
	sibling := fx.GroupLesson(ctx, bob.ID, &gid, start, start.Add(time.Hour), models.StatusScheduled)

	status := models.StatusCancelled
	req := testutil.AdminRequest(t, http.MethodPut, "/lessons/"+edited.ID.Hex(), map[string]any{"status": status})
	req = testutil.WithChiURLParam(req, "id", edited.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var reply struct {
		Lesson models.Lesson `json:"lesson"`
		Meta   struct {
			UpdatedSiblings int  `json:"updatedSiblings"`
			LinkRepaired    bool `json:"linkRepaired"`
		} `json:"meta"`
	}
	testutil.DecodeJSON(t, rec, &reply)
	if reply.Lesson.Status != models.StatusCancelled {
		t.Errorf("lesson status = %q, want Cancelled", reply.Lesson.Status)
	}
	if reply.Meta.UpdatedSiblings != 1 {
		t.Errorf("updatedSiblings = %d, want 1", reply.Meta.UpdatedSiblings)
	}

	var got models.Lesson
	if err := fx.DB().Collection("lessons").FindOne(context.Background(), bson.M{"_id": sibling.ID}).Decode(&got); err != nil {
		t.Fatalf("load sibling: %v", err)
	}
	if got.Status != models.StatusCancelled {
		t.Errorf("sibling status = %q, want Cancelled", got.Status)
	}
}

func TestServeListScopesPortalToOwnStudents(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	parent := fx.CreateUser(ctx, "parent@example.com", models.RolePortal)
	other := fx.CreateUser(ctx, "other@example.com", models.RolePortal)
	mine := fx.CreateStudent(ctx, parent.ID, "Alice", models.ProgramOneOnOne)
	theirs := fx.CreateStudent(ctx, other.ID, "Bob", models.ProgramOneOnOne)

	start := time.Date(2026, 10, 5, 16, 0, 0, 0, time.UTC)
	mineID, theirsID := mine.ID, theirs.ID
	fx.CreateLesson(ctx, models.Lesson{StudentID: &mineID, Type: models.LessonTypeOne, Start: start, End: start.Add(time.Hour)})
	fx.CreateLesson(ctx, models.Lesson{StudentID: &theirsID, Type: models.LessonTypeOne, Start: start, End: start.Add(time.Hour)})

	req := testutil.PortalRequest(t, http.MethodGet, "/lessons?view=week&start=2026-10-05", parent.ID, nil)
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out []models.Lesson
	testutil.DecodeJSON(t, rec, &out)
	if len(out) != 1 {
		t.Fatalf("portal sees %d lessons, want 1", len(out))
	}
	if out[0].StudentID == nil || *out[0].StudentID != mine.ID {
		t.Error("portal user saw another family's lesson")
	}
}

func TestServeListWeekWindow(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	user := fx.CreateUser(ctx, "parent@example.com", models.RolePortal)
	st := fx.CreateStudent(ctx, user.ID, "Alice", models.ProgramOneOnOne)
	sid := st.ID

	inside := time.Date(2026, 10, 7, 16, 0, 0, 0, time.UTC)
	outside := time.Date(2026, 10, 14, 16, 0, 0, 0, time.UTC)
	fx.CreateLesson(ctx, models.Lesson{StudentID: &sid, Type: models.LessonTypeOne, Start: inside, End: inside.Add(time.Hour)})
	fx.CreateLesson(ctx, models.Lesson{StudentID: &sid, Type: models.LessonTypeOne, Start: outside, End: outside.Add(time.Hour)})

	req := testutil.AdminRequest(t, http.MethodGet, "/lessons?view=week&start=2026-10-05", nil)
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out []models.Lesson
	testutil.DecodeJSON(t, rec, &out)
	if len(out) != 1 {
		t.Fatalf("week view returned %d lessons, want 1", len(out))
	}
}

func TestHandleGenerateMonthEndpoint(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	fx.CreateStudentWithSlot(ctx, "Alice", models.ProgramOneOnOne, 1, "16:00")

	body := map[string]any{"year": 2026, "month": 10, "durationMinutes": 45}
	rec := httptest.NewRecorder()
	h.HandleGenerateMonth(rec, testutil.AdminRequest(t, http.MethodPost, "/lessons/generate-month", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var reply map[string]int
	testutil.DecodeJSON(t, rec, &reply)
	if reply["createdLessons"] != 4 {
		t.Errorf("createdLessons = %d, want 4 (Mondays in October 2026)", reply["createdLessons"])
	}
}
