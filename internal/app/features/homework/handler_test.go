package homework_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harmonykeys/lessonhub/internal/app/features/homework"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"github.com/harmonykeys/lessonhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*homework.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := homework.NewHandler(db, auth.NewTokens("test-secret", 15*time.Minute), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func TestHandleCreateAssignsToStudent(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	user := fx.CreateUser(ctx, "parent@example.com", models.RolePortal)
	st := fx.CreateStudent(ctx, user.ID, "Alice", models.ProgramOneOnOne)

	req := testutil.AdminRequest(t, http.MethodPost, "/students/"+st.ID.Hex()+"/homework",
		map[string]string{"text": "Practice scales, 20 minutes daily"})
	req = testutil.WithChiURLParam(req, "studentID", st.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var hw models.Homework
	testutil.DecodeJSON(t, rec, &hw)
	if hw.StudentID != st.ID {
		t.Errorf("expected homework for student %s, got %s", st.ID.Hex(), hw.StudentID.Hex())
	}
	if hw.Status != models.HomeworkAssigned {
		t.Errorf("expected status %q, got %q", models.HomeworkAssigned, hw.Status)
	}
}

func TestHandleCreateUnknownStudent(t *testing.T) {
	h, _ := newHandler(t)

	missing := primitive.NewObjectID().Hex()
	req := testutil.AdminRequest(t, http.MethodPost, "/students/"+missing+"/homework",
		map[string]string{"text": "Practice scales"})
	req = testutil.WithChiURLParam(req, "studentID", missing)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleCreateStripsMarkup(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	user := fx.CreateUser(ctx, "parent@example.com", models.RolePortal)
	st := fx.CreateStudent(ctx, user.ID, "Alice", models.ProgramOneOnOne)

	req := testutil.AdminRequest(t, http.MethodPost, "/students/"+st.ID.Hex()+"/homework",
		map[string]string{"text": `Review <script>alert("x")</script>etudes`})
	req = testutil.WithChiURLParam(req, "studentID", st.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var hw models.Homework
	testutil.DecodeJSON(t, rec, &hw)
	if hw.Text != "Review etudes" {
		t.Errorf("expected sanitized text %q, got %q", "Review etudes", hw.Text)
	}
}

func TestPortalMayOnlyMarkCompleted(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	user := fx.CreateUser(ctx, "parent@example.com", models.RolePortal)
	st := fx.CreateStudent(ctx, user.ID, "Alice", models.ProgramOneOnOne)
	hw, err := h.Homework.Create(ctx, st.ID, "Practice scales")
	if err != nil {
		t.Fatalf("create homework: %v", err)
	}

	// Editing text is an admin-only operation.
	text := "Rewritten by parent"
	req := testutil.PortalRequest(t, http.MethodPut, "/homework/"+hw.ID.Hex(), user.ID,
		map[string]string{"text": text})
	req = testutil.WithChiURLParam(req, "id", hw.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for portal text edit, got %d", rec.Code)
	}

	req = testutil.PortalRequest(t, http.MethodPut, "/homework/"+hw.ID.Hex(), user.ID,
		map[string]string{"status": models.HomeworkCompleted})
	req = testutil.WithChiURLParam(req, "id", hw.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 marking completed, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var updated models.Homework
	testutil.DecodeJSON(t, rec, &updated)
	if updated.Status != models.HomeworkCompleted {
		t.Errorf("expected status %q, got %q", models.HomeworkCompleted, updated.Status)
	}
}

func TestPortalCannotTouchOtherFamiliesHomework(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	owner := fx.CreateUser(ctx, "owner@example.com", models.RolePortal)
	other := fx.CreateUser(ctx, "other@example.com", models.RolePortal)
	st := fx.CreateStudent(ctx, owner.ID, "Alice", models.ProgramOneOnOne)
	hw, err := h.Homework.Create(ctx, st.ID, "Practice scales")
	if err != nil {
		t.Fatalf("create homework: %v", err)
	}

	req := testutil.PortalRequest(t, http.MethodPut, "/homework/"+hw.ID.Hex(), other.ID,
		map[string]string{"status": models.HomeworkCompleted})
	req = testutil.WithChiURLParam(req, "id", hw.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestServeMineScopesToOwnStudents(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	me := fx.CreateUser(ctx, "me@example.com", models.RolePortal)
	them := fx.CreateUser(ctx, "them@example.com", models.RolePortal)
	mine := fx.CreateStudent(ctx, me.ID, "Alice", models.ProgramOneOnOne)
	theirs := fx.CreateStudent(ctx, them.ID, "Bob", models.ProgramOneOnOne)

	if _, err := h.Homework.Create(ctx, mine.ID, "Practice scales"); err != nil {
		t.Fatalf("create homework: %v", err)
	}
	if _, err := h.Homework.Create(ctx, theirs.ID, "Learn the minuet"); err != nil {
		t.Fatalf("create homework: %v", err)
	}

	req := testutil.PortalRequest(t, http.MethodGet, "/homework/mine", me.ID, nil)
	rec := httptest.NewRecorder()
	h.ServeMine(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var out []models.Homework
	testutil.DecodeJSON(t, rec, &out)
	if len(out) != 1 {
		t.Fatalf("expected 1 homework entry, got %d", len(out))
	}
	if out[0].StudentID != mine.ID {
		t.Errorf("expected homework for %s, got %s", mine.ID.Hex(), out[0].StudentID.Hex())
	}
}

func TestHandleDeleteRemovesAssignment(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	user := fx.CreateUser(ctx, "parent@example.com", models.RolePortal)
	st := fx.CreateStudent(ctx, user.ID, "Alice", models.ProgramOneOnOne)
	hw, err := h.Homework.Create(ctx, st.ID, "Practice scales")
	if err != nil {
		t.Fatalf("create homework: %v", err)
	}

	req := testutil.AdminRequest(t, http.MethodDelete, "/homework/"+hw.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "id", hw.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(
		testutil.AdminRequest(t, http.MethodDelete, "/homework/"+hw.ID.Hex(), nil), "id", hw.ID.Hex()))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}
