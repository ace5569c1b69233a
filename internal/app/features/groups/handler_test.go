package groups_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harmonykeys/lessonhub/internal/app/features/groups"
	"github.com/harmonykeys/lessonhub/internal/app/scheduling"
	"github.com/harmonykeys/lessonhub/internal/app/system/auth"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"github.com/harmonykeys/lessonhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type groupReply struct {
	Group models.Group `json:"group"`
	Meta  struct {
		CreatedLessons int `json:"createdLessons"`
		RemovedLessons int `json:"removedLessons"`
		AddedMembers   int `json:"addedMembers"`
		RemovedMembers int `json:"removedMembers"`
	} `json:"meta"`
}

func newHandler(t *testing.T) (*groups.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens := auth.NewTokens("test-secret", 15*time.Minute)
	h := groups.NewHandler(db, tokens, scheduling.NewEngine(db, zap.NewNop()), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func countLessons(t *testing.T, fx *testutil.Fixtures, filter bson.M) int64 {
	t.Helper()
	n, err := fx.DB().Collection("lessons").CountDocuments(context.Background(), filter)
	if err != nil {
		t.Fatalf("count lessons: %v", err)
	}
	return n
}

func TestHandleReplaceClonesLessonsForNewMember(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	alice := fx.CreateStudentWithSlot(ctx, "Alice", models.ProgramGroup, 1, "16:00")
	bob := fx.CreateStudentWithSlot(ctx, "Bob", models.ProgramGroup, 1, "16:00")
	g := fx.CreateGroup(ctx, "Monday Ensemble", alice.ID)

	gid := g.ID
	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Minute)
	fx.GroupLesson(ctx, alice.ID, &gid, start, start.Add(time.Hour), models.StatusScheduled)

	body := map[string]any{
		"name":      "Monday Ensemble",
		"memberIds": []string{alice.ID.Hex(), bob.ID.Hex()},
	}
	req := testutil.AdminRequest(t, http.MethodPut, "/groups/"+g.ID.Hex(), body)
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleReplace(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var reply groupReply
	testutil.DecodeJSON(t, rec, &reply)
	if reply.Meta.AddedMembers != 1 {
		t.Errorf("addedMembers = %d, want 1", reply.Meta.AddedMembers)
	}
	if reply.Meta.CreatedLessons != 1 {
		t.Errorf("createdLessons = %d, want 1", reply.Meta.CreatedLessons)
	}
	if n := countLessons(t, fx, bson.M{"student_id": bob.ID, "group_id": g.ID}); n != 1 {
		t.Errorf("bob has %d group lessons, want 1", n)
	}
}

func TestHandleDeleteRemovesUpcomingLessons(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	alice := fx.CreateStudentWithSlot(ctx, "Alice", models.ProgramGroup, 1, "16:00")
	g := fx.CreateGroup(ctx, "Monday Ensemble", alice.ID)
	gid := g.ID

	upcoming := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Minute)
	past := time.Now().UTC().Add(-72 * time.Hour).Truncate(time.Minute)
	fx.GroupLesson(ctx, alice.ID, &gid, upcoming, upcoming.Add(time.Hour), models.StatusScheduled)
	fx.GroupLesson(ctx, alice.ID, &gid, past, past.Add(time.Hour), models.StatusCompleted)

	req := testutil.AdminRequest(t, http.MethodDelete, "/groups/"+g.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var reply groupReply
	testutil.DecodeJSON(t, rec, &reply)
	if reply.Group.Active {
		t.Error("expected group to be inactive")
	}
	if reply.Meta.RemovedLessons != 1 {
		t.Errorf("removedLessons = %d, want 1", reply.Meta.RemovedLessons)
	}
	// The past Completed lesson must survive as history.
	if n := countLessons(t, fx, bson.M{"student_id": alice.ID}); n != 1 {
		t.Errorf("alice has %d lessons after delete, want 1", n)
	}
}

func TestHandleScheduleCreatesMemberBySessionGrid(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	alice := fx.CreateStudentWithSlot(ctx, "Alice", models.ProgramGroup, 1, "16:00")
	bob := fx.CreateStudentWithSlot(ctx, "Bob", models.ProgramGroup, 1, "16:00")
	g := fx.CreateGroup(ctx, "Monday Ensemble", alice.ID, bob.ID)

	s1 := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Minute)
	s2 := s1.Add(7 * 24 * time.Hour)
	body := map[string]any{
		"sessions": []map[string]any{
			{"start": s1, "end": s1.Add(time.Hour)},
			{"start": s2, "end": s2.Add(time.Hour)},
		},
		"notes": "Bring sheet music",
	}
	req := testutil.AdminRequest(t, http.MethodPost, "/groups/"+g.ID.Hex()+"/schedule", body)
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleSchedule(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var reply struct {
		CreatedLessons int `json:"createdLessons"`
	}
	testutil.DecodeJSON(t, rec, &reply)
	if reply.CreatedLessons != 4 {
		t.Errorf("createdLessons = %d, want 4", reply.CreatedLessons)
	}
	if n := countLessons(t, fx, bson.M{"group_id": g.ID, "type": models.LessonTypeGroup}); n != 4 {
		t.Errorf("stored %d group lessons, want 4", n)
	}
}

func TestHandleScheduleRejectsInactiveGroup(t *testing.T) {
	h, fx := newHandler(t)
	ctx := testutil.TestContext(t)

	alice := fx.CreateStudentWithSlot(ctx, "Alice", models.ProgramGroup, 1, "16:00")
	g := fx.CreateGroup(ctx, "Monday Ensemble", alice.ID)
	if _, err := fx.DB().Collection("groups").UpdateByID(ctx, g.ID, bson.M{"$set": bson.M{"active": false}}); err != nil {
		t.Fatalf("deactivate group: %v", err)
	}

	s := time.Now().UTC().Add(96 * time.Hour)
	body := map[string]any{
		"sessions": []map[string]any{{"start": s, "end": s.Add(time.Hour)}},
	}
	req := testutil.AdminRequest(t, http.MethodPost, "/groups/"+g.ID.Hex()+"/schedule", body)
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleSchedule(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}
