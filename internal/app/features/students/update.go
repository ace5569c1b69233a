// internal/app/features/students/update.go
package students

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"github.com/harmonykeys/lessonhub/internal/app/system/timezones"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// updateStudentRequest carries only the fields present in the request;
// nil pointers leave the stored value untouched.
type updateStudentRequest struct {
	Name        *string      `json:"name"`
	Address     *string      `json:"address"`
	DateOfBirth *string      `json:"dateOfBirth"`
	ParentName  *string      `json:"parentName"`
	ParentPhone *string      `json:"parentPhone"`
	Program     *string      `json:"program" validate:"omitempty,oneof=One-on-one Group"`
	AgeGroup    *string      `json:"ageGroup"`
	MonthlyFee  *float64     `json:"monthlyFee" validate:"omitempty,min=0"`
	Active      *bool        `json:"active"`
	Timezone    *string      `json:"timezone"`
	DefaultSlot *slotRequest `json:"defaultSlot"`
}

// HandleUpdate handles PUT /students/{studentID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "studentID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	var req updateStudentRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Address != nil {
		set["address"] = *req.Address
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			set["date_of_birth"] = nil
		} else {
			d, err := time.Parse("2006-01-02", *req.DateOfBirth)
			if err != nil {
				httpjson.Error(w, http.StatusBadRequest, "Invalid dateOfBirth, expected YYYY-MM-DD")
				return
			}
			set["date_of_birth"] = d
		}
	}
	if req.ParentName != nil {
		set["parent_name"] = *req.ParentName
	}
	if req.ParentPhone != nil {
		set["parent_phone"] = *req.ParentPhone
	}
	if req.Program != nil {
		set["program"] = *req.Program
	}
	if req.AgeGroup != nil {
		set["age_group"] = *req.AgeGroup
	}
	if req.MonthlyFee != nil {
		set["monthly_fee"] = *req.MonthlyFee
	}
	if req.Active != nil {
		set["active"] = *req.Active
	}
	if req.Timezone != nil {
		if *req.Timezone != "" && !timezones.Valid(*req.Timezone) {
			httpjson.Error(w, http.StatusBadRequest, "Unknown timezone")
			return
		}
		set["timezone"] = *req.Timezone
	}
	if req.DefaultSlot != nil {
		set["default_slot"] = bson.M{
			"weekday": req.DefaultSlot.Weekday,
			"time":    req.DefaultSlot.Time,
		}
	}
	if len(set) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "No fields to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Students.Update(ctx, id, set)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w)
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "update student failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, st)
}
