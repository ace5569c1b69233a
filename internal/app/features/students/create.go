// internal/app/features/students/create.go
package students

import (
	"context"
	"net/http"
	"strings"
	"time"

	userstore "github.com/harmonykeys/lessonhub/internal/app/store/users"
	"github.com/harmonykeys/lessonhub/internal/app/system/httpjson"
	"github.com/harmonykeys/lessonhub/internal/app/system/normalize"
	"github.com/harmonykeys/lessonhub/internal/app/system/timeouts"
	"github.com/harmonykeys/lessonhub/internal/app/system/timezones"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"golang.org/x/crypto/bcrypt"
)

type slotRequest struct {
	Weekday int    `json:"weekday" validate:"min=0,max=6"`
	Time    string `json:"time" validate:"required,len=5"`
}

type createStudentRequest struct {
	Name        string       `json:"name" validate:"required"`
	Email       string       `json:"email" validate:"required,email"`
	Program     string       `json:"program" validate:"required,oneof=One-on-one Group"`
	MonthlyFee  float64      `json:"monthlyFee" validate:"min=0"`
	Address     string       `json:"address"`
	DateOfBirth string       `json:"dateOfBirth"`
	ParentName  string       `json:"parentName"`
	ParentPhone string       `json:"parentPhone"`
	AgeGroup    string       `json:"ageGroup"`
	Timezone    string       `json:"timezone"`
	DefaultSlot *slotRequest `json:"defaultSlot"`
}

// HandleCreate handles POST /students: creates the student record and
// its portal login. The temporary password is the email's local part
// and must be changed on first sign-in.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, err)
		return
	}

	if req.Timezone != "" && !timezones.Valid(req.Timezone) {
		httpjson.Error(w, http.StatusBadRequest, "Unknown timezone")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var dob *time.Time
	if req.DateOfBirth != "" {
		d, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Invalid dateOfBirth, expected YYYY-MM-DD")
			return
		}
		dob = &d
	}

	email := normalize.Email(req.Email)
	name := normalize.Name(req.Name)
	tempPassword, _, _ := strings.Cut(email, "@")
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		httpjson.ServerError(w, h.Log, "create student: hash failed", err)
		return
	}

	user, err := h.Users.Create(ctx, models.User{
		Email:              email,
		PasswordHash:       string(hash),
		Role:               models.RolePortal,
		Active:             true,
		MustChangePassword: true,
		Profile:            &models.UserProfile{Name: name},
	})
	if err == userstore.ErrDuplicateEmail {
		httpjson.Error(w, http.StatusConflict, "A user with this email already exists")
		return
	}
	if err != nil {
		httpjson.ServerError(w, h.Log, "create student: user create failed", err)
		return
	}

	student := models.Student{
		UserID:      user.ID,
		Name:        name,
		Address:     req.Address,
		DateOfBirth: dob,
		ParentName:  req.ParentName,
		ParentPhone: req.ParentPhone,
		Program:     req.Program,
		AgeGroup:    req.AgeGroup,
		MonthlyFee:  req.MonthlyFee,
		Active:      true,
		Timezone:    req.Timezone,
	}
	if req.DefaultSlot != nil {
		student.DefaultSlot = &models.DefaultSlot{
			Weekday: req.DefaultSlot.Weekday,
			Time:    req.DefaultSlot.Time,
		}
	}

	created, err := h.Students.Create(ctx, student)
	if err != nil {
		httpjson.ServerError(w, h.Log, "create student: save failed", err)
		return
	}

	httpjson.Write(w, http.StatusCreated, created)
}
