// Package reminders scans upcoming lessons and delivers Web Push
// reminders to the portal users who want them. It is driven by a cron
// endpoint and is safe to run on overlapping schedules: the
// notification log's unique claim makes every (subscription, lesson)
// pair at-most-once.
package reminders

import (
	"context"
	"fmt"
	"time"

	notifylogstore "github.com/harmonykeys/lessonhub/internal/app/store/notifylog"
	pushsubstore "github.com/harmonykeys/lessonhub/internal/app/store/pushsubs"
	settingsstore "github.com/harmonykeys/lessonhub/internal/app/store/settings"
	studentstore "github.com/harmonykeys/lessonhub/internal/app/store/students"
	userstore "github.com/harmonykeys/lessonhub/internal/app/store/users"
	"github.com/harmonykeys/lessonhub/internal/app/system/push"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Scan bounds around "now". The hour of slack behind catches lessons
// whose send window opened just before a missed cron tick; 30 hours
// ahead covers the default day-before lead time with margin.
const (
	scanBehind = time.Hour
	scanAhead  = 30 * time.Hour
)

// Summary reports what one reminder run did.
type Summary struct {
	LessonsConsidered int `json:"lessonsConsidered"`
	Attempted         int `json:"attempted"`
	Sent              int `json:"sent"`
	Pruned            int `json:"pruned"`
	Skipped           int `json:"skipped"`
}

// Engine evaluates due reminders and pushes them out.
type Engine struct {
	lessons   *mongo.Collection
	students  *studentstore.Store
	users     *userstore.Store
	subs      *pushsubstore.Store
	logs      *notifylogstore.Store
	settings  *settingsstore.Store
	sender    *push.Sender
	defaultTZ string
	log       *zap.Logger
}

func NewEngine(db *mongo.Database, sender *push.Sender, defaultTZ string, log *zap.Logger) *Engine {
	return &Engine{
		lessons:   db.Collection("lessons"),
		students:  studentstore.New(db),
		users:     userstore.New(db),
		subs:      pushsubstore.New(db),
		logs:      notifylogstore.New(db),
		settings:  settingsstore.New(db),
		sender:    sender,
		defaultTZ: defaultTZ,
		log:       log,
	}
}

// SendDue delivers every reminder whose send window contains now.
// Per-lesson and per-subscription failures are logged and skipped so
// one bad record cannot stall the whole run.
func (e *Engine) SendDue(ctx context.Context, now time.Time) (Summary, error) {
	var sum Summary

	settings, err := e.settings.Get(ctx)
	if err != nil {
		return sum, err
	}
	if !settings.Enabled || !e.sender.Enabled() {
		return sum, nil
	}

	cur, err := e.lessons.Find(ctx, bson.M{
		"status": models.StatusScheduled,
		"start": bson.M{
			"$gte": now.Add(-scanBehind),
			"$lte": now.Add(scanAhead),
		},
	})
	if err != nil {
		return sum, err
	}
	var lessons []models.Lesson
	if err := cur.All(ctx, &lessons); err != nil {
		return sum, err
	}
	sum.LessonsConsidered = len(lessons)

	for _, lesson := range lessons {
		if err := e.remind(ctx, lesson, settings, now, &sum); err != nil {
			e.log.Warn("reminder failed for lesson",
				zap.String("lesson_id", lesson.ID.Hex()),
				zap.Error(err))
			sum.Skipped++
		}
	}

	e.log.Info("reminder run complete",
		zap.Int("considered", sum.LessonsConsidered),
		zap.Int("attempted", sum.Attempted),
		zap.Int("sent", sum.Sent),
		zap.Int("pruned", sum.Pruned),
		zap.Int("skipped", sum.Skipped))
	return sum, nil
}

func (e *Engine) remind(ctx context.Context, lesson models.Lesson, settings models.NotificationSettings, now time.Time, sum *Summary) error {
	if lesson.StudentID == nil {
		// Demo lessons have no portal user to notify.
		sum.Skipped++
		return nil
	}

	student, err := e.students.GetByID(ctx, *lesson.StudentID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			sum.Skipped++
			return nil
		}
		return err
	}

	user, err := e.users.GetByID(ctx, student.UserID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			sum.Skipped++
			return nil
		}
		return err
	}
	if !user.Active || !user.WantsLessonReminders() {
		sum.Skipped++
		return nil
	}

	loc := e.location(student.Timezone)
	sendAt := SendTime(lesson.Start, settings, loc)
	if now.Before(sendAt) || !now.Before(lesson.Start) {
		sum.Skipped++
		return nil
	}

	subs, err := e.subs.ListByUsers(ctx, []primitive.ObjectID{user.ID})
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		sum.Skipped++
		return nil
	}

	msg := push.Message{
		Title: "Lesson reminder",
		Body: fmt.Sprintf("%s's lesson is %s at %s.",
			student.Name,
			lesson.Start.In(loc).Format("Monday, Jan 2"),
			lesson.Start.In(loc).Format("3:04 PM")),
		URL: "/lessons",
		Tag: "lesson-" + lesson.ID.Hex(),
	}

	for _, sub := range subs {
		if err := e.logs.Claim(ctx, sub.ID, lesson.ID, models.NotificationKindLessonReminder); err != nil {
			if err == notifylogstore.ErrAlreadySent {
				continue
			}
			return err
		}

		sum.Attempted++
		if err := e.sender.Send(ctx, sub, msg); err != nil {
			if err == push.ErrSubscriptionGone {
				if derr := e.subs.Delete(ctx, sub.ID); derr != nil {
					e.log.Warn("failed to prune dead subscription",
						zap.String("subscription_id", sub.ID.Hex()), zap.Error(derr))
				} else {
					sum.Pruned++
				}
				continue
			}
			e.log.Warn("push delivery failed",
				zap.String("subscription_id", sub.ID.Hex()),
				zap.String("lesson_id", lesson.ID.Hex()),
				zap.Error(err))
			continue
		}
		sum.Sent++
		_ = e.subs.TouchLastSeen(ctx, sub.ID)
	}
	return nil
}

func (e *Engine) location(tz string) *time.Location {
	if tz == "" {
		tz = e.defaultTZ
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SendTime computes when the reminder for a lesson becomes due: lead
// minutes before the start, shifted forward out of the studio's quiet
// hours in the student's local time.
func SendTime(start time.Time, settings models.NotificationSettings, loc *time.Location) time.Time {
	sendAt := start.Add(-time.Duration(settings.LeadMinutes) * time.Minute)
	local := sendAt.In(loc)
	if !inQuietHours(local.Hour(), settings.QuietHours) {
		return sendAt
	}

	// Shift to the end of the quiet window. When the window spans
	// midnight and the send time falls in its evening half, the end is
	// on the next day.
	end := time.Date(local.Year(), local.Month(), local.Day(),
		settings.QuietHours.End, 0, 0, 0, loc)
	if settings.QuietHours.Start > settings.QuietHours.End && local.Hour() >= settings.QuietHours.Start {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

func inQuietHours(hour int, q models.QuietHours) bool {
	if q.Start == q.End {
		return false
	}
	if q.Start < q.End {
		return hour >= q.Start && hour < q.End
	}
	// Window spans midnight, e.g. 22 to 7.
	return hour >= q.Start || hour < q.End
}
