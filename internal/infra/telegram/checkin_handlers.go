// internal/infra/telegram/checkin_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"forget_me_not/internal/app"
	"forget_me_not/internal/domain/person"
	"forget_me_not/internal/domain/reminder"
	idb "forget_me_not/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const dateLayout = "Mon, Jan 2"

// RegisterCheckInHandlers wires the owner's chat surface: /due and /list plus
// the Done/Snooze callback buttons. The bot talks to exactly one owner; any
// other sender is turned away.
func RegisterCheckInHandlers(
	ctx context.Context,
	b *telebot.Bot,
	outreachService app.OutreachService,
	personRepo person.Repository,
	suggestions *app.SuggestionService,
	ownerUserID string,
	ownerTelegramID int64,
	baseLogger *logrus.Entry,
) {
	logger := baseLogger.WithField("handler_group", "checkin")

	ownerOnly := func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			if c.Sender() == nil || c.Sender().ID != ownerTelegramID {
				return c.Send("Sorry, this bot only responds to its owner.")
			}
			return next(c)
		}
	}

	b.Handle("/start", ownerOnly(func(c telebot.Context) error {
		logger.WithField("command", "/start").Info("Processing /start command")
		return c.Send("Hi! I keep track of who you should check in with.\nUse /due to see who is waiting, /list for everyone.")
	}))

	b.Handle("/due", ownerOnly(func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/due")
		logCtx.Info("Processing /due command")

		people, err := personRepo.ListByUser(ctx, ownerUserID)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list people for /due")
			return c.Send("Something went wrong fetching your people. Please try again later.")
		}

		now := time.Now()
		sentAny := false
		for _, p := range people {
			status := reminder.Classify(p.NextReminderAt, now)
			if status.Days > 0 {
				// People are ordered soonest-first, nothing due past this point.
				break
			}
			sentAny = true

			var msg strings.Builder
			fmt.Fprintf(&msg, "%s - %s\n", p.Name, status.Label)
			for _, idea := range suggestions.Pick(person.RelationshipHint(p.RelationshipHint.String), 3) {
				fmt.Fprintf(&msg, "• %s\n", idea)
			}

			markup := &telebot.ReplyMarkup{}
			btnDone := markup.Data("I reached out", fmt.Sprintf("done_%s", p.ID))
			btnSnooze := markup.Data("Snooze", fmt.Sprintf("snooze_%s", p.ID))
			markup.Inline(markup.Row(btnDone, btnSnooze))

			if err := c.Send(msg.String(), &telebot.SendOptions{ReplyMarkup: markup}); err != nil {
				logCtx.WithError(err).WithField("person_id", p.ID).Error("Failed to send due entry")
			}
		}
		if !sentAny {
			return c.Send("Nobody is due right now. 🎉")
		}
		return nil
	}))

	b.Handle("/list", ownerOnly(func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/list")
		logCtx.Info("Processing /list command")

		people, err := personRepo.ListByUser(ctx, ownerUserID)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list people for /list")
			return c.Send("Something went wrong fetching your people. Please try again later.")
		}
		if len(people) == 0 {
			return c.Send("You have no people yet. Add some through the app first.")
		}

		now := time.Now()
		var msg strings.Builder
		for _, p := range people {
			fmt.Fprintf(&msg, "%s - %s\n", p.Name, reminder.Classify(p.NextReminderAt, now).Label)
		}
		return c.Send(msg.String())
	}))

	b.Handle(telebot.OnCallback, ownerOnly(func(c telebot.Context) error {
		data := strings.TrimPrefix(c.Callback().Data, "\f")
		logCtx := logger.WithField("callback_data", data)

		switch {
		case strings.HasPrefix(data, "done_"):
			personID := strings.TrimPrefix(data, "done_")
			p, err := personRepo.GetByID(ctx, personID)
			if err != nil {
				if err == idb.ErrPersonNotFound {
					logCtx.Warn("Callback references a person that no longer exists")
					return c.Respond(&telebot.CallbackResponse{Text: "That person is gone."})
				}
				logCtx.WithError(err).Error("Failed to fetch person for 'done' callback")
				return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
			}
			if err := outreachService.RecordOutreach(ctx, p, time.Time{}, ""); err != nil {
				logCtx.WithError(err).Error("Failed to record outreach from callback")
				return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
			}
			return c.Respond(&telebot.CallbackResponse{
				Text: fmt.Sprintf("Noted! Next reminder %s.", p.NextReminderAt.Format(dateLayout)),
			})

		case strings.HasPrefix(data, "snooze_"):
			personID := strings.TrimPrefix(data, "snooze_")
			p, err := personRepo.GetByID(ctx, personID)
			if err != nil {
				if err == idb.ErrPersonNotFound {
					logCtx.Warn("Callback references a person that no longer exists")
					return c.Respond(&telebot.CallbackResponse{Text: "That person is gone."})
				}
				logCtx.WithError(err).Error("Failed to fetch person for 'snooze' callback")
				return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
			}
			if err := outreachService.Snooze(ctx, p); err != nil {
				logCtx.WithError(err).Error("Failed to snooze from callback")
				return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
			}
			return c.Respond(&telebot.CallbackResponse{
				Text: fmt.Sprintf("Snoozed until %s.", p.NextReminderAt.Format(dateLayout)),
			})
		}

		logCtx.Warn("Unhandled callback data")
		return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
	}))
}
