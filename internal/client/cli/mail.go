package cli

import (
	"context"
	"strconv"

	"github.com/nikbrowser/nikbrowser/internal/client/models"
)

const mailListLimit = 50

func parseID(args []string) (int64, bool) {
	if len(args) < 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	return id, err == nil && id > 0
}

// Inbox lists a mail folder: inbox (default), starred, archived or all.
func (a *App) Inbox(ctx context.Context, args []string) error {
	folder := models.FolderInbox
	if len(args) > 0 {
		folder = models.ParseMailFolder(args[0])
	}

	emails, err := a.mail.List(ctx, folder, mailListLimit)
	if err != nil {
		return a.report(err)
	}
	if len(emails) == 0 {
		a.println("No messages in", folder)
		return nil
	}
	for _, e := range emails {
		flags := "  "
		if !e.IsRead {
			flags = "* "
		}
		if e.IsStarred {
			flags = flags[:1] + "★"
		}
		a.printf("%s %4d  %-28s %s\n", flags, e.ID, e.FromEmail, e.Subject)
	}
	return nil
}

func (a *App) SendMail(ctx context.Context) error {
	to, err := getSimpleText(a.reader, "To", a.out)
	if err != nil {
		return err
	}
	subject, err := getSimpleText(a.reader, "Subject", a.out)
	if err != nil {
		return err
	}
	body, err := getMultiline(a.reader, "Message", a.out)
	if err != nil {
		return err
	}

	if _, err := a.mail.Send(ctx, models.OutgoingEmail{ToEmail: to, Subject: subject, Body: body}); err != nil {
		return a.report(err)
	}
	a.println("Message sent.")
	return nil
}

// ReadMail prints a message from the inbox listing and marks it read.
func (a *App) ReadMail(ctx context.Context, args []string) error {
	id, ok := parseID(args)
	if !ok {
		a.println("Usage: read <id>")
		return nil
	}

	emails, err := a.mail.List(ctx, models.FolderAll, mailListLimit)
	if err != nil {
		return a.report(err)
	}
	for _, e := range emails {
		if e.ID != id {
			continue
		}
		from := e.FromEmail
		if e.FromName != nil {
			from = *e.FromName + " <" + e.FromEmail + ">"
		}
		a.printf("From: %s\nDate: %s\nSubject: %s\n\n%s\n", from, e.CreatedAt, e.Subject, e.Body)
		if !e.IsRead {
			if err := a.mail.MarkRead(ctx, id); err != nil {
				return a.report(err)
			}
		}
		return nil
	}
	a.println("No such message.")
	return nil
}

func (a *App) StarMail(ctx context.Context, args []string) error {
	id, ok := parseID(args)
	if !ok {
		a.println("Usage: star <id>")
		return nil
	}
	starred, err := a.mail.ToggleStar(ctx, id)
	if err != nil {
		return a.report(err)
	}
	if starred {
		a.println("Starred.")
	} else {
		a.println("Unstarred.")
	}
	return nil
}

func (a *App) ArchiveMail(ctx context.Context, args []string) error {
	id, ok := parseID(args)
	if !ok {
		a.println("Usage: archive <id>")
		return nil
	}
	if err := a.mail.Archive(ctx, id); err != nil {
		return a.report(err)
	}
	a.println("Archived.")
	return nil
}
