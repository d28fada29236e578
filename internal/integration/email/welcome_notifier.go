// Package email provides email sending functionality.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
	"github.com/household-ledger/backend/internal/integration/email/templates"
)

const welcomeTemplate = "welcome"

// welcomeNotifier implements the adapter.WelcomeNotifier interface.
type welcomeNotifier struct {
	sender     Sender
	renderer   *templates.Renderer
	appBaseURL string
}

// NewWelcomeNotifier creates a notifier that emails new users.
func NewWelcomeNotifier(sender Sender, renderer *templates.Renderer, appBaseURL string) adapter.WelcomeNotifier {
	return &welcomeNotifier{
		sender:     sender,
		renderer:   renderer,
		appBaseURL: strings.TrimSuffix(appBaseURL, "/"),
	}
}

// SendWelcome renders and sends the welcome email.
func (n *welcomeNotifier) SendWelcome(ctx context.Context, user *entity.User, group *entity.Group) error {
	data := templates.WelcomeData{
		UserName:   user.DisplayName,
		LedgerName: group.Name,
		AppURL:     n.appBaseURL,
	}

	html, text, err := n.renderer.Render(welcomeTemplate, data)
	if err != nil {
		return domainerror.NewEmailError(domainerror.ErrCodeTemplateRenderFailed, "failed to render welcome email", err)
	}

	id, err := n.sender.Send(ctx, Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Welcome, %s! Your ledger is ready", user.DisplayName),
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Welcome email sent", "user_id", user.ID, "resend_id", id)
	return nil
}

// noopWelcomeNotifier implements the adapter.WelcomeNotifier interface when
// no email provider is configured.
type noopWelcomeNotifier struct{}

// NewNoopWelcomeNotifier creates a notifier that only logs.
func NewNoopWelcomeNotifier() adapter.WelcomeNotifier {
	return noopWelcomeNotifier{}
}

// SendWelcome logs the skipped email.
func (noopWelcomeNotifier) SendWelcome(ctx context.Context, user *entity.User, _ *entity.Group) error {
	slog.DebugContext(ctx, "Welcome email skipped, email provider not configured", "user_id", user.ID)
	return nil
}
