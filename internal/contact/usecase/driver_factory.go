package usecase

import (
	"context"
	"fmt"
	"log"

	authdomain "touchbase-backend/internal/auth/domain"
	authrepo "touchbase-backend/internal/auth/repository"
	"touchbase-backend/internal/contact/domain"
	"touchbase-backend/pkg/config"
	"touchbase-backend/pkg/crypto"
	"touchbase-backend/pkg/gmail"
	"touchbase-backend/pkg/imap"

	"golang.org/x/oauth2"
)

// DriverFactory resolves the mail driver matching a user's provider. A nil
// driver with a nil error means the user has no mail account wired up and the
// sync should degrade to empty results.
type DriverFactory interface {
	DriverFor(ctx context.Context, user *authdomain.User) (domain.MailDriver, error)
}

type mailDriverFactory struct {
	cfg      *config.Config
	userRepo authrepo.UserRepository
}

func NewMailDriverFactory(cfg *config.Config, userRepo authrepo.UserRepository) DriverFactory {
	return &mailDriverFactory{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

func (f *mailDriverFactory) DriverFor(ctx context.Context, user *authdomain.User) (domain.MailDriver, error) {
	switch user.Provider {
	case "google":
		if user.AccessToken == "" && user.RefreshToken == "" {
			return nil, nil
		}
		return gmail.NewDriver(ctx, gmail.Credentials{
			ClientID:     f.cfg.GoogleClientID,
			ClientSecret: f.cfg.GoogleClientSecret,
			AccessToken:  user.AccessToken,
			RefreshToken: user.RefreshToken,
			Expiry:       user.TokenExpiry,
		}, f.makeTokenUpdateCallback(user.ID))

	case "imap":
		if user.ImapServer == "" {
			return nil, nil
		}
		password, err := crypto.Decrypt(user.ImapPassword, f.cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt imap password: %w", err)
		}
		return imap.NewDriver(user.ImapServer, user.ImapPort, user.Email, password), nil

	default:
		// Email-only accounts have no mailbox to sync from
		return nil, nil
	}
}

// makeTokenUpdateCallback persists refreshed OAuth tokens so the next sync
// does not redo the refresh round-trip.
func (f *mailDriverFactory) makeTokenUpdateCallback(userID string) domain.TokenUpdateFunc {
	return func(token *oauth2.Token) error {
		user, err := f.userRepo.FindByID(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}

		user.AccessToken = token.AccessToken
		if token.RefreshToken != "" {
			user.RefreshToken = token.RefreshToken
		}
		user.TokenExpiry = token.Expiry

		if err := f.userRepo.Update(user); err != nil {
			log.Printf("[DriverFactory] failed to persist refreshed token for user %s: %v", userID, err)
			return err
		}
		return nil
	}
}
