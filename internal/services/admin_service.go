package services

import (
	"context"
	"log"

	"book-order-service/internal/auth"
	"book-order-service/internal/domain"
)

type Broadcaster interface {
	Broadcast(url *string) int
}

// AdminService gates the privileged operations behind a valid session.
type AdminService struct {
	sessions    *auth.SessionStore
	settings    *SettingService
	orders      *OrderService
	broadcaster Broadcaster
}

func NewAdminService(sessions *auth.SessionStore, settings *SettingService, orders *OrderService, b Broadcaster) *AdminService {
	return &AdminService{
		sessions:    sessions,
		settings:    settings,
		orders:      orders,
		broadcaster: b,
	}
}

func (a *AdminService) Login(username, password string) (auth.Session, error) {
	sess, err := a.sessions.Login(username, password)
	if err != nil {
		log.Printf("Admin login rejected for %q", username)
		return auth.Session{}, err
	}
	log.Printf("Admin %s logged in", sess.Username)
	return sess, nil
}

func (a *AdminService) Logout(sessionID string) {
	a.sessions.Logout(sessionID)
}

func (a *AdminService) Authenticate(sessionID string) (auth.Session, error) {
	return a.sessions.Validate(sessionID)
}

func (a *AdminService) Settings(ctx context.Context, sessionID string) (*domain.AdminSetting, error) {
	if _, err := a.sessions.Validate(sessionID); err != nil {
		return nil, err
	}

	setting, err := a.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		setting = &domain.AdminSetting{}
	}
	return setting, nil
}

// UpdateVideoURL saves the launch video URL and pushes it to every open
// stream. It returns the saved setting and the number of streams reached.
func (a *AdminService) UpdateVideoURL(ctx context.Context, sessionID string, url *string) (*domain.AdminSetting, int, error) {
	if _, err := a.sessions.Validate(sessionID); err != nil {
		return nil, 0, err
	}

	setting, err := a.settings.Save(ctx, url)
	if err != nil {
		return nil, 0, err
	}

	n := a.broadcaster.Broadcast(setting.YoutubeURL)
	log.Printf("Launch video URL updated, pushed to %d connections", n)
	return setting, n, nil
}

func (a *AdminService) AdvanceOrder(ctx context.Context, sessionID, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	if _, err := a.sessions.Validate(sessionID); err != nil {
		return nil, err
	}
	return a.orders.AdvanceStatus(ctx, orderID, to)
}
