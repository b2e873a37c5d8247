package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

// MockCaseRepository is a mock implementation of domain.CaseRepository for testing.
type MockCaseRepository struct {
	mu        sync.Mutex
	Cases     []domain.CaseRecord
	ListErr   error
	ListCalls int
	LastSince time.Time
}

func (m *MockCaseRepository) ListActive(ctx context.Context, diseaseType *domain.DiseaseType, since time.Time) ([]domain.CaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	m.LastSince = since
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []domain.CaseRecord
	for _, c := range m.Cases {
		if diseaseType != nil && c.DiseaseType != *diseaseType {
			continue
		}
		if c.Status != domain.CaseStatusActive || c.DiagnosisDate.Before(since) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// MockStatisticRepository is a mock implementation of domain.StatisticRepository.
type MockStatisticRepository struct {
	mu         sync.Mutex
	Statistics []domain.HistoricalStatistic
	ListErr    error
	ListCalls  int
}

func (m *MockStatisticRepository) ListSince(ctx context.Context, since time.Time) ([]domain.HistoricalStatistic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []domain.HistoricalStatistic
	for _, s := range m.Statistics {
		if s.RecordDate.Before(since) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// MockGeographyRepository is a mock implementation of domain.GeographyRepository.
type MockGeographyRepository struct {
	mu        sync.Mutex
	Units     []domain.GeographicUnit
	ListErr   error
	ListCalls int
}

func (m *MockGeographyRepository) ListAll(ctx context.Context) ([]domain.GeographicUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Units, nil
}

// MockAccountRepository is a mock implementation of domain.AccountRepository.
type MockAccountRepository struct {
	mu        sync.Mutex
	Admins    []domain.Account
	ListErr   error
	ListCalls int
}

func (m *MockAccountRepository) ListActiveAdministrators(ctx context.Context) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Admins, nil
}

// MockNotificationRepository is a mock implementation of domain.NotificationRepository.
// It replays the dedup semantics of the real repository against its own
// Inserted slice so scan-twice tests exercise the lookback behavior.
type MockNotificationRepository struct {
	mu        sync.Mutex
	Inserted  []domain.Notification
	ExistsErr error
	InsertErr error
}

func (m *MockNotificationRepository) RecentExists(ctx context.Context, recipientID int64, title string, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	for _, n := range m.Inserted {
		if n.RecipientID == recipientID && n.Title == title && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockNotificationRepository) Insert(ctx context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Inserted = append(m.Inserted, n)
	return nil
}

// Sent returns a copy of the notifications inserted so far.
func (m *MockNotificationRepository) Sent() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, len(m.Inserted))
	copy(out, m.Inserted)
	return out
}
