package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"coinquest/internal/platform/logger"
	"coinquest/internal/systemlog/models"
	"coinquest/internal/systemlog/store"
	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/requestcontext"
)

type recordingFanout struct {
	entries []*models.Entry
}

func (f *recordingFanout) Enqueue(entry *models.Entry) bool {
	f.entries = append(f.entries, entry)
	return true
}

type failingStore struct{}

func (failingStore) Append(context.Context, *models.Entry) error {
	return errors.New("db down")
}

func (failingStore) List(context.Context, int, int) ([]*models.Entry, error) {
	return nil, errors.New("db down")
}

type SystemLogServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	fanout  *recordingFanout
	service *Service
	now     time.Time
	ctx     context.Context
}

func TestSystemLogServiceSuite(t *testing.T) {
	suite.Run(t, new(SystemLogServiceSuite))
}

func (s *SystemLogServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.fanout = &recordingFanout{}
	svc, err := New(s.store, WithFanout(s.fanout), WithLogger(logger.Discard()))
	s.Require().NoError(err)
	s.service = svc
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *SystemLogServiceSuite) TestRecordStoresAndFansOut() {
	userID := id.UserID(uuid.New())
	err := s.service.Record(s.ctx, models.Event{
		Level:     models.LevelInfo,
		Component: "auth",
		Message:   "user registered",
		UserID:    &userID,
	})
	s.Require().NoError(err)

	entries, err := s.service.List(s.ctx, 0, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("user registered", entries[0].Message)
	s.Equal(s.now, entries[0].Timestamp)
	s.Equal(&userID, entries[0].UserID)
	s.Require().Len(s.fanout.entries, 1)
	s.Equal(entries[0].ID, s.fanout.entries[0].ID)
}

func (s *SystemLogServiceSuite) TestRecordRejectsEmptyMessage() {
	err := s.service.Record(s.ctx, models.Event{Message: ""})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Empty(s.fanout.entries)
}

func (s *SystemLogServiceSuite) TestListValidatesWindow() {
	_, err := s.service.List(s.ctx, -1, 10)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.List(s.ctx, 0, 0)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.List(s.ctx, 0, MaxLimit+1)
	s.Require().Error(err)
	de, ok := dErrors.From(err)
	s.Require().True(ok)
	s.Equal("Limit cannot exceed 1000", de.Message)
}

func (s *SystemLogServiceSuite) TestListNewestFirst() {
	for i := range 3 {
		ctx := requestcontext.WithTime(context.Background(), s.now.Add(time.Duration(i)*time.Hour))
		s.Require().NoError(s.service.Record(ctx, models.Event{Message: "tick"}))
	}
	entries, err := s.service.List(s.ctx, 0, 2)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(s.now.Add(2*time.Hour), entries[0].Timestamp)
}

func (s *SystemLogServiceSuite) TestReportPanicRecordsErrorEntry() {
	userID := id.UserID(uuid.New())
	ctx := requestcontext.WithRequestID(s.ctx, "req-1")
	ctx = requestcontext.WithPrincipal(ctx, requestcontext.Principal{UserID: userID})

	s.service.ReportPanic(ctx, "boom")

	entries, err := s.service.List(s.ctx, 0, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(models.LevelError, entries[0].Level)
	s.Require().NotNil(entries[0].Details)
	s.Contains(*entries[0].Details, "boom")
	s.Contains(*entries[0].Details, "req-1")
	s.Equal(&userID, entries[0].UserID)
}

func TestStoreFailuresAreInternal(t *testing.T) {
	svc, err := New(failingStore{})
	require.NoError(t, err)

	err = svc.Record(context.Background(), models.Event{Message: "x"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	_, err = svc.List(context.Background(), 0, 10)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
