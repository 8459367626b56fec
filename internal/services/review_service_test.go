package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/finlearn/finflash/internal/errors"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
	"github.com/finlearn/finflash/internal/srs"
	"github.com/finlearn/finflash/internal/testutil/mocks"
)

var reviewNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestReviewService(schedules *mocks.MockScheduleStore, cards *mocks.MockCardRepository, logs *mocks.MockReviewLogRepository) *reviewService {
	return &reviewService{
		schedules: schedules,
		cards:     cards,
		logs:      logs,
		now:       func() time.Time { return reviewNow },
	}
}

func TestQueueOrdersOverdueFirst(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	cards := new(mocks.MockCardRepository)
	logs := new(mocks.MockReviewLogRepository)
	svc := newTestReviewService(schedules, cards, logs)

	day := 24 * time.Hour
	cardList := []models.Card{
		{ID: 1, DeckID: 1, Front: "What is compound interest?", Back: "Interest on interest"},
		{ID: 2, DeckID: 1, Front: "What is an emergency fund?", Back: "3-6 months of expenses"},
		{ID: 3, DeckID: 1, Front: "What is a credit score?", Back: "A lending risk number"},
	}
	scheduleList := []models.CardSchedule{
		{ID: 1, LearnerID: 7, CardID: 1, EaseFactor: 2.5, DueAt: reviewNow.Add(2 * day), Version: 1},  // upcoming
		{ID: 2, LearnerID: 7, CardID: 2, EaseFactor: 2.5, DueAt: reviewNow.Add(-3 * day), Version: 1}, // most overdue
		{ID: 3, LearnerID: 7, CardID: 3, EaseFactor: 2.5, DueAt: reviewNow.Add(-1 * day), Version: 1}, // overdue
	}

	cards.On("List", ctx, models.CardFilter{}).Return(cardList, nil)
	schedules.On("ListByLearner", ctx, int64(7)).Return(scheduleList, nil)

	queue, err := svc.Queue(ctx, 7, 0)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	assert.Equal(t, int64(2), queue[0].Card.ID)
	assert.Equal(t, int64(3), queue[1].Card.ID)
	assert.Equal(t, int64(1), queue[2].Card.ID)

	// Overdue cards predict lower retention than upcoming ones.
	assert.Less(t, queue[0].Retention, queue[2].Retention)
}

func TestQueueCreatesSchedulesForNewCards(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	cards := new(mocks.MockCardRepository)
	logs := new(mocks.MockReviewLogRepository)
	svc := newTestReviewService(schedules, cards, logs)

	cardList := []models.Card{
		{ID: 1, DeckID: 1, Front: "What is diversification?", Back: "Spreading risk across assets"},
	}
	cards.On("List", ctx, models.CardFilter{}).Return(cardList, nil)
	schedules.On("ListByLearner", ctx, int64(7)).Return([]models.CardSchedule{}, nil)
	schedules.On("Save", ctx, mock.MatchedBy(func(s *models.CardSchedule) bool {
		return s.LearnerID == 7 && s.CardID == 1 && s.Repetitions == 0 && s.DueAt.Equal(reviewNow)
	})).Return(nil)

	queue, err := svc.Queue(ctx, 7, 0)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, int64(1), queue[0].Card.ID)
	schedules.AssertExpectations(t)
}

func TestQueueRespectsLimit(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	cards := new(mocks.MockCardRepository)
	logs := new(mocks.MockReviewLogRepository)
	svc := newTestReviewService(schedules, cards, logs)

	day := 24 * time.Hour
	var cardList []models.Card
	var scheduleList []models.CardSchedule
	for i := int64(1); i <= 5; i++ {
		cardList = append(cardList, models.Card{ID: i, DeckID: 1, Front: "q", Back: "a"})
		scheduleList = append(scheduleList, models.CardSchedule{
			ID: i, LearnerID: 7, CardID: i, EaseFactor: 2.5,
			DueAt: reviewNow.Add(time.Duration(-i) * day), Version: 1,
		})
	}
	cards.On("List", ctx, models.CardFilter{}).Return(cardList, nil)
	schedules.On("ListByLearner", ctx, int64(7)).Return(scheduleList, nil)

	queue, err := svc.Queue(ctx, 7, 2)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	// Most overdue first.
	assert.Equal(t, int64(5), queue[0].Card.ID)
	assert.Equal(t, int64(4), queue[1].Card.ID)
}

func TestQueueEmptyCollection(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	cards := new(mocks.MockCardRepository)
	logs := new(mocks.MockReviewLogRepository)
	svc := newTestReviewService(schedules, cards, logs)

	cards.On("List", ctx, models.CardFilter{}).Return([]models.Card{}, nil)

	queue, err := svc.Queue(ctx, 7, 0)
	require.NoError(t, err)
	assert.Empty(t, queue)
	schedules.AssertNotCalled(t, "ListByLearner", mock.Anything, mock.Anything)
}

func TestNextCardSkipsNotYetDue(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	cards := new(mocks.MockCardRepository)
	logs := new(mocks.MockReviewLogRepository)
	svc := newTestReviewService(schedules, cards, logs)

	day := 24 * time.Hour
	cardList := []models.Card{
		{ID: 1, DeckID: 1, Front: "q1", Back: "a1"},
		{ID: 2, DeckID: 1, Front: "q2", Back: "a2"},
	}
	scheduleList := []models.CardSchedule{
		{ID: 1, LearnerID: 7, CardID: 1, EaseFactor: 2.5, DueAt: reviewNow.Add(2 * day), Version: 1},
		{ID: 2, LearnerID: 7, CardID: 2, EaseFactor: 2.5, DueAt: reviewNow.Add(-1 * day), Version: 1},
	}
	cards.On("List", ctx, models.CardFilter{}).Return(cardList, nil)
	schedules.On("ListByLearner", ctx, int64(7)).Return(scheduleList, nil)

	next, err := svc.NextCard(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, int64(2), next.Card.ID)
}

func TestNextCardNilWhenNothingDue(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	cards := new(mocks.MockCardRepository)
	logs := new(mocks.MockReviewLogRepository)
	svc := newTestReviewService(schedules, cards, logs)

	day := 24 * time.Hour
	cardList := []models.Card{{ID: 1, DeckID: 1, Front: "q", Back: "a"}}
	scheduleList := []models.CardSchedule{
		{ID: 1, LearnerID: 7, CardID: 1, EaseFactor: 2.5, DueAt: reviewNow.Add(3 * day), Version: 1},
	}
	cards.On("List", ctx, models.CardFilter{}).Return(cardList, nil)
	schedules.On("ListByLearner", ctx, int64(7)).Return(scheduleList, nil)

	next, err := svc.NextCard(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestSubmitResponseAppliesReviewAndLogs(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	cards := new(mocks.MockCardRepository)
	logs := new(mocks.MockReviewLogRepository)
	svc := newTestReviewService(schedules, cards, logs)

	card := models.Card{ID: 1, DeckID: 1, Front: "q", Back: "a"}
	existing := models.CardSchedule{
		ID: 5, LearnerID: 7, CardID: 1, EaseFactor: 2.5,
		IntervalDays: 1, Repetitions: 1,
		DueAt: reviewNow, LastReviewedAt: reviewNow.Add(-24 * time.Hour), Version: 1,
	}

	cards.On("Get", ctx, int64(1)).Return(&card, nil)
	schedules.On("Get", ctx, int64(7), int64(1)).Return(&existing, nil)
	schedules.On("Save", ctx, mock.AnythingOfType("*models.CardSchedule")).Return(nil)
	logs.On("Insert", ctx, mock.MatchedBy(func(l models.ReviewLog) bool {
		return l.ScheduleID == 5 && l.Quality == 5 && l.Correct && l.Confidence == 4
	})).Return(int64(1), nil)

	// correct with confidence 4 maps to quality 5
	updated, err := svc.SubmitResponse(ctx, 7, 1, true, 4, 3.2)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 2, updated.Repetitions)
	assert.Equal(t, 6, updated.IntervalDays)
	assert.Equal(t, 5, updated.LastQuality)
	logs.AssertExpectations(t)
}

func TestSubmitResponseRejectsBadConfidence(t *testing.T) {
	svc := newTestReviewService(new(mocks.MockScheduleStore), new(mocks.MockCardRepository), new(mocks.MockReviewLogRepository))

	for _, confidence := range []int{0, 6, -1} {
		_, err := svc.SubmitResponse(context.Background(), 7, 1, true, confidence, 0)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	}
}

func TestSubmitQualityUnknownCard(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	cards := new(mocks.MockCardRepository)
	svc := newTestReviewService(schedules, cards, new(mocks.MockReviewLogRepository))

	cards.On("Get", ctx, int64(99)).Return(nil, nil)

	_, err := svc.SubmitQuality(ctx, 7, 99, 4, 0)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestSubmitQualityFirstReviewInitializesSchedule(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	cards := new(mocks.MockCardRepository)
	logs := new(mocks.MockReviewLogRepository)
	svc := newTestReviewService(schedules, cards, logs)

	card := models.Card{ID: 1, DeckID: 1, Front: "q", Back: "a"}
	cards.On("Get", ctx, int64(1)).Return(&card, nil)
	schedules.On("Get", ctx, int64(7), int64(1)).Return(nil, nil)
	schedules.On("Save", ctx, mock.AnythingOfType("*models.CardSchedule")).Return(nil)
	logs.On("Insert", ctx, mock.Anything).Return(int64(1), nil)

	updated, err := svc.SubmitQuality(ctx, 7, 1, 4, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Repetitions)
	assert.Equal(t, 1, updated.IntervalDays)
	assert.True(t, updated.DueAt.Equal(reviewNow.Add(24*time.Hour)))
}

func TestSubmitQualityVersionConflict(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	cards := new(mocks.MockCardRepository)
	logs := new(mocks.MockReviewLogRepository)
	svc := newTestReviewService(schedules, cards, logs)

	card := models.Card{ID: 1, DeckID: 1, Front: "q", Back: "a"}
	existing := models.CardSchedule{ID: 5, LearnerID: 7, CardID: 1, EaseFactor: 2.5, DueAt: reviewNow, Version: 1}

	cards.On("Get", ctx, int64(1)).Return(&card, nil)
	schedules.On("Get", ctx, int64(7), int64(1)).Return(&existing, nil)
	schedules.On("Save", ctx, mock.Anything).Return(repository.ErrVersionConflict)

	_, err := svc.SubmitQuality(ctx, 7, 1, 4, 0)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	logs.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSubmitQualityLogFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	cards := new(mocks.MockCardRepository)
	logs := new(mocks.MockReviewLogRepository)
	svc := newTestReviewService(schedules, cards, logs)

	card := models.Card{ID: 1, DeckID: 1, Front: "q", Back: "a"}
	existing := models.CardSchedule{ID: 5, LearnerID: 7, CardID: 1, EaseFactor: 2.5, DueAt: reviewNow, Version: 1}

	cards.On("Get", ctx, int64(1)).Return(&card, nil)
	schedules.On("Get", ctx, int64(7), int64(1)).Return(&existing, nil)
	schedules.On("Save", ctx, mock.Anything).Return(nil)
	logs.On("Insert", ctx, mock.Anything).Return(int64(0), errors.New("log table locked"))

	updated, err := svc.SubmitQuality(ctx, 7, 1, 0, 0)
	require.NoError(t, err)
	// Failed review resets progress regardless of the log outcome.
	assert.Equal(t, 0, updated.Repetitions)
	assert.Equal(t, 1, updated.IntervalDays)
}

func TestRetention(t *testing.T) {
	ctx := context.Background()
	schedules := new(mocks.MockScheduleStore)
	svc := newTestReviewService(schedules, new(mocks.MockCardRepository), new(mocks.MockReviewLogRepository))

	schedule := models.CardSchedule{
		ID: 5, LearnerID: 7, CardID: 1, EaseFactor: 2.5,
		DueAt: reviewNow.Add(24 * time.Hour), Version: 1,
	}
	schedules.On("Get", ctx, int64(7), int64(1)).Return(&schedule, nil)

	retention, err := svc.Retention(ctx, 7, 1)
	require.NoError(t, err)
	assert.InDelta(t, srs.PredictRetention(schedule, reviewNow), retention, 0.001)

	schedules.On("Get", ctx, int64(7), int64(2)).Return(nil, nil)
	_, err = svc.Retention(ctx, 7, 2)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
