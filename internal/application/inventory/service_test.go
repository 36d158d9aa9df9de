package inventory

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/errors"
	"github.com/pantrysense/v2/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type InventoryServiceTestSuite struct {
	suite.Suite
	feed     *testutils.FakeFeed
	readings *testutils.MockReadingRepository
	events   *testutils.RecordingDispatcher
	service  *Service
}

func (s *InventoryServiceTestSuite) SetupTest() {
	s.feed = &testutils.FakeFeed{}
	s.readings = &testutils.MockReadingRepository{}
	s.events = testutils.NewRecordingDispatcher()
	s.service = NewService(Config{}, s.feed, s.readings, s.events, zaptest.NewLogger(s.T()))
}

func reading(weight float64) *inventory.SensorReading {
	return &inventory.SensorReading{Distance: 10, Weight: weight, FoodLevel: 70, Timestamp: time.Now().UnixMilli(), Interval: 5000}
}

func (s *InventoryServiceTestSuite) TestCurrent_BeforeFirstPayload() {
	_, err := s.service.Current()
	s.Require().Error(err)
	s.Equal(errors.CodeFeedUnavailable, errors.GetCode(err))
	s.ErrorIs(err, inventory.ErrNoSnapshot)
}

func (s *InventoryServiceTestSuite) TestApply_BuildsSnapshotAndRecords() {
	s.readings.On("Record", mock.Anything, "1", mock.Anything).Return(nil)

	s.service.Apply(context.Background(), outbound.FeedEvent{Reading: reading(850)})

	view, err := s.service.Query(inventory.Filter{})
	s.Require().NoError(err)
	s.Len(view.Items, 8)
	s.Equal(inventory.Counts{Total: 8, LowStock: 2, Categories: 5}, view.Counts)
	s.Len(view.Groups, 5)

	s.Len(s.events.Named(inventory.EventSnapshotReplaced), 1)
	s.Len(s.events.Named(inventory.EventLowStockChanged), 1)
	s.readings.AssertCalled(s.T(), "Record", mock.Anything, "1", mock.Anything)
}

func (s *InventoryServiceTestSuite) TestApply_LowStockEventOnlyOnChange() {
	s.readings.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	s.service.Apply(context.Background(), outbound.FeedEvent{Reading: reading(850)})
	s.service.Apply(context.Background(), outbound.FeedEvent{Reading: reading(800)})
	s.Len(s.events.Named(inventory.EventLowStockChanged), 1)

	s.service.Apply(context.Background(), outbound.FeedEvent{Reading: reading(100)})
	changes := s.events.Named(inventory.EventLowStockChanged)
	s.Require().Len(changes, 2)
	last := changes[1].(inventory.LowStockChangedEvent)
	s.Equal([]string{"1", "3", "6"}, inventory.IDs(last.Items))

	s.Len(s.events.Named(inventory.EventSnapshotReplaced), 3)
}

func (s *InventoryServiceTestSuite) TestApply_NoDataClearsSnapshot() {
	s.readings.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	s.service.Apply(context.Background(), outbound.FeedEvent{Reading: reading(850)})
	s.service.Apply(context.Background(), outbound.FeedEvent{})

	_, err := s.service.Current()
	s.Require().Error(err)
	var appErr *errors.AppError
	s.Require().True(stderrors.As(err, &appErr))
	s.Equal("No data available", appErr.Message)
	s.Nil(s.service.Names())

	failed := s.events.Named(inventory.EventFeedFailed)
	s.Require().Len(failed, 1)
	s.Equal("No data available", failed[0].(inventory.FeedFailedEvent).Reason)
}

func (s *InventoryServiceTestSuite) TestApply_TransportErrorMessage() {
	s.service.Apply(context.Background(), outbound.FeedEvent{Err: stderrors.New("permission denied")})

	_, err := s.service.LowStock()
	var appErr *errors.AppError
	s.Require().True(stderrors.As(err, &appErr))
	s.Equal("permission denied", appErr.Message)
	s.readings.AssertNotCalled(s.T(), "Record", mock.Anything, mock.Anything, mock.Anything)
}

func (s *InventoryServiceTestSuite) TestRecordFailureIsNotFatal() {
	s.readings.On("Record", mock.Anything, "1", mock.Anything).Return(stderrors.New("disk full"))

	s.service.Apply(context.Background(), outbound.FeedEvent{Reading: reading(850)})

	names := s.service.Names()
	s.Len(names, 8)
	s.Equal("Rice", names[0])
}

func (s *InventoryServiceTestSuite) TestItemAndCategories() {
	s.readings.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.service.Apply(context.Background(), outbound.FeedEvent{Reading: reading(850)})

	item, err := s.service.Item("3")
	s.Require().NoError(err)
	s.Equal("Onions", item.Name)
	s.True(item.IsLow)

	_, err = s.service.Item("99")
	s.Equal(errors.CodeItemNotFound, errors.GetCode(err))

	categories, err := s.service.Categories()
	s.Require().NoError(err)
	s.Equal([]string{"Grains", "Vegetables", "Meat", "Spices", "Dairy"}, categories)

	low, err := s.service.LowStock()
	s.Require().NoError(err)
	s.Equal([]string{"Onions", "Garlic"}, inventory.Names(low))
}

func (s *InventoryServiceTestSuite) TestQuery_Filters() {
	s.readings.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.service.Apply(context.Background(), outbound.FeedEvent{Reading: reading(850)})

	view, err := s.service.Query(inventory.Filter{Search: "ON"})
	s.Require().NoError(err)
	s.Equal([]string{"Onions"}, inventory.Names(view.Items))

	view, err = s.service.Query(inventory.Filter{Category: "Spices"})
	s.Require().NoError(err)
	s.Equal(2, view.Counts.Total)
	s.Equal(1, view.Counts.LowStock)
}

func (s *InventoryServiceTestSuite) TestValidateThreshold() {
	s.readings.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.service.Apply(context.Background(), outbound.FeedEvent{Reading: reading(850)})

	check, err := s.service.ValidateThreshold("1", "250")
	s.Require().NoError(err)
	s.Equal(&inbound.ThresholdCheck{ItemID: "1", Threshold: 250, Applied: false}, check)

	// the threshold of the item itself is untouched
	item, err := s.service.Item("1")
	s.Require().NoError(err)
	s.Equal(500.0, item.Threshold)

	_, err = s.service.ValidateThreshold("1", "-5")
	s.Equal(errors.CodeValidationFailed, errors.GetCode(err))

	_, err = s.service.ValidateThreshold("99", "10")
	s.Equal(errors.CodeItemNotFound, errors.GetCode(err))
}

func (s *InventoryServiceTestSuite) TestStartConsumesSubscription() {
	s.readings.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	s.Require().NoError(s.service.Start(ctx))
	s.Require().NoError(s.service.Start(ctx))
	s.Require().Len(s.feed.Subscriptions(), 1)
	s.Equal(inventory.DefaultChannel, s.feed.Subscriptions()[0].Channel)

	s.feed.Push(outbound.FeedEvent{Reading: reading(850)})
	s.Eventually(func() bool {
		_, err := s.service.Current()
		return err == nil
	}, time.Second, 10*time.Millisecond)

	s.Require().NoError(s.service.Stop(ctx))
	s.True(s.feed.Subscriptions()[0].Closed())
	s.NoError(s.service.Stop(ctx))
}

func (s *InventoryServiceTestSuite) TestStart_SubscribeFailure() {
	s.feed.SubscribeErr = stderrors.New("unreachable")

	err := s.service.Start(context.Background())
	s.Equal(errors.CodeFeedUnavailable, errors.GetCode(err))
}

func (s *InventoryServiceTestSuite) TestWatch() {
	s.readings.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.service.Apply(context.Background(), outbound.FeedEvent{Reading: reading(850)})

	ctx, cancel := context.WithCancel(context.Background())
	updates := s.service.Watch(ctx)

	first := <-updates
	s.Len(first.Items, 8)
	s.Empty(first.Error)

	s.service.Apply(context.Background(), outbound.FeedEvent{Err: stderrors.New("socket closed")})
	second := <-updates
	s.Empty(second.Items)
	s.Equal("socket closed", second.Error)

	cancel()
	s.Eventually(func() bool {
		_, open := <-updates
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestInventoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(Config{}, &testutils.FakeFeed{}, nil, nil, zaptest.NewLogger(t))

	assert.Equal(t, inventory.DefaultChannel, svc.channel)
	assert.Equal(t, "1", svc.liveID)

	// neither readings nor events are required
	svc.Apply(context.Background(), outbound.FeedEvent{Reading: reading(850)})
	_, err := svc.Current()
	require.NoError(t, err)
}
