package workflows_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/mocks"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
	"github.com/buxdao/nft-ownership-sync/internal/workflows"
)

// NotificationWorkflowTestSuite is the test suite for notification workflow tests
type NotificationWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env        *testsuite.TestWorkflowEnvironment
	ctrl       *gomock.Controller
	executor   *mocks.MockCoreExecutor
	workerCore workflows.WorkerCore
}

// SetupTest is called before each test
func (s *NotificationWorkflowTestSuite) SetupTest() {
	_ = logger.Initialize(logger.Config{
		Debug: true,
	})

	s.env = s.NewTestWorkflowEnvironment()
	s.ctrl = gomock.NewController(s.T())
	s.executor = mocks.NewMockCoreExecutor(s.ctrl)
	s.workerCore = workflows.NewWorkerCore(s.executor, workflows.WorkerCoreConfig{
		MaxDeliveryAttempts:  3,
		RetryInitialInterval: time.Second,
		RetryMaximumInterval: 10 * time.Second,
	})
}

// TearDownTest is called after each test
func (s *NotificationWorkflowTestSuite) TearDownTest() {
	s.env.AssertExpectations(s.T())
	s.ctrl.Finish()
}

// TestNotificationWorkflowTestSuite runs the test suite
func TestNotificationWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationWorkflowTestSuite))
}

func (s *NotificationWorkflowTestSuite) TestDeliverNotification_Success() {
	s.env.OnActivity(s.executor.DeliverNotification, mock.Anything, uint64(42)).
		Return(schema.OutboxStatusSent, nil).Once()

	s.env.ExecuteWorkflow(s.workerCore.DeliverNotification, uint64(42))

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *NotificationWorkflowTestSuite) TestDeliverNotification_RetriesThenSucceeds() {
	s.env.OnActivity(s.executor.DeliverNotification, mock.Anything, uint64(7)).
		Return(schema.OutboxStatusProcessing, errors.New("discord returned 502")).Once()
	s.env.OnActivity(s.executor.DeliverNotification, mock.Anything, uint64(7)).
		Return(schema.OutboxStatusSent, nil).Once()

	s.env.ExecuteWorkflow(s.workerCore.DeliverNotification, uint64(7))

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *NotificationWorkflowTestSuite) TestDeliverNotification_StopsAtMaximumAttempts() {
	s.env.OnActivity(s.executor.DeliverNotification, mock.Anything, uint64(7)).
		Return(schema.OutboxStatusProcessing, errors.New("discord returned 502")).Times(3)

	s.env.ExecuteWorkflow(s.workerCore.DeliverNotification, uint64(7))

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func (s *NotificationWorkflowTestSuite) TestDeliverNotification_ExhaustedIsNotRetried() {
	exhausted := temporal.NewNonRetryableApplicationError("outbox entry 9 failed after 5 attempts",
		workflows.ERR_DELIVERY_EXHAUSTED, errors.New("discord returned 403"))
	s.env.OnActivity(s.executor.DeliverNotification, mock.Anything, uint64(9)).
		Return(schema.OutboxStatusFailed, exhausted).Once()

	s.env.ExecuteWorkflow(s.workerCore.DeliverNotification, uint64(9))

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Error(err)

	var appErr *temporal.ApplicationError
	s.True(errors.As(err, &appErr))
	s.Equal(workflows.ERR_DELIVERY_EXHAUSTED, appErr.Type())
}

func (s *NotificationWorkflowTestSuite) TestNotificationWorkflowID() {
	s.Equal("nft-notification-42", workflows.NotificationWorkflowID(42))
}
