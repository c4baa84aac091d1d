package sudoapi

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/codebench-edu/codebench"
	"github.com/codebench-edu/codebench/datastore"
	"github.com/codebench-edu/codebench/db"
	"github.com/codebench-edu/codebench/dispatch"
	"github.com/codebench-edu/codebench/internal/config"
)

// Dispatcher enqueues a submission for out-of-process execution.
type Dispatcher interface {
	Dispatch(ctx context.Context, submissionID int, language string) error
}

// Store is the persistence surface the service layer runs on. *db.DB is the
// production implementation; tests substitute an in-memory fake.
type Store interface {
	Close() error

	Submission(ctx context.Context, id int) (*codebench.Submission, error)
	Submissions(ctx context.Context, filter codebench.SubmissionFilter) ([]*codebench.Submission, error)
	CreateSubmission(ctx context.Context, activityID, userID int, archiveKey string) (*codebench.Submission, error)
	UpdateSubmission(ctx context.Context, id int, upd codebench.SubmissionUpdate) error
	MarkFinalSubmission(ctx context.Context, activityID, userID, subID int) error
	FinalSubmission(ctx context.Context, activityID, userID int) (*codebench.Submission, error)

	Activity(ctx context.Context, id int) (*codebench.Activity, error)
	Activities(ctx context.Context, ids []int) ([]*codebench.Activity, error)

	IOTests(ctx context.Context, activityID int) ([]*codebench.IOTest, error)
	IOTest(ctx context.Context, id int) (*codebench.IOTest, error)
	CreateIOTest(ctx context.Context, test *codebench.IOTest) error
	UpdateIOTest(ctx context.Context, id int, upd codebench.IOTestUpdate) error
	DeleteIOTest(ctx context.Context, id int) error
	CloneIOTest(ctx context.Context, id int, targetActivityID int) (int, error)

	UnitTestSuite(ctx context.Context, activityID int) (*codebench.UnitTestSuite, error)
	CreateUnitTestSuite(ctx context.Context, activityID int, archiveKey string) (*codebench.UnitTestSuite, error)
	UpdateUnitTestSuiteArchive(ctx context.Context, id int, archiveKey string) error

	CreateExecutionLog(ctx context.Context, log *codebench.ExecutionLog) error
	ExecutionLogsBySubmission(ctx context.Context, subID int) ([]*codebench.ExecutionLog, error)
	CreateIOTestRuns(ctx context.Context, logID int, runs []*codebench.IOTestRun) error
	CreateUnitTestRuns(ctx context.Context, logID int, runs []*codebench.UnitTestRun) error
	IOTestRuns(ctx context.Context, logID int) ([]*codebench.IOTestRun, error)
	UnitTestRuns(ctx context.Context, logID int) ([]*codebench.UnitTestRun, error)
}

var _ Store = (*db.DB)(nil)

type BaseAPI struct {
	db  Store
	mgr *datastore.Manager

	dispatcher Dispatcher

	solutionBucket *datastore.Bucket
	suiteBucket    *datastore.Bucket
}

func GetBaseAPI(db Store, mgr *datastore.Manager, dispatcher Dispatcher) *BaseAPI {
	return &BaseAPI{
		db:  db,
		mgr: mgr,

		dispatcher: dispatcher,

		solutionBucket: mgr.Solutions(),
		suiteBucket:    mgr.Suites(),
	}
}

func (s *BaseAPI) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("couldn't close DB: %w", err)
	}
	if closer, ok := s.dispatcher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("couldn't close dispatcher: %w", err)
		}
	}
	return nil
}

func InitializeBaseAPI(ctx context.Context) (*BaseAPI, error) {
	// Data directory setup
	if !path.IsAbs(config.C.Common.DataDir) {
		return nil, Statusf(400, "data_dir is not absolute")
	}
	if err := os.MkdirAll(config.C.Common.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("couldn't create data dir: %w", err)
	}

	mgr, err := datastore.New(config.C.Common.DataDir)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize data store: %w", err)
	}

	dbClient, err := db.NewPSQL(ctx, config.C.Database.String())
	if err != nil {
		return nil, fmt.Errorf("couldn't connect to DB: %w", err)
	}
	slog.InfoContext(ctx, "Connected to DB")

	pub := dispatch.NewPublisher(config.C.Queue.URL, config.C.Queue.Name)
	if v := config.C.Queue.ConnectRetries; v > 0 {
		pub.ConnectRetries = v
	}
	if v := config.C.Queue.RetryDelay(); v > 0 {
		pub.RetryDelay = v
	}

	return GetBaseAPI(dbClient, mgr, pub), nil
}
