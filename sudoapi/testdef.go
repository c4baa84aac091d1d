package sudoapi

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/codebench-edu/codebench"
	"github.com/codebench-edu/codebench/archive"
	"github.com/google/uuid"
)

// ActivityTestingMode derives how the activity's submissions are graded
// from the test definitions it owns. The two modalities are mutually
// exclusive at creation time, so at most one of them can be populated.
func (s *BaseAPI) ActivityTestingMode(ctx context.Context, activityID int) (codebench.TestingMode, *StatusError) {
	suite, err := s.db.UnitTestSuite(ctx, activityID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch unit-test suite", slog.Any("err", err))
		return codebench.ModeUntested, ErrUnknownError
	}
	if suite != nil {
		return codebench.ModeUnit, nil
	}

	tests, err := s.db.IOTests(ctx, activityID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch IO tests", slog.Any("err", err))
		return codebench.ModeUntested, ErrUnknownError
	}
	if len(tests) > 0 {
		return codebench.ModeIO, nil
	}
	return codebench.ModeUntested, nil
}

func (s *BaseAPI) IOTests(ctx context.Context, activityID int) ([]*codebench.IOTest, *StatusError) {
	tests, err := s.db.IOTests(ctx, activityID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch IO tests", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	return tests, nil
}

// CreateIOTest adds an IO test case at the end of the activity's ordering.
// An activity that already owns a unit-test suite can't also be IO-tested.
func (s *BaseAPI) CreateIOTest(ctx context.Context, test *codebench.IOTest) *StatusError {
	suite, err := s.db.UnitTestSuite(ctx, test.ActivityID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't check for unit-test suite", slog.Any("err", err))
		return ErrUnknownError
	}
	if suite != nil {
		return Statusf(409, "Activity is unit-tested, can't add IO tests")
	}

	if err := s.db.CreateIOTest(ctx, test); err != nil {
		if errors.Is(err, codebench.ErrMissingRequired) {
			return ErrMissingRequired
		}
		slog.WarnContext(ctx, "Couldn't create IO test", slog.Any("err", err))
		return ErrUnknownError
	}
	return nil
}

func (s *BaseAPI) UpdateIOTest(ctx context.Context, id int, upd codebench.IOTestUpdate) *StatusError {
	if err := s.db.UpdateIOTest(ctx, id, upd); err != nil {
		if errors.Is(err, codebench.ErrNoUpdates) {
			return ErrNoUpdates
		}
		slog.WarnContext(ctx, "Couldn't update IO test", slog.Any("err", err))
		return ErrUnknownError
	}
	return nil
}

func (s *BaseAPI) DeleteIOTest(ctx context.Context, id int) *StatusError {
	if err := s.db.DeleteIOTest(ctx, id); err != nil {
		slog.WarnContext(ctx, "Couldn't delete IO test", slog.Any("err", err))
		return ErrUnknownError
	}
	return nil
}

// CloneIOTest copies the test under the target activity, subject to the
// same mutual-exclusion rule as creation.
func (s *BaseAPI) CloneIOTest(ctx context.Context, id, targetActivityID int) (*codebench.IOTest, *StatusError) {
	suite, err := s.db.UnitTestSuite(ctx, targetActivityID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't check for unit-test suite", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	if suite != nil {
		return nil, Statusf(409, "Target activity is unit-tested, can't add IO tests")
	}

	newID, err := s.db.CloneIOTest(ctx, id, targetActivityID)
	if err != nil {
		if errors.Is(err, codebench.ErrNotFound) {
			return nil, ErrNotFound
		}
		slog.WarnContext(ctx, "Couldn't clone IO test", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	test, err := s.db.IOTest(ctx, newID)
	if err != nil || test == nil {
		return nil, ErrUnknownError
	}
	return test, nil
}

func (s *BaseAPI) UnitTestSuite(ctx context.Context, activityID int) (*codebench.UnitTestSuite, *StatusError) {
	suite, err := s.db.UnitTestSuite(ctx, activityID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch unit-test suite", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	if suite == nil {
		return nil, Statusf(404, "Activity has no unit-test suite")
	}
	return suite, nil
}

// CreateUnitTestSuite packs and stores the suite archive, then persists the
// row. Conflicts both ways: an IO-tested activity can't gain a suite, and an
// activity can own at most one suite (the latter enforced by the DB).
func (s *BaseAPI) CreateUnitTestSuite(ctx context.Context, activityID int, files map[string]string, manifest archive.Manifest) (*codebench.UnitTestSuite, *StatusError) {
	tests, err := s.db.IOTests(ctx, activityID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch IO tests", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	if len(tests) > 0 {
		return nil, Statusf(409, "Activity is IO-tested, can't add a unit-test suite")
	}

	key, serr := s.storeSuiteArchive(ctx, files, manifest)
	if serr != nil {
		return nil, serr
	}

	suite, err := s.db.CreateUnitTestSuite(ctx, activityID, key)
	if err != nil {
		// Roll the orphaned blob back; the row was never created.
		if rmErr := s.suiteBucket.RemoveFile(key); rmErr != nil {
			slog.WarnContext(ctx, "Couldn't remove orphaned suite archive", slog.Any("err", rmErr))
		}
		if errors.Is(err, codebench.ErrSuiteExists) {
			return nil, codebench.ErrSuiteExists
		}
		slog.WarnContext(ctx, "Couldn't create unit-test suite", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	return suite, nil
}

// UpdateUnitTestSuite replaces the suite's archive contents.
func (s *BaseAPI) UpdateUnitTestSuite(ctx context.Context, activityID int, files map[string]string, manifest archive.Manifest) (*codebench.UnitTestSuite, *StatusError) {
	suite, serr := s.UnitTestSuite(ctx, activityID)
	if serr != nil {
		return nil, serr
	}

	key, serr := s.storeSuiteArchive(ctx, files, manifest)
	if serr != nil {
		return nil, serr
	}
	if err := s.db.UpdateUnitTestSuiteArchive(ctx, suite.ID, key); err != nil {
		slog.WarnContext(ctx, "Couldn't update unit-test suite", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	if err := s.suiteBucket.RemoveFile(suite.ArchiveKey); err != nil {
		slog.WarnContext(ctx, "Couldn't remove replaced suite archive", slog.Any("err", err))
	}
	suite.ArchiveKey = key
	return suite, nil
}

// CloneUnitTestSuite duplicates the suite (row and archive blob) under
// another activity.
func (s *BaseAPI) CloneUnitTestSuite(ctx context.Context, activityID, targetActivityID int) (*codebench.UnitTestSuite, *StatusError) {
	suite, serr := s.UnitTestSuite(ctx, activityID)
	if serr != nil {
		return nil, serr
	}
	tests, err := s.db.IOTests(ctx, targetActivityID)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't fetch IO tests", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	if len(tests) > 0 {
		return nil, Statusf(409, "Target activity is IO-tested, can't add a unit-test suite")
	}

	key := uuid.NewString() + ".tar.gz"
	if err := s.suiteBucket.Copy(suite.ArchiveKey, key); err != nil {
		slog.WarnContext(ctx, "Couldn't copy suite archive", slog.Any("err", err))
		return nil, ErrUnknownError
	}

	clone, err := s.db.CreateUnitTestSuite(ctx, targetActivityID, key)
	if err != nil {
		if rmErr := s.suiteBucket.RemoveFile(key); rmErr != nil {
			slog.WarnContext(ctx, "Couldn't remove orphaned suite archive", slog.Any("err", rmErr))
		}
		if errors.Is(err, codebench.ErrSuiteExists) {
			return nil, codebench.ErrSuiteExists
		}
		slog.WarnContext(ctx, "Couldn't clone unit-test suite", slog.Any("err", err))
		return nil, ErrUnknownError
	}
	return clone, nil
}

// SuiteFiles unpacks a suite's archive.
func (s *BaseAPI) SuiteFiles(ctx context.Context, suite *codebench.UnitTestSuite) (map[string]string, archive.Manifest, *StatusError) {
	blob, err := s.suiteBucket.ReadBlob(suite.ArchiveKey)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't read suite archive", slog.Any("err", err))
		return nil, nil, WrapError(err, "Couldn't read suite archive")
	}
	files, manifest, err := archive.UnpackBytes(blob)
	if err != nil {
		return nil, nil, WrapError(err, "Couldn't unpack suite archive")
	}
	return files, manifest, nil
}

func (s *BaseAPI) storeSuiteArchive(ctx context.Context, files map[string]string, manifest archive.Manifest) (string, *StatusError) {
	if len(files) == 0 {
		return "", ErrMissingRequired
	}
	blob, err := archive.PackBytes(files, manifest)
	if err != nil {
		return "", WrapError(err, "Couldn't pack suite archive")
	}
	key := uuid.NewString() + ".tar.gz"
	if err := s.suiteBucket.WriteFile(key, bytes.NewReader(blob), 0644); err != nil {
		slog.WarnContext(ctx, "Couldn't store suite archive", slog.Any("err", err))
		return "", ErrUnknownError
	}
	return key, nil
}
