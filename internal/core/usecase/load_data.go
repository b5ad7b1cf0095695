package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/port/usecases_port"
)

type LoadDataUseCase struct {
	files     port.DatasetFileReaderPort
	connector port.DatasetConnectorPort
}

// NewLoadDataUseCase reads CSV files when connector is nil and queries the
// database otherwise.
func NewLoadDataUseCase(files port.DatasetFileReaderPort, connector port.DatasetConnectorPort) *LoadDataUseCase {
	return &LoadDataUseCase{files: files, connector: connector}
}

func (uc *LoadDataUseCase) Execute(ctx context.Context, req usecases_port.LoadDataRequest) (*domain.Dataset, *domain.Dataset, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "LoadData"})

	var (
		train, test *domain.Dataset
		err         error
	)
	if uc.connector == nil {
		ucLogger.Info("Loading datasets from files", port.Fields{"train_path": req.TrainPath, "test_path": req.TestPath})
		train, test, err = uc.fromFiles(ctx, req)
	} else {
		ucLogger.Info("Loading datasets from database", nil)
		train, test, err = uc.fromDatabase(ctx, req)
	}
	if err != nil {
		ucLogger.Error("Failed to load datasets", err, nil)
		return nil, nil, err
	}

	for _, ds := range []*domain.Dataset{train, test} {
		if missing := ds.MissingValues(); len(missing) > 0 {
			ucLogger.Warn("Dataset has missing values", port.Fields{
				"dataset": ds.Name,
				"columns": describeMissing(missing),
			})
		}
	}

	ucLogger.Info("Datasets loaded", port.Fields{"train_rows": train.Len(), "test_rows": test.Len()})
	return train, test, nil
}

func (uc *LoadDataUseCase) fromFiles(ctx context.Context, req usecases_port.LoadDataRequest) (*domain.Dataset, *domain.Dataset, error) {
	if uc.files == nil {
		return nil, nil, fmt.Errorf("%w: no file reader configured", domain.ErrConfiguration)
	}
	if strings.TrimSpace(req.TrainPath) == "" || strings.TrimSpace(req.TestPath) == "" {
		return nil, nil, fmt.Errorf("%w: both train and test paths are required", domain.ErrConfiguration)
	}

	train, err := uc.files.ReadFile(ctx, req.TrainPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load train data: %w", err)
	}
	test, err := uc.files.ReadFile(ctx, req.TestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load test data: %w", err)
	}
	train.Name, test.Name = "train", "test"
	return train, test, nil
}

func (uc *LoadDataUseCase) fromDatabase(ctx context.Context, req usecases_port.LoadDataRequest) (*domain.Dataset, *domain.Dataset, error) {
	if err := uc.connector.Connect(ctx); err != nil {
		return nil, nil, err
	}
	defer uc.connector.Close()

	fetch := func(name, query string) (*domain.Dataset, error) {
		if strings.TrimSpace(query) == "" {
			return domain.NewDataset(name, nil, nil), nil
		}
		ds, err := uc.connector.Fetch(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("load %s data: %w", name, err)
		}
		ds.Name = name
		return ds, nil
	}

	train, err := fetch("train", req.TrainQuery)
	if err != nil {
		return nil, nil, err
	}
	test, err := fetch("test", req.TestQuery)
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// describeMissing renders {"sector": 3} as "sector(3)", sorted by column.
func describeMissing(missing map[string]int) string {
	cols := make([]string, 0, len(missing))
	for c := range missing {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s(%d)", c, missing[c])
	}
	return strings.Join(parts, ", ")
}
