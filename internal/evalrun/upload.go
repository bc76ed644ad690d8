package evalrun

import (
	"context"
	"fmt"

	"github.com/agentgateway/chateval/internal/dataset"
	"github.com/agentgateway/chateval/internal/langfuse"
)

// DatasetStore creates datasets and items in the analytics backend.
type DatasetStore interface {
	CreateDataset(ctx context.Context, name, description string, metadata map[string]any) error
	CreateDatasetItem(ctx context.Context, item langfuse.DatasetItem) error
}

// UploadDataset mirrors the local dataset into Langfuse so runs can be
// compared against a tracked dataset version.
func UploadDataset(ctx context.Context, store DatasetStore, ds *dataset.Dataset, sourcePath string) error {
	err := store.CreateDataset(ctx, ds.Name, ds.Description, map[string]any{"source": sourcePath})
	if err != nil {
		return fmt.Errorf("create dataset %q: %w", ds.Name, err)
	}

	for _, item := range ds.Items {
		expected := map[string]any{
			"agent":            item.ExpectedAgent,
			"topics":           item.ExpectedTopics,
			"quality_criteria": item.QualityCriteria,
		}
		if len(item.ExpectedAnswerContains) > 0 {
			expected["expected_content"] = []string(item.ExpectedAnswerContains)
		}
		err := store.CreateDatasetItem(ctx, langfuse.DatasetItem{
			DatasetName:    ds.Name,
			Input:          map[string]any{"message": item.Input},
			ExpectedOutput: expected,
			Metadata: map[string]any{
				"id":       item.ID,
				"category": item.Category,
			},
		})
		if err != nil {
			return fmt.Errorf("create dataset item %q: %w", item.ID, err)
		}
	}
	return nil
}
