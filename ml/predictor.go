package ml

import (
	"errors"
	"fmt"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

// PredictStances transforms every item through the original FeatureSpace
// and overwrites its PredictedLabel with the classifier's output. The space
// must be the instance the classifier was trained with; anything else is a
// transfer defect and fails with ErrFeatureSpaceMismatch. Re-running over
// the same items is a full overwrite, so the call is idempotent. Items
// whose text vectorizes to the zero vector still get a prediction.
func PredictStances(space *FeatureSpace, clf TextClassifier, items []*stance.UnlabeledText) error {
	if space == nil {
		return errors.New("feature space is nil")
	}
	if clf == nil {
		return errors.New("classifier is nil")
	}
	bound, ok := clf.(interface{ SpaceID() string })
	if !ok || bound.SpaceID() != space.ID {
		return fmt.Errorf("%w: classifier was not trained with this space", ErrFeatureSpaceMismatch)
	}

	for _, item := range items {
		vector := space.TransformOne(item.Text)
		class, _, err := clf.Predict(vector)
		if err != nil {
			return fmt.Errorf("predicting %s: %w", item.ID, err)
		}
		label, err := stance.FromIndex(class)
		if err != nil {
			return fmt.Errorf("predicting %s: %w", item.ID, err)
		}
		item.PredictedLabel = label
	}
	return nil
}
