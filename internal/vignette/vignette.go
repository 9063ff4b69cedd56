// Package vignette enumerates and renders the factor-level combinations of a
// vignette study. A vignette is one fully-instantiated assignment of a level
// to every factor, identified by a canonical serialized id and rendered into
// presentation text through the study's template.
package vignette

import (
	"encoding/json"
	"fmt"
)

// Vignette is one instantiation of the combinatorial design: a study plus a
// level choice per factor. A nil level means the factor's text is omitted.
type Vignette struct {
	StudyID      int64
	ID           string
	FactorLevels map[string]*string
}

// idPayload is the serialized form of a vignette id.
type idPayload struct {
	StudyID      int64              `json:"study_id"`
	FactorLevels map[string]*string `json:"factor_levels"`
}

// GenerateID builds the canonical identifier for a factor-level assignment.
// Factor names are serialized in sorted order, so two assignments with the
// same content produce byte-identical ids regardless of construction order.
// The id doubles as the persistable key for a vignette.
func GenerateID(studyID int64, factorLevels map[string]*string) string {
	// json.Marshal writes map keys in sorted order, which is exactly the
	// canonicalization the id needs.
	encoded, err := json.Marshal(idPayload{StudyID: studyID, FactorLevels: factorLevels})
	if err != nil {
		// Only unmarshalable values can fail here, and the payload carries none.
		panic(fmt.Sprintf("vignette id encoding failed: %v", err))
	}
	return string(encoded)
}

// New creates a vignette with its canonical id already computed.
func New(studyID int64, factorLevels map[string]*string) Vignette {
	return Vignette{
		StudyID:      studyID,
		ID:           GenerateID(studyID, factorLevels),
		FactorLevels: factorLevels,
	}
}

// ParseID deserializes a canonical identifier back into a Vignette.
func ParseID(id string) (Vignette, error) {
	var payload idPayload
	if err := json.Unmarshal([]byte(id), &payload); err != nil {
		return Vignette{}, fmt.Errorf("failed to parse vignette id %q: %w", id, err)
	}
	return Vignette{
		StudyID:      payload.StudyID,
		ID:           id,
		FactorLevels: payload.FactorLevels,
	}, nil
}
