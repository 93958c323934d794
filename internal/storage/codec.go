package storage

import (
	"encoding/json"
	"errors"

	"spiralfit/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeFitRun(run model.FitRun) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeFitRun(data []byte) (model.FitRun, error) {
	var run model.FitRun
	if err := json.Unmarshal(data, &run); err != nil {
		return model.FitRun{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.FitRun{}, err
	}
	return run, nil
}

func EncodeRestarts(restarts []model.RestartResult) ([]byte, error) {
	return json.Marshal(restarts)
}

func DecodeRestarts(data []byte) ([]model.RestartResult, error) {
	var restarts []model.RestartResult
	if err := json.Unmarshal(data, &restarts); err != nil {
		return nil, err
	}
	return restarts, nil
}

func checkVersion(record model.VersionedRecord) error {
	if record.SchemaVersion != CurrentSchemaVersion || record.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

// Stamp fills in the current schema and codec versions on a fit run.
func Stamp(run model.FitRun) model.FitRun {
	run.SchemaVersion = CurrentSchemaVersion
	run.CodecVersion = CurrentCodecVersion
	return run
}
