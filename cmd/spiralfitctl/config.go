package main

import (
	"encoding/json"
	"math"
	"os"

	fitapi "spiralfit/pkg/spiralfit"
)

func loadOrDefaultRunRequest(path string) (fitapi.RunRequest, error) {
	if path == "" {
		return fitapi.RunRequest{}, nil
	}
	return loadRunRequestFromConfig(path)
}

func loadRunRequestFromConfig(path string) (fitapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fitapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fitapi.RunRequest{}, err
	}

	var req fitapi.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["data_path"]); ok {
		req.DataPath = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["population_size"]); ok {
		req.PopulationSize = v
	}
	if v, ok := asInt(raw["max_iterations"]); ok {
		req.MaxIterations = v
	}
	if v, ok := asInt(raw["restarts"]); ok {
		req.Restarts = v
	}
	if v, ok := asFloat64(raw["tolerance"]); ok {
		req.Tolerance = v
	}
	if v, ok := asBool(raw["use_euclidean"]); ok {
		req.UseEuclidean = v
	}
	if v, ok := asInt(raw["refine_max_iterations"]); ok {
		req.RefineMaxIterations = v
	}
	return req, nil
}

// overrideFromFlags applies explicitly-set flags on top of a config file.
func overrideFromFlags(req *fitapi.RunRequest, setFlags map[string]bool, values map[string]any) {
	for name, value := range values {
		if !setFlags[name] {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = value.(string)
		case "data":
			req.DataPath = value.(string)
		case "seed":
			req.Seed = value.(int64)
		case "pop":
			req.PopulationSize = value.(int)
		case "iters":
			req.MaxIterations = value.(int)
		case "restarts":
			req.Restarts = value.(int)
		case "tolerance":
			req.Tolerance = value.(float64)
		case "euclidean":
			req.UseEuclidean = value.(bool)
		case "refine-iters":
			req.RefineMaxIterations = value.(int)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asFloat64(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func asInt64(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
