package queue

import (
	"encoding/json"
	"fmt"

	"github.com/tomislacker/photos3/internal/models"
)

// Thumbnail jobs travel double-encoded: the outer envelope maps "default"
// to a JSON string holding the job itself. The layering follows the
// message-structure convention of the notification service the pipeline was
// built against, and both sides of the wire keep it for compatibility.

type jobEnvelope struct {
	Default string `json:"default"`
}

func EncodeJob(job models.ThumbnailJob) ([]byte, error) {
	const op = "queue.EncodeJob"

	inner, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	body, err := json.Marshal(jobEnvelope{Default: string(inner)})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return body, nil
}

func DecodeJob(body []byte) (models.ThumbnailJob, error) {
	const op = "queue.DecodeJob"

	var env jobEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.ThumbnailJob{}, fmt.Errorf("%s: %w", op, err)
	}
	var job models.ThumbnailJob
	if err := json.Unmarshal([]byte(env.Default), &job); err != nil {
		return models.ThumbnailJob{}, fmt.Errorf("%s: %w", op, err)
	}
	return job, nil
}
