package domain

import "errors"

var (
	// ErrConversationNotFound indicates the conversation does not exist or
	// does not belong to the requesting owner
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrRetrieval indicates the domain-context lookup failed; the pipeline
	// degrades to an empty bundle
	ErrRetrieval = errors.New("context retrieval failed")
	// ErrGeneration indicates the upstream generation call failed
	ErrGeneration = errors.New("generation failed")
	// ErrUnparseableResponse indicates no structured object could be
	// extracted from raw generation output
	ErrUnparseableResponse = errors.New("no parseable structured response")
	// ErrPersistence indicates a store write failed after the answer was
	// already delivered
	ErrPersistence = errors.New("persistence failed")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
)
