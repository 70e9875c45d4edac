// Package model provides shared state management and interfaces for the
// estimators and transformers in this repository.
package model

import (
	"sync"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// StateManager manages the fitted state of a model in a thread-safe manner.
// Estimators hold one by composition rather than embedding a base struct.
type StateManager struct {
	Fitted bool
	mu     sync.RWMutex

	NFeatures int
	NSamples  int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NFeatures = 0
	s.NSamples = 0
}

// SetDimensions sets the number of features and samples seen during fitting.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// RequireFitted returns a NotFittedError naming the model and method if the
// model has not been fitted yet.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return scierrors.NewNotFittedError(modelName, method)
	}
	return nil
}
