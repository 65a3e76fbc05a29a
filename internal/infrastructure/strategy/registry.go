package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/erp/reportengine/internal/domain/shared"
	"github.com/erp/reportengine/internal/domain/shared/strategy"
)

// StrategyRegistry manages cost strategy registrations
type StrategyRegistry struct {
	mu             sync.RWMutex
	costStrategies map[strategy.CostMethod]strategy.CostCalculationStrategy
	defaultMethod  strategy.CostMethod
}

// NewStrategyRegistry creates a new, empty strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		costStrategies: make(map[strategy.CostMethod]strategy.CostCalculationStrategy),
	}
}

// RegisterCostStrategy registers a cost calculation strategy under its method
func (r *StrategyRegistry) RegisterCostStrategy(s strategy.CostCalculationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	method := s.Method()
	if _, exists := r.costStrategies[method]; exists {
		return fmt.Errorf("%w: cost strategy '%s' already registered", shared.ErrAlreadyExists, method)
	}
	r.costStrategies[method] = s
	return nil
}

// GetCostStrategy returns the strategy for a method name, or the default if name is empty.
// Both snake_case and camelCase method names are accepted.
func (r *StrategyRegistry) GetCostStrategy(name string) (strategy.CostCalculationStrategy, error) {
	method, err := strategy.ParseCostMethod(name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if method == "" {
		method = r.defaultMethod
		if method == "" {
			return nil, fmt.Errorf("%w: no default cost strategy set", shared.ErrNotFound)
		}
	}

	s, exists := r.costStrategies[method]
	if !exists {
		return nil, shared.NewInvalidInputError("cost strategy '%s' not registered", method)
	}
	return s, nil
}

// GetCostStrategyOrDefault returns a cost strategy by name, or the default if not found
func (r *StrategyRegistry) GetCostStrategyOrDefault(name string) strategy.CostCalculationStrategy {
	s, err := r.GetCostStrategy(name)
	if err != nil {
		s, _ = r.GetCostStrategy("")
	}
	return s
}

// ListCostStrategies returns all registered cost strategy names
func (r *StrategyRegistry) ListCostStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.costStrategies))
	for method := range r.costStrategies {
		names = append(names, method.String())
	}
	sort.Strings(names)
	return names
}

// UnregisterCostStrategy removes a cost strategy
func (r *StrategyRegistry) UnregisterCostStrategy(method strategy.CostMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.costStrategies[method]; !exists {
		return fmt.Errorf("%w: cost strategy '%s' not found", shared.ErrNotFound, method)
	}
	delete(r.costStrategies, method)

	// Clear default if it was this strategy
	if r.defaultMethod == method {
		r.defaultMethod = ""
	}
	return nil
}

// SetDefault sets the method used when callers pass no method name
func (r *StrategyRegistry) SetDefault(name string) error {
	method, err := strategy.ParseCostMethod(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.costStrategies[method]; !exists {
		return fmt.Errorf("%w: cost strategy '%s' not found", shared.ErrNotFound, name)
	}
	r.defaultMethod = method
	return nil
}

// GetDefault returns the default costing method
func (r *StrategyRegistry) GetDefault() strategy.CostMethod {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultMethod
}
